package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/parceltrail/parceltrail/internal/shipment/domain"
	"gorm.io/gorm"
)

type repositoryImpl struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) domain.Repository {
	return &repositoryImpl{db: tx}
}

// eventOrder is the canonical event ordering: newest first, ties broken by id.
func eventOrder(db *gorm.DB) *gorm.DB {
	return db.Order("event_time DESC, id DESC")
}

func (r *repositoryImpl) CreateShipment(ctx context.Context, shipment *domain.Shipment) error {
	return r.db.WithContext(ctx).Create(shipment).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, orgID, id snowflake.ID) (*domain.Shipment, error) {
	var shipment domain.Shipment
	err := r.db.WithContext(ctx).
		Preload("Events", eventOrder).
		First(&shipment, "id = ? AND org_id = ?", id, orgID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

// FindByTrackingNumber is the public lookup path and deliberately carries no
// organization filter.
func (r *repositoryImpl) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Shipment, error) {
	var shipment domain.Shipment
	err := r.db.WithContext(ctx).
		Preload("Events", eventOrder).
		First(&shipment, "tracking_number = ?", trackingNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

func (r *repositoryImpl) ListByOrg(ctx context.Context, orgID snowflake.ID) ([]domain.Shipment, error) {
	var shipments []domain.Shipment
	err := r.db.WithContext(ctx).
		Preload("Events", eventOrder).
		Where("org_id = ?", orgID).
		Order("created_at DESC, id DESC").
		Find(&shipments).Error
	if err != nil {
		return nil, err
	}
	return shipments, nil
}

func (r *repositoryImpl) TrackingNumberExists(ctx context.Context, orgID snowflake.ID, trackingNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Shipment{}).
		Where("org_id = ? AND tracking_number = ?", orgID, trackingNumber).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repositoryImpl) SetCurrentStatus(ctx context.Context, shipmentID snowflake.ID, status string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.Shipment{}).
		Where("id = ?", shipmentID).
		Updates(map[string]any{"current_status": status, "updated_at": at}).Error
}

func (r *repositoryImpl) CreateEvent(ctx context.Context, event *domain.TravelEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FindEventScoped resolves an event through its owning shipment so a
// cross-tenant event id is indistinguishable from a missing one.
func (r *repositoryImpl) FindEventScoped(ctx context.Context, orgID, eventID snowflake.ID) (*domain.TravelEvent, error) {
	var event domain.TravelEvent
	err := r.db.WithContext(ctx).
		Joins("JOIN shipments ON shipments.id = travel_events.shipment_id").
		Where("travel_events.id = ? AND shipments.org_id = ?", eventID, orgID).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repositoryImpl) SaveEvent(ctx context.Context, event *domain.TravelEvent) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *repositoryImpl) DeleteEvent(ctx context.Context, eventID snowflake.ID) error {
	return r.db.WithContext(ctx).Delete(&domain.TravelEvent{}, "id = ?", eventID).Error
}

// LatestEvent returns (nil, nil) when the shipment has no events left.
func (r *repositoryImpl) LatestEvent(ctx context.Context, shipmentID snowflake.ID) (*domain.TravelEvent, error) {
	var event domain.TravelEvent
	err := eventOrder(r.db.WithContext(ctx).Where("shipment_id = ?", shipmentID)).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}
