package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/parceltrail/parceltrail/internal/db"
	"github.com/parceltrail/parceltrail/internal/observability/metrics"
	"github.com/parceltrail/parceltrail/internal/orgcontext"
	orgdomain "github.com/parceltrail/parceltrail/internal/organization/domain"
	"github.com/parceltrail/parceltrail/internal/shipment/domain"
	"github.com/parceltrail/parceltrail/internal/tracking"
	"gorm.io/gorm"
)

type serviceImpl struct {
	db      *gorm.DB
	repo    domain.Repository
	orgRepo orgdomain.Repository
	node    *snowflake.Node
	metrics *metrics.Metrics
}

func New(conn *gorm.DB, repo domain.Repository, orgRepo orgdomain.Repository, node *snowflake.Node, m *metrics.Metrics) domain.Service {
	return &serviceImpl{db: conn, repo: repo, orgRepo: orgRepo, node: node, metrics: m}
}

func (s *serviceImpl) Create(ctx context.Context, identity orgcontext.Identity, req domain.CreateShipmentRequest) (*domain.ShipmentView, error) {
	if req.WeightKg < 0 {
		return nil, domain.ErrInvalidWeight
	}
	if req.PieceCount <= 0 {
		return nil, domain.ErrInvalidPieceCount
	}

	org, err := s.orgRepo.FindByID(ctx, identity.OrgID)
	if err != nil {
		return nil, err
	}
	number, err := tracking.Compose(org.Name, req.TrackingSuffix)
	if err != nil {
		return nil, err
	}

	status := strings.TrimSpace(req.InitialStatus)
	if status == "" {
		status = domain.StatusCreated
	}

	now := time.Now().UTC()
	creator := identity.UserID
	shipment := &domain.Shipment{
		ID:             s.node.Generate(),
		OrgID:          identity.OrgID,
		TrackingNumber: number,
		Origin:         strings.TrimSpace(req.Origin),
		Destination:    strings.TrimSpace(req.Destination),
		WeightKg:       req.WeightKg,
		PieceCount:     req.PieceCount,
		CurrentStatus:  status,
		CarrierName:    req.CarrierName,
		CreatedBy:      &creator,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		exists, err := repo.TrackingNumberExists(ctx, identity.OrgID, number)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrTrackingNumberExists
		}
		if err := repo.CreateShipment(ctx, shipment); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrTrackingNumberExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordShipmentCreated(ctx, identity.OrgID.String())
	view := shipment.View()
	return &view, nil
}

func (s *serviceImpl) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.ShipmentView, error) {
	shipment, err := s.repo.FindByTrackingNumber(ctx, trackingNumber)
	s.metrics.RecordPublicTrack(ctx, err == nil)
	if err != nil {
		return nil, err
	}
	view := shipment.View()
	return &view, nil
}

func (s *serviceImpl) ListByOrg(ctx context.Context, identity orgcontext.Identity) ([]domain.ShipmentView, error) {
	shipments, err := s.repo.ListByOrg(ctx, identity.OrgID)
	if err != nil {
		return nil, err
	}
	views := make([]domain.ShipmentView, 0, len(shipments))
	for i := range shipments {
		views = append(views, shipments[i].View())
	}
	return views, nil
}

func (s *serviceImpl) AddEvent(ctx context.Context, identity orgcontext.Identity, shipmentID snowflake.ID, req domain.AddEventRequest) (*domain.TravelEventView, error) {
	if !domain.ValidEventType(req.EventType) {
		return nil, domain.ErrInvalidEventType
	}

	now := time.Now().UTC()
	eventTime := now
	if req.EventTime != nil {
		eventTime = req.EventTime.UTC()
	}
	creator := identity.UserID
	event := &domain.TravelEvent{
		ID:          s.node.Generate(),
		ShipmentID:  shipmentID,
		Status:      req.Status,
		Location:    strings.TrimSpace(req.Location),
		Description: req.Description,
		EventType:   req.EventType,
		EventTime:   eventTime,
		CreatedBy:   &creator,
		CreatedAt:   now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, identity.OrgID, shipmentID); err != nil {
			return err
		}
		if err := repo.CreateEvent(ctx, event); err != nil {
			return err
		}
		return recalcStatus(ctx, repo, shipmentID, now)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTravelEvent(ctx, identity.OrgID.String(), event.EventType)
	view := event.View()
	return &view, nil
}

func (s *serviceImpl) UpdateEvent(ctx context.Context, identity orgcontext.Identity, eventID snowflake.ID, patch domain.UpdateEventRequest) (*domain.TravelEventView, error) {
	if patch.EventType != nil && !domain.ValidEventType(*patch.EventType) {
		return nil, domain.ErrInvalidEventType
	}

	var event *domain.TravelEvent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := repo.FindEventScoped(ctx, identity.OrgID, eventID)
		if err != nil {
			return err
		}
		event = found

		if patch.Status != nil {
			event.Status = *patch.Status
		}
		if patch.Location != nil {
			event.Location = strings.TrimSpace(*patch.Location)
		}
		if patch.Description != nil {
			event.Description = *patch.Description
		}
		if patch.EventType != nil {
			event.EventType = *patch.EventType
		}
		if patch.EventTime != nil {
			event.EventTime = patch.EventTime.UTC()
		}
		if err := repo.SaveEvent(ctx, event); err != nil {
			return err
		}

		// An edited status or timestamp can change which event is latest.
		if patch.Status != nil || patch.EventTime != nil {
			return recalcStatus(ctx, repo, event.ShipmentID, time.Now().UTC())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := event.View()
	return &view, nil
}

func (s *serviceImpl) DeleteEvent(ctx context.Context, identity orgcontext.Identity, eventID snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		event, err := repo.FindEventScoped(ctx, identity.OrgID, eventID)
		if err != nil {
			return err
		}
		if err := repo.DeleteEvent(ctx, event.ID); err != nil {
			return err
		}
		return recalcStatus(ctx, repo, event.ShipmentID, time.Now().UTC())
	})
}

// recalcStatus rewrites the shipment's current status from its surviving
// event log: the latest event by (event_time, id) wins, or the "Created"
// sentinel when the log is empty.
func recalcStatus(ctx context.Context, repo domain.Repository, shipmentID snowflake.ID, at time.Time) error {
	latest, err := repo.LatestEvent(ctx, shipmentID)
	if err != nil {
		return err
	}
	status := domain.StatusCreated
	if latest != nil {
		status = latest.Status
	}
	return repo.SetCurrentStatus(ctx, shipmentID, status, at)
}
