package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateShipment(ctx context.Context, shipment *Shipment) error
	FindByID(ctx context.Context, orgID, id snowflake.ID) (*Shipment, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*Shipment, error)
	ListByOrg(ctx context.Context, orgID snowflake.ID) ([]Shipment, error)
	TrackingNumberExists(ctx context.Context, orgID snowflake.ID, trackingNumber string) (bool, error)
	SetCurrentStatus(ctx context.Context, shipmentID snowflake.ID, status string, at time.Time) error

	CreateEvent(ctx context.Context, event *TravelEvent) error
	FindEventScoped(ctx context.Context, orgID, eventID snowflake.ID) (*TravelEvent, error)
	SaveEvent(ctx context.Context, event *TravelEvent) error
	DeleteEvent(ctx context.Context, eventID snowflake.ID) error
	LatestEvent(ctx context.Context, shipmentID snowflake.ID) (*TravelEvent, error)
}
