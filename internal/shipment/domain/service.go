package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/parceltrail/parceltrail/internal/orgcontext"
)

type Service interface {
	Create(ctx context.Context, identity orgcontext.Identity, req CreateShipmentRequest) (*ShipmentView, error)
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*ShipmentView, error)
	ListByOrg(ctx context.Context, identity orgcontext.Identity) ([]ShipmentView, error)
	AddEvent(ctx context.Context, identity orgcontext.Identity, shipmentID snowflake.ID, req AddEventRequest) (*TravelEventView, error)
	UpdateEvent(ctx context.Context, identity orgcontext.Identity, eventID snowflake.ID, patch UpdateEventRequest) (*TravelEventView, error)
	DeleteEvent(ctx context.Context, identity orgcontext.Identity, eventID snowflake.ID) error
}

// CreateShipmentRequest carries the caller-supplied shipment attributes.
// TrackingSuffix is combined with the organization's initials by the
// allocator; InitialStatus defaults to StatusCreated when empty.
type CreateShipmentRequest struct {
	TrackingSuffix string
	Origin         string
	Destination    string
	WeightKg       float64
	PieceCount     int
	InitialStatus  string
	CarrierName    *string
}

// AddEventRequest carries a new travel event. EventTime is optional; the
// server clock is used when absent.
type AddEventRequest struct {
	Status      string
	Location    string
	Description string
	EventType   string
	EventTime   *time.Time
}

// UpdateEventRequest is a partial patch; nil fields are left unchanged.
type UpdateEventRequest struct {
	Status      *string
	Location    *string
	Description *string
	EventType   *string
	EventTime   *time.Time
}
