// Package domain contains the shipment ledger models. A shipment's
// CurrentStatus is derived from its travel-event log and only ever written
// by the ledger service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// StatusCreated is the sentinel status of a shipment whose event log is empty.
const StatusCreated = "Created"

// Event classifications. The status label on an event is free text; the
// classification is constrained to this set.
const (
	EventPickedUp          = "picked-up"
	EventInTransit         = "in-transit"
	EventOutForDelivery    = "out-for-delivery"
	EventAtFacility        = "at-facility"
	EventCustomsClearance  = "customs-clearance"
	EventAttemptedDelivery = "attempted-delivery"
	EventDelivered         = "delivered"
	EventException         = "exception"
	EventReturned          = "returned"
)

var eventTypes = map[string]struct{}{
	EventPickedUp:          {},
	EventInTransit:         {},
	EventOutForDelivery:    {},
	EventAtFacility:        {},
	EventCustomsClearance:  {},
	EventAttemptedDelivery: {},
	EventDelivered:         {},
	EventException:         {},
	EventReturned:          {},
}

// ValidEventType reports whether t is a known event classification.
func ValidEventType(t string) bool {
	_, ok := eventTypes[t]
	return ok
}

// Shipment is a tenant-owned shipment. TrackingNumber is unique within the
// organization, not globally.
type Shipment struct {
	ID             snowflake.ID  `gorm:"primaryKey"`
	OrgID          snowflake.ID  `gorm:"column:org_id;not null;uniqueIndex:ux_shipments_org_tracking"`
	TrackingNumber string        `gorm:"type:text;not null;uniqueIndex:ux_shipments_org_tracking;index:ix_shipments_tracking_number"`
	Origin         string        `gorm:"type:text;not null"`
	Destination    string        `gorm:"type:text;not null"`
	WeightKg       float64       `gorm:"column:weight_kg;not null"`
	PieceCount     int           `gorm:"not null"`
	CurrentStatus  string        `gorm:"type:text;not null"`
	CarrierName    *string       `gorm:"type:text"`
	CreatedBy      *snowflake.ID `gorm:"column:created_by"`
	CreatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP;index:ix_shipments_org_created"`
	UpdatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`

	Events []TravelEvent `gorm:"foreignKey:ShipmentID"`
}

// TableName sets the database table name.
func (Shipment) TableName() string { return "shipments" }

// TravelEvent is one entry in a shipment's event log. EventTime is the
// ordering field, not CreatedAt.
type TravelEvent struct {
	ID          snowflake.ID  `gorm:"primaryKey"`
	ShipmentID  snowflake.ID  `gorm:"not null;index:ix_travel_events_shipment_time"`
	Status      string        `gorm:"type:text;not null"`
	Location    string        `gorm:"type:text;not null"`
	Description string        `gorm:"type:text"`
	EventType   string        `gorm:"type:text;not null"`
	EventTime   time.Time     `gorm:"not null"`
	CreatedBy   *snowflake.ID `gorm:"column:created_by"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (TravelEvent) TableName() string { return "travel_events" }

// ShipmentView is the response shape for a shipment. CurrentStatus is
// flattened to "status" on the wire.
type ShipmentView struct {
	ID             string            `json:"id"`
	TrackingNumber string            `json:"tracking_number"`
	Origin         string            `json:"origin"`
	Destination    string            `json:"destination"`
	WeightKg       float64           `json:"weight_kg"`
	PieceCount     int               `json:"piece_count"`
	Status         string            `json:"status"`
	CarrierName    *string           `json:"carrier_name,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	Events         []TravelEventView `json:"events"`
}

// TravelEventView is the response shape for a travel event. The
// classification is rendered as "type" on the wire.
type TravelEventView struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	Type        string    `json:"type"`
	EventTime   time.Time `json:"event_time"`
	CreatedAt   time.Time `json:"created_at"`
}

// View renders the shipment with its loaded events.
func (s *Shipment) View() ShipmentView {
	events := make([]TravelEventView, 0, len(s.Events))
	for i := range s.Events {
		events = append(events, s.Events[i].View())
	}
	return ShipmentView{
		ID:             s.ID.String(),
		TrackingNumber: s.TrackingNumber,
		Origin:         s.Origin,
		Destination:    s.Destination,
		WeightKg:       s.WeightKg,
		PieceCount:     s.PieceCount,
		Status:         s.CurrentStatus,
		CarrierName:    s.CarrierName,
		CreatedAt:      s.CreatedAt.UTC(),
		UpdatedAt:      s.UpdatedAt.UTC(),
		Events:         events,
	}
}

// View renders the travel event.
func (e *TravelEvent) View() TravelEventView {
	return TravelEventView{
		ID:          e.ID.String(),
		Status:      e.Status,
		Location:    e.Location,
		Description: e.Description,
		Type:        e.EventType,
		EventTime:   e.EventTime.UTC(),
		CreatedAt:   e.CreatedAt.UTC(),
	}
}
