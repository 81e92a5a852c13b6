package domain

import "errors"

var (
	ErrShipmentNotFound     = errors.New("shipment not found")
	ErrEventNotFound        = errors.New("travel event not found")
	ErrTrackingNumberExists = errors.New("tracking number already exists for this organization")
	ErrInvalidEventType     = errors.New("invalid travel event type")
	ErrInvalidWeight        = errors.New("weight must be non-negative")
	ErrInvalidPieceCount    = errors.New("piece count must be positive")
)
