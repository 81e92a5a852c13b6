package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	shipmentdomain "github.com/parceltrail/parceltrail/internal/shipment/domain"
)

type CreateShipmentRequest struct {
	TrackingSuffix string  `json:"tracking_suffix"`
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
	WeightKg       float64 `json:"weight_kg"`
	PieceCount     int     `json:"piece_count"`
	InitialStatus  string  `json:"initial_status"`
	CarrierName    *string `json:"carrier_name"`
}

type AddTravelEventRequest struct {
	Status      string     `json:"status"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	EventTime   *time.Time `json:"event_time"`
}

type UpdateTravelEventRequest struct {
	Status      *string    `json:"status"`
	Location    *string    `json:"location"`
	Description *string    `json:"description"`
	Type        *string    `json:"type"`
	EventTime   *time.Time `json:"event_time"`
}

func (s *Server) CreateShipment(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	view, err := s.shipmentSvc.Create(c.Request.Context(), identity, shipmentdomain.CreateShipmentRequest{
		TrackingSuffix: req.TrackingSuffix,
		Origin:         req.Origin,
		Destination:    req.Destination,
		WeightKg:       req.WeightKg,
		PieceCount:     req.PieceCount,
		InitialStatus:  req.InitialStatus,
		CarrierName:    req.CarrierName,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (s *Server) ListShipments(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	views, err := s.shipmentSvc.ListByOrg(c.Request.Context(), identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"shipments": views})
}

func (s *Server) AddTravelEvent(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	shipmentID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, shipmentdomain.ErrShipmentNotFound)
		return
	}

	var req AddTravelEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	view, err := s.shipmentSvc.AddEvent(c.Request.Context(), identity, shipmentID, shipmentdomain.AddEventRequest{
		Status:      req.Status,
		Location:    req.Location,
		Description: req.Description,
		EventType:   req.Type,
		EventTime:   req.EventTime,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (s *Server) UpdateTravelEvent(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	eventID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, shipmentdomain.ErrEventNotFound)
		return
	}

	var req UpdateTravelEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	view, err := s.shipmentSvc.UpdateEvent(c.Request.Context(), identity, eventID, shipmentdomain.UpdateEventRequest{
		Status:      req.Status,
		Location:    req.Location,
		Description: req.Description,
		EventType:   req.Type,
		EventTime:   req.EventTime,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (s *Server) DeleteTravelEvent(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	eventID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, shipmentdomain.ErrEventNotFound)
		return
	}

	if err := s.shipmentSvc.DeleteEvent(c.Request.Context(), identity, eventID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
