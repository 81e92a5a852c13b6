package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const minTrackingNumberLength = 3

// Track is the public lookup: no authentication, no tenant filter.
func (s *Server) Track(c *gin.Context) {
	trackingNumber := strings.TrimSpace(c.Param("trackingNumber"))
	if len(trackingNumber) < minTrackingNumberLength {
		AbortWithError(c, newValidationError("tracking_number", "too_short", "tracking number must be at least 3 characters"))
		return
	}

	view, err := s.shipmentSvc.GetByTrackingNumber(c.Request.Context(), trackingNumber)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
