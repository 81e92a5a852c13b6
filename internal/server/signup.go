package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	signupdomain "github.com/parceltrail/parceltrail/internal/signup/domain"
)

type SignupRequest struct {
	OrganizationName string `json:"organization_name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
}

func (s *Server) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.signupsvc.Signup(c.Request.Context(), signupdomain.Request{
		OrganizationName: req.OrganizationName,
		Email:            req.Email,
		Password:         req.Password,
		UserAgent:        c.Request.UserAgent(),
		IPAddress:        c.ClientIP(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.RawToken, result.ExpiresAt)

	c.JSON(http.StatusCreated, gin.H{
		"token":        result.RawToken,
		"expires_at":   result.ExpiresAt,
		"user":         result.User,
		"organization": result.Organization,
	})
}
