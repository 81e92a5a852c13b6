package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	invitationdomain "github.com/parceltrail/parceltrail/internal/invitation/domain"
)

type AcceptInvitationRequest struct {
	Password string `json:"password"`
}

func (s *Server) ListInvitations(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	views, err := s.invitationSvc.List(c.Request.Context(), identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitations": views})
}

// AcceptInvitation is unauthenticated; the route wildcard carries the
// invitation token.
func (s *Server) AcceptInvitation(c *gin.Context) {
	token := c.Param("id")

	var req AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.invitationSvc.Accept(c.Request.Context(), token, invitationdomain.AcceptInvitationRequest{
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) ResendInvitation(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, invitationdomain.ErrInviteNotFound)
		return
	}

	result, err := s.invitationSvc.Resend(c.Request.Context(), identity, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) CancelInvitation(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, invitationdomain.ErrInviteNotFound)
		return
	}

	if err := s.invitationSvc.Cancel(c.Request.Context(), identity, id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
