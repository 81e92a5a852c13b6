package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/parceltrail/parceltrail/internal/auth/domain"
	invitationdomain "github.com/parceltrail/parceltrail/internal/invitation/domain"
)

type InviteUserRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *Server) InviteUser(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req InviteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.invitationSvc.Create(c.Request.Context(), identity, invitationdomain.CreateInvitationRequest{
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (s *Server) ListUsers(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	users, err := s.authsvc.ListOrgUsers(c.Request.Context(), identity.OrgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	views := make([]authdomain.UserView, 0, len(users))
	for i := range users {
		views = append(views, users[i].View())
	}
	c.JSON(http.StatusOK, gin.H{"users": views})
}

func (s *Server) RemoveUser(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	userID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, authdomain.ErrUserNotFound)
		return
	}

	if err := s.authsvc.RemoveUser(c.Request.Context(), identity, userID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
