package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/parceltrail/parceltrail/internal/auth/domain"
	"github.com/parceltrail/parceltrail/internal/orgcontext"
)

type Service interface {
	Create(ctx context.Context, identity orgcontext.Identity, req CreateInvitationRequest) (*InvitationResult, error)
	List(ctx context.Context, identity orgcontext.Identity) ([]InvitationView, error)
	Accept(ctx context.Context, token string, req AcceptInvitationRequest) (*AcceptResult, error)
	Resend(ctx context.Context, identity orgcontext.Identity, id snowflake.ID) (*InvitationResult, error)
	Cancel(ctx context.Context, identity orgcontext.Identity, id snowflake.ID) error
}

type CreateInvitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AcceptInvitationRequest struct {
	Password string `json:"password"`
}

// NotificationResult reports the outcome of the best-effort invite email.
// A failed send never fails the invitation itself.
type NotificationResult struct {
	Attempted bool   `json:"attempted"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

type InvitationResult struct {
	Invitation   InvitationView     `json:"invitation"`
	Notification NotificationResult `json:"notification"`
}

type AcceptResult struct {
	User authdomain.UserView `json:"user"`
}
