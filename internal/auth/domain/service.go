package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/parceltrail/parceltrail/internal/orgcontext"
)

type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	ChangePassword(ctx context.Context, userID snowflake.ID, current, updated string) error
	Authenticate(ctx context.Context, rawToken string) (*User, error)
	GetUser(ctx context.Context, id snowflake.ID) (*User, error)
	ListOrgUsers(ctx context.Context, orgID snowflake.ID) ([]User, error)
	RemoveUser(ctx context.Context, identity orgcontext.Identity, userID snowflake.ID) error
}

type CreateUserRequest struct {
	Email     string
	Password  string
	OrgID     snowflake.ID
	Role      string
	InvitedBy *snowflake.ID
}

type LoginRequest struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

type LoginResult struct {
	User      *User
	RawToken  string
	ExpiresAt time.Time
	SessionID snowflake.ID
}
