// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User represents an account belonging to exactly one organization.
// PasswordHash and ExternalID are mutually optional; at least one must be
// present for the account to be able to log in.
type User struct {
	ID           snowflake.ID  `gorm:"primaryKey"`
	Email        string        `gorm:"type:text;not null;uniqueIndex:ux_users_email"`
	PasswordHash *string       `gorm:"type:text"`
	ExternalID   *string       `gorm:"type:text"`
	OrgID        snowflake.ID  `gorm:"column:org_id;not null;index"`
	Role         string        `gorm:"type:text;not null"`
	InvitedBy    *snowflake.ID `gorm:"column:invited_by"`
	LastLoginAt  *time.Time    `gorm:"column:last_login_at"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Session represents a persisted login session. Only the sha256 hash of the
// bearer token is stored.
type Session struct {
	ID               snowflake.ID `gorm:"primaryKey"`
	UserID           snowflake.ID `gorm:"column:user_id;not null;index"`
	SessionTokenHash string       `gorm:"column:session_token_hash;type:text;not null;uniqueIndex:ux_sessions_token_hash"`
	UserAgent        string       `gorm:"column:user_agent;type:text"`
	IPAddress        string       `gorm:"column:ip_address;type:text"`
	ExpiresAt        time.Time    `gorm:"column:expires_at;not null;index"`
	RevokedAt        *time.Time   `gorm:"column:revoked_at"`
	CreatedAt        time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	LastSeenAt       time.Time    `gorm:"column:last_seen_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

// UserView is the response shape for a user.
type UserView struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	OrgID       string     `json:"org_id"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// View renders the user for API responses.
func (u *User) View() UserView {
	return UserView{
		ID:          u.ID.String(),
		Email:       u.Email,
		OrgID:       u.OrgID.String(),
		Role:        u.Role,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
