// Package domain contains the invitation workflow models. An invitation is
// pending until accepted or expired; expiry is evaluated lazily at read time,
// never by a background sweep.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusExpired  = "expired"
)

// TTL is how long an invitation token stays valid.
const TTL = 7 * 24 * time.Hour

type Invitation struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	OrgID      snowflake.ID `gorm:"column:org_id;not null;index:ix_invitations_org_email"`
	Email      string       `gorm:"type:text;not null;index:ix_invitations_org_email"`
	Role       string       `gorm:"type:text;not null"`
	InvitedBy  snowflake.ID `gorm:"not null"`
	Token      string       `gorm:"type:text;not null;uniqueIndex:ux_invitations_token"`
	ExpiresAt  time.Time    `gorm:"not null"`
	AcceptedAt *time.Time
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Invitation) TableName() string { return "invitations" }

// Status derives the lifecycle state at the given instant.
func (i *Invitation) Status(now time.Time) string {
	switch {
	case i.AcceptedAt != nil:
		return StatusAccepted
	case now.After(i.ExpiresAt):
		return StatusExpired
	default:
		return StatusPending
	}
}

// InvitationView is the owner-facing response shape.
type InvitationView struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	Token      string     `json:"token"`
	Status     string     `json:"status"`
	ExpiresAt  time.Time  `json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// View renders the invitation with its lazily derived status.
func (i *Invitation) View(now time.Time) InvitationView {
	return InvitationView{
		ID:         i.ID.String(),
		Email:      i.Email,
		Role:       i.Role,
		Token:      i.Token,
		Status:     i.Status(now),
		ExpiresAt:  i.ExpiresAt.UTC(),
		AcceptedAt: i.AcceptedAt,
		CreatedAt:  i.CreatedAt.UTC(),
	}
}
