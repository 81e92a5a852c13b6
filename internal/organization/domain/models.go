// Package domain contains persistence models for the organization service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Organization represents a tenant. The slug is derived from the display
// name at signup and is immutable afterwards.
type Organization struct {
	ID            snowflake.ID  `gorm:"primaryKey"`
	Name          string        `gorm:"type:text;not null"`
	Slug          string        `gorm:"type:text;not null;uniqueIndex:ux_organizations_slug"`
	PlanTier      string        `gorm:"type:text;not null;default:free"`
	BillingStatus string        `gorm:"type:text;not null;default:active"`
	OwnerUserID   *snowflake.ID `gorm:"column:owner_user_id"`
	CreatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// OrganizationView is the response shape for an organization.
type OrganizationView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	PlanTier      string    `json:"plan_tier"`
	BillingStatus string    `json:"billing_status"`
	CreatedAt     time.Time `json:"created_at"`
}

// View renders the organization for API responses.
func (o *Organization) View() OrganizationView {
	return OrganizationView{
		ID:            o.ID.String(),
		Name:          o.Name,
		Slug:          o.Slug,
		PlanTier:      o.PlanTier,
		BillingStatus: o.BillingStatus,
		CreatedAt:     o.CreatedAt,
	}
}
