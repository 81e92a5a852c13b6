package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, invitation *Invitation) error
	FindByID(ctx context.Context, orgID, id snowflake.ID) (*Invitation, error)
	FindByToken(ctx context.Context, token string) (*Invitation, error)
	ListByOrg(ctx context.Context, orgID snowflake.ID) ([]Invitation, error)
	HasPending(ctx context.Context, orgID snowflake.ID, email string, now time.Time) (bool, error)
	MarkAccepted(ctx context.Context, id snowflake.ID, at time.Time) (bool, error)
	Delete(ctx context.Context, id snowflake.ID) error
}
