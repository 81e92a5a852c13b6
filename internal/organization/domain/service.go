package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	GetByID(ctx context.Context, id snowflake.ID) (*OrganizationView, error)
}

var (
	ErrInvalidName          = errors.New("invalid organization name")
	ErrOrganizationNotFound = errors.New("organization not found")
)
