package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/parceltrail/parceltrail/internal/organization/domain"
)

type serviceImpl struct {
	repo domain.Repository
}

func New(repo domain.Repository) domain.Service {
	return &serviceImpl{repo: repo}
}

func (s *serviceImpl) GetByID(ctx context.Context, id snowflake.ID) (*domain.OrganizationView, error) {
	org, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := org.View()
	return &view, nil
}

// AllocateSlug derives a URL-safe slug from the organization name. When the
// slug is already taken, a numeric suffix is appended until a free one is
// found. Callers creating organizations should pass a transaction-scoped
// repository so the check and the insert share a transaction.
func AllocateSlug(ctx context.Context, repo domain.Repository, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		return "", domain.ErrInvalidName
	}
	candidate := base
	for i := 1; ; i++ {
		exists, err := repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
