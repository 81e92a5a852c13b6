// Package domain defines the signup orchestration contract: one call creates
// the organization and its owner account together.
package domain

import (
	"context"
	"errors"
	"time"

	authdomain "github.com/parceltrail/parceltrail/internal/auth/domain"
	orgdomain "github.com/parceltrail/parceltrail/internal/organization/domain"
)

type Service interface {
	Signup(ctx context.Context, req Request) (*Result, error)
}

type Request struct {
	OrganizationName string
	Email            string
	Password         string
	UserAgent        string
	IPAddress        string
}

type Result struct {
	User         authdomain.UserView        `json:"user"`
	Organization orgdomain.OrganizationView `json:"organization"`
	RawToken     string                     `json:"-"`
	ExpiresAt    time.Time                  `json:"-"`
}

var ErrInvalidRequest = errors.New("organization name, email and password are required")
