package signup

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/parceltrail/parceltrail/internal/auth/domain"
	"github.com/parceltrail/parceltrail/internal/auth/password"
	"github.com/parceltrail/parceltrail/internal/db"
	orgdomain "github.com/parceltrail/parceltrail/internal/organization/domain"
	orgservice "github.com/parceltrail/parceltrail/internal/organization/service"
	"github.com/parceltrail/parceltrail/internal/orgcontext"
	"github.com/parceltrail/parceltrail/internal/signup/domain"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type service struct {
	db       *gorm.DB
	orgRepo  orgdomain.Repository
	authRepo authdomain.Repository
	authsvc  authdomain.Service
	genID    *snowflake.Node
}

func NewService(
	conn *gorm.DB,
	orgRepo orgdomain.Repository,
	authRepo authdomain.Repository,
	authsvc authdomain.Service,
	genID *snowflake.Node,
) domain.Service {
	return &service{
		db:       conn,
		orgRepo:  orgRepo,
		authRepo: authRepo,
		authsvc:  authsvc,
		genID:    genID,
	}
}

// Signup creates the organization and its owner in one transaction, so a
// failure partway through leaves no organization without an owner, then logs
// the owner in.
func (s *service) Signup(ctx context.Context, req domain.Request) (*domain.Result, error) {
	orgName := strings.TrimSpace(req.OrganizationName)
	if orgName == "" {
		return nil, domain.ErrInvalidRequest
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, authdomain.ErrInvalidEmail
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		return nil, authdomain.ErrPasswordTooShort
	}

	if _, err := s.authRepo.FindByEmail(ctx, email); err == nil {
		return nil, authdomain.ErrEmailExists
	} else if !errors.Is(err, authdomain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var org *orgdomain.Organization
	var user *authdomain.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orgRepo := s.orgRepo.WithTx(tx)

		orgSlug, err := orgservice.AllocateSlug(ctx, orgRepo, orgName)
		if err != nil {
			return err
		}
		org = &orgdomain.Organization{
			ID:            s.genID.Generate(),
			Name:          orgName,
			Slug:          orgSlug,
			PlanTier:      "free",
			BillingStatus: "active",
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := orgRepo.Create(ctx, org); err != nil {
			return err
		}

		user = &authdomain.User{
			ID:           s.genID.Generate(),
			Email:        email,
			PasswordHash: &hashed,
			OrgID:        org.ID,
			Role:         orgcontext.RoleOwner,
		}
		if err := s.authRepo.WithTx(tx).Create(ctx, user); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return authdomain.ErrEmailExists
			}
			return err
		}

		return orgRepo.SetOwner(ctx, org.ID, user.ID, now)
	})
	if err != nil {
		return nil, err
	}

	login, err := s.authsvc.Login(ctx, authdomain.LoginRequest{
		Email:     email,
		Password:  req.Password,
		UserAgent: req.UserAgent,
		IPAddress: req.IPAddress,
	})
	if err != nil {
		return nil, err
	}

	return &domain.Result{
		User:         login.User.View(),
		Organization: org.View(),
		RawToken:     login.RawToken,
		ExpiresAt:    login.ExpiresAt,
	}, nil
}

func normalizeEmail(raw string) (string, error) {
	address := strings.ToLower(strings.TrimSpace(raw))
	if address == "" {
		return "", errors.New("empty email")
	}
	if _, err := mail.ParseAddress(address); err != nil {
		return "", err
	}
	return address, nil
}
