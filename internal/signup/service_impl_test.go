package signup

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	authdomain "github.com/parceltrail/parceltrail/internal/auth/domain"
	authrepository "github.com/parceltrail/parceltrail/internal/auth/repository"
	authservice "github.com/parceltrail/parceltrail/internal/auth/service"
	orgdomain "github.com/parceltrail/parceltrail/internal/organization/domain"
	orgrepository "github.com/parceltrail/parceltrail/internal/organization/repository"
	"github.com/parceltrail/parceltrail/internal/orgcontext"
	"github.com/parceltrail/parceltrail/internal/signup/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type signupFixture struct {
	svc     domain.Service
	authsvc authdomain.Service
	orgRepo orgdomain.Repository
}

func newSignupFixture(t *testing.T) *signupFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&orgdomain.Organization{},
		&authdomain.User{},
		&authdomain.Session{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	authRepo := authrepository.New(db)
	sessionRepo := authrepository.NewSessionRepository(db)
	authsvc := authservice.New(zap.NewNop(), authRepo, sessionRepo, node)
	orgRepo := orgrepository.New(db)

	return &signupFixture{
		svc:     NewService(db, orgRepo, authRepo, authsvc, node),
		authsvc: authsvc,
		orgRepo: orgRepo,
	}
}

func TestSignup(t *testing.T) {
	f := newSignupFixture(t)
	ctx := context.Background()

	result, err := f.svc.Signup(ctx, domain.Request{
		OrganizationName: "Test Corp",
		Email:            "Owner@Test.Example",
		Password:         "super-secret",
	})
	require.NoError(t, err)
	require.Equal(t, "owner@test.example", result.User.Email)
	require.Equal(t, orgcontext.RoleOwner, result.User.Role)
	require.Equal(t, "test-corp", result.Organization.Slug)
	require.NotEmpty(t, result.RawToken)

	// The session is live immediately after signup.
	user, err := f.authsvc.Authenticate(ctx, result.RawToken)
	require.NoError(t, err)
	require.Equal(t, "owner@test.example", user.Email)

	orgID, err := snowflake.ParseString(result.Organization.ID)
	require.NoError(t, err)
	org, err := f.orgRepo.FindByID(ctx, orgID)
	require.NoError(t, err)
	require.NotNil(t, org.OwnerUserID)
	require.Equal(t, user.ID, *org.OwnerUserID)
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newSignupFixture(t)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, domain.Request{
		OrganizationName: "Test Corp",
		Email:            "owner@test.example",
		Password:         "super-secret",
	})
	require.NoError(t, err)

	_, err = f.svc.Signup(ctx, domain.Request{
		OrganizationName: "Other Corp",
		Email:            "owner@test.example",
		Password:         "super-secret",
	})
	require.ErrorIs(t, err, authdomain.ErrEmailExists)
	require.Contains(t, err.Error(), "exists")
}

func TestSignupDisambiguatesSlug(t *testing.T) {
	f := newSignupFixture(t)
	ctx := context.Background()

	first, err := f.svc.Signup(ctx, domain.Request{
		OrganizationName: "Acme",
		Email:            "one@acme.example",
		Password:         "super-secret",
	})
	require.NoError(t, err)
	require.Equal(t, "acme", first.Organization.Slug)

	second, err := f.svc.Signup(ctx, domain.Request{
		OrganizationName: "Acme",
		Email:            "two@acme.example",
		Password:         "super-secret",
	})
	require.NoError(t, err)
	require.Equal(t, "acme-1", second.Organization.Slug)
}

func TestSignupValidation(t *testing.T) {
	f := newSignupFixture(t)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, domain.Request{Email: "a@b.example", Password: "super-secret"})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = f.svc.Signup(ctx, domain.Request{OrganizationName: "X", Email: "not-an-email", Password: "super-secret"})
	require.ErrorIs(t, err, authdomain.ErrInvalidEmail)

	_, err = f.svc.Signup(ctx, domain.Request{OrganizationName: "X", Email: "a@b.example", Password: "short"})
	require.ErrorIs(t, err, authdomain.ErrPasswordTooShort)
}
