package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/parceltrail/parceltrail/internal/auth/domain"
	"github.com/parceltrail/parceltrail/internal/auth/repository"
	"github.com/parceltrail/parceltrail/internal/orgcontext"
	orgdomain "github.com/parceltrail/parceltrail/internal/organization/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type authFixture struct {
	svc   domain.Service
	node  *snowflake.Node
	orgID snowflake.ID
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&orgdomain.Organization{},
		&domain.User{},
		&domain.Session{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(zap.NewNop(), repository.New(db), repository.NewSessionRepository(db), node)

	return &authFixture{
		svc:   svc,
		node:  node,
		orgID: node.Generate(),
	}
}

func (f *authFixture) createUser(t *testing.T, email, role string) *domain.User {
	t.Helper()
	user, err := f.svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    email,
		Password: "super-secret",
		OrgID:    f.orgID,
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func TestCreateUser(t *testing.T) {
	f := newAuthFixture(t)

	user := f.createUser(t, "Owner@Reus.Example", orgcontext.RoleOwner)
	require.Equal(t, "owner@reus.example", user.Email)
	require.Equal(t, orgcontext.RoleOwner, user.Role)
	require.Equal(t, f.orgID, user.OrgID)
	require.NotNil(t, user.PasswordHash)
	require.NotEqual(t, "super-secret", *user.PasswordHash)
}

func TestCreateUserValidation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateUser(ctx, domain.CreateUserRequest{
		Email: "not-an-email", Password: "super-secret", OrgID: f.orgID, Role: orgcontext.RoleMember,
	})
	require.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = f.svc.CreateUser(ctx, domain.CreateUserRequest{
		Email: "a@reus.example", Password: "short", OrgID: f.orgID, Role: orgcontext.RoleMember,
	})
	require.ErrorIs(t, err, domain.ErrPasswordTooShort)

	_, err = f.svc.CreateUser(ctx, domain.CreateUserRequest{
		Email: "a@reus.example", Password: "super-secret", OrgID: f.orgID, Role: "superadmin",
	})
	require.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)

	f.createUser(t, "owner@reus.example", orgcontext.RoleOwner)

	_, err := f.svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    "OWNER@reus.example",
		Password: "super-secret",
		OrgID:    f.orgID,
		Role:     orgcontext.RoleMember,
	})
	require.ErrorIs(t, err, domain.ErrEmailExists)
}

func TestLoginAndAuthenticate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "owner@reus.example", orgcontext.RoleOwner)

	result, err := f.svc.Login(ctx, domain.LoginRequest{
		Email:    "owner@reus.example",
		Password: "super-secret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.RawToken)
	require.Equal(t, user.ID, result.User.ID)

	authed, err := f.svc.Authenticate(ctx, result.RawToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, authed.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.createUser(t, "owner@reus.example", orgcontext.RoleOwner)

	_, err := f.svc.Login(ctx, domain.LoginRequest{
		Email:    "owner@reus.example",
		Password: "wrong-password",
	})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, domain.LoginRequest{
		Email:    "nobody@reus.example",
		Password: "super-secret",
	})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.createUser(t, "owner@reus.example", orgcontext.RoleOwner)
	result, err := f.svc.Login(ctx, domain.LoginRequest{
		Email:    "owner@reus.example",
		Password: "super-secret",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, result.RawToken))

	_, err = f.svc.Authenticate(ctx, result.RawToken)
	require.ErrorIs(t, err, domain.ErrSessionRevoked)

	_, err = f.svc.Authenticate(ctx, "bogus-token")
	require.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "owner@reus.example", orgcontext.RoleOwner)

	err := f.svc.ChangePassword(ctx, user.ID, "wrong-password", "another-secret")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	err = f.svc.ChangePassword(ctx, user.ID, "super-secret", "short")
	require.ErrorIs(t, err, domain.ErrPasswordTooShort)

	require.NoError(t, f.svc.ChangePassword(ctx, user.ID, "super-secret", "another-secret"))

	_, err = f.svc.Login(ctx, domain.LoginRequest{Email: "owner@reus.example", Password: "super-secret"})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, domain.LoginRequest{Email: "owner@reus.example", Password: "another-secret"})
	require.NoError(t, err)
}

func TestRemoveUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	owner := f.createUser(t, "owner@reus.example", orgcontext.RoleOwner)
	member := f.createUser(t, "member@reus.example", orgcontext.RoleMember)
	identity := orgcontext.Identity{UserID: owner.ID, OrgID: f.orgID, Role: owner.Role}

	require.ErrorIs(t, f.svc.RemoveUser(ctx, identity, owner.ID), domain.ErrCannotRemoveSelf)

	require.NoError(t, f.svc.RemoveUser(ctx, identity, member.ID))
	users, err := f.svc.ListOrgUsers(ctx, f.orgID)
	require.NoError(t, err)
	require.Len(t, users, 1)

	// A member of another organization looks like a missing user.
	stranger := &authFixture{svc: f.svc, node: f.node, orgID: f.node.Generate()}
	other, err := stranger.svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "other@acme.example",
		Password: "super-secret",
		OrgID:    stranger.orgID,
		Role:     orgcontext.RoleOwner,
	})
	require.NoError(t, err)
	require.ErrorIs(t, f.svc.RemoveUser(ctx, identity, other.ID), domain.ErrUserNotFound)
}
