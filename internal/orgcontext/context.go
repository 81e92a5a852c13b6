// Package orgcontext carries the verified caller identity through a request.
//
// Every tenant-scoped service call receives the identity explicitly; nothing
// reads it from ambient global state.
package orgcontext

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Identity is the authenticated caller attached to a request: which user,
// which organization they belong to, and their role within it.
type Identity struct {
	UserID snowflake.ID
	OrgID  snowflake.ID
	Role   string
}

// IsOwner reports whether the caller holds the owner role.
func (i Identity) IsOwner() bool {
	return i.Role == RoleOwner
}

type identityKey struct{}

// WithIdentity stores the caller identity in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller identity, if set.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// ValidRole reports whether the role is one of the closed role set.
func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleMember:
		return true
	default:
		return false
	}
}
