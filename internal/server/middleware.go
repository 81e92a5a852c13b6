package server

import (
	"github.com/gin-gonic/gin"
	obscontext "github.com/parceltrail/parceltrail/internal/observability/context"
	"github.com/parceltrail/parceltrail/internal/orgcontext"
)

const contextIdentityKey = "identity"

// AuthRequired authenticates the bearer token or session cookie and attaches
// the caller identity to the request.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		identity := orgcontext.Identity{
			UserID: user.ID,
			OrgID:  user.OrgID,
			Role:   user.Role,
		}

		ctx := orgcontext.WithIdentity(c.Request.Context(), identity)
		ctx = obscontext.WithOrgID(ctx, identity.OrgID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextIdentityKey, identity)

		c.Next()
	}
}

// RequireOwner gates owner-only operations. It must run after AuthRequired.
func (s *Server) RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !identity.IsOwner() {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

// RateLimited throttles a route per client IP. A nil limiter disables
// throttling.
func (s *Server) RateLimited() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}
		if !s.limiter.Allow(c.ClientIP()) {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

func identityFrom(c *gin.Context) (orgcontext.Identity, bool) {
	value, ok := c.Get(contextIdentityKey)
	if !ok {
		return orgcontext.Identity{}, false
	}
	identity, ok := value.(orgcontext.Identity)
	return identity, ok
}
