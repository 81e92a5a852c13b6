package ratelimit

import (
	"time"

	"github.com/parceltrail/parceltrail/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("ratelimit",
	fx.Provide(NewPublicLimiter),
)

// NewPublicLimiter throttles the unauthenticated endpoints per client IP.
func NewPublicLimiter(cfg config.Config) *TokenBucket {
	return NewTokenBucket(cfg.PublicRateLimit, time.Minute)
}
