package auth

import (
	"github.com/parceltrail/parceltrail/internal/auth/repository"
	"github.com/parceltrail/parceltrail/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(repository.NewSessionRepository),
	fx.Provide(service.New),
)
