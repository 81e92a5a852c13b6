package organization

import (
	"github.com/parceltrail/parceltrail/internal/organization/repository"
	"github.com/parceltrail/parceltrail/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
