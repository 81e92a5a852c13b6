package invitation

import (
	"github.com/parceltrail/parceltrail/internal/invitation/repository"
	"github.com/parceltrail/parceltrail/internal/invitation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invitation.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
