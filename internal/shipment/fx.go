package shipment

import (
	"github.com/parceltrail/parceltrail/internal/shipment/repository"
	"github.com/parceltrail/parceltrail/internal/shipment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("shipment.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
