package settings

import (
	"github.com/smallbiznis/workhub/internal/settings/repository"
	"github.com/smallbiznis/workhub/internal/settings/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settings.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(repository.NewPaymentRepository),
	fx.Provide(service.NewDefaultsProvider),
	fx.Provide(service.NewService),
)
