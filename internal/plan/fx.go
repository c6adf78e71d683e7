package plan

import (
	"github.com/smallbiznis/workhub/internal/plan/repository"
	"github.com/smallbiznis/workhub/internal/plan/service"
	"go.uber.org/fx"
)

var Module = fx.Module("plan.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
