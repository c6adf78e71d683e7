package onboarding

import (
	"github.com/smallbiznis/workhub/internal/onboarding/service"
	"go.uber.org/fx"
)

var Module = fx.Module("onboarding.service",
	fx.Provide(service.NewService),
)
