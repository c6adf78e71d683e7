package principal

import (
	"github.com/smallbiznis/workhub/internal/principal/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("principal.repository",
	fx.Provide(repository.NewRepository),
)
