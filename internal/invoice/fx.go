package invoice

import (
	"github.com/smallbiznis/workhub/internal/invoice/repository"
	"github.com/smallbiznis/workhub/internal/invoice/service"
	"github.com/smallbiznis/workhub/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(pdf.New),
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
