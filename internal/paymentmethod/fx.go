package paymentmethod

import (
	"github.com/smallbiznis/workhub/internal/paymentmethod/service"
	"go.uber.org/fx"
)

var Module = fx.Module("paymentmethod.service",
	fx.Provide(service.New),
)
