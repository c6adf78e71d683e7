package referral

import (
	"github.com/smallbiznis/workhub/internal/ratelimit"
	referraldomain "github.com/smallbiznis/workhub/internal/referral/domain"
	"github.com/smallbiznis/workhub/internal/referral/repository"
	"github.com/smallbiznis/workhub/internal/referral/service"
	"go.uber.org/fx"
)

var Module = fx.Module("referral.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(newPayoutLocker),
	fx.Provide(service.NewService),
	fx.Provide(func(svc referraldomain.Service) referraldomain.CommissionRecorder { return svc }),
)

// newPayoutLocker accepts a nil limiter; its methods then allow every call.
func newPayoutLocker(limiter *ratelimit.BillingLimiter) referraldomain.PayoutLocker {
	return limiter
}
