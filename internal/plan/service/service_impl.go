package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/workhub/internal/clock"
	obsmetrics "github.com/smallbiznis/workhub/internal/observability/metrics"
	plandomain "github.com/smallbiznis/workhub/internal/plan/domain"
	principaldomain "github.com/smallbiznis/workhub/internal/principal/domain"
	referraldomain "github.com/smallbiznis/workhub/internal/referral/domain"
	"github.com/smallbiznis/workhub/pkg/telemetry/correlation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const orderNumberPrefix = "ORD-"

type ServiceParams struct {
	fx.In

	Log        *zap.Logger
	DB         *gorm.DB
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       plandomain.Repository
	Principals principaldomain.Repository
	Referrals  referraldomain.CommissionRecorder `optional:"true"`
	Metrics    *obsmetrics.Metrics               `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	db         *gorm.DB
	genID      *snowflake.Node
	clock      clock.Clock
	repo       plandomain.Repository
	principals principaldomain.Repository
	referrals  referraldomain.CommissionRecorder
	metrics    *obsmetrics.Metrics
}

func NewService(p ServiceParams) plandomain.Service {
	return &Service{
		log:        p.Log.Named("plan.service"),
		db:         p.DB,
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		principals: p.Principals,
		referrals:  p.Referrals,
		metrics:    p.Metrics,
	}
}

func (s *Service) ListPlans(ctx context.Context) ([]*plandomain.Plan, error) {
	return s.repo.ListPlans(ctx, true)
}

// CalculatePricing prices a plan for a cycle. Unknown or inactive coupon
// codes price as if no coupon was given.
func (s *Service) CalculatePricing(ctx context.Context, planID snowflake.ID, req plandomain.PricingRequest) (*plandomain.Pricing, error) {
	plan, err := s.purchasablePlan(ctx, s.repo, planID)
	if err != nil {
		return nil, err
	}
	coupon, err := s.repo.FindCouponByCode(ctx, req.CouponCode)
	if err != nil {
		return nil, err
	}
	pricing, err := plandomain.CalculatePlanPricing(*plan, coupon, req.BillingCycle)
	if err != nil {
		return nil, err
	}
	return &pricing, nil
}

func (s *Service) ValidateCoupon(ctx context.Context, code string) (*plandomain.Coupon, error) {
	coupon, err := s.repo.FindCouponByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !coupon.Eligible() {
		return nil, plandomain.ErrCouponNotFound
	}
	return coupon, nil
}

func (s *Service) CreatePlanOrder(ctx context.Context, req plandomain.CreateOrderRequest) (*plandomain.OrderResult, error) {
	if !req.BillingCycle.Valid() {
		return nil, plandomain.ErrInvalidBillingCycle
	}

	var result *plandomain.OrderResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		user, err := s.principals.WithTx(tx).FindByID(ctx, req.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return plandomain.ErrInvalidUser
		}

		plan, err := s.purchasablePlan(ctx, repo, req.PlanID)
		if err != nil {
			return err
		}
		coupon, err := repo.FindCouponByCode(ctx, req.CouponCode)
		if err != nil {
			return err
		}
		pricing, err := plandomain.CalculatePlanPricing(*plan, coupon, req.BillingCycle)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		order := &plandomain.PlanOrder{
			ID:             s.genID.Generate(),
			OrderNumber:    orderNumberPrefix + ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
			PlanID:         plan.ID,
			UserID:         user.ID,
			CouponID:       pricing.CouponID,
			BillingCycle:   req.BillingCycle,
			OriginalPrice:  pricing.OriginalPrice,
			DiscountAmount: pricing.DiscountAmount,
			FinalPrice:     pricing.FinalPrice,
			Status:         plandomain.OrderStatusPending,
			PaymentMethod:  strings.TrimSpace(req.PaymentMethod),
			Metadata:       datatypes.JSONMap(correlation.Stamp(ctx, copyMetadata(req.Metadata), now)),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}

		result = &plandomain.OrderResult{Order: order}
		if order.FinalPrice.IsPositive() {
			return nil
		}

		// Nothing to collect, the plan is granted right away.
		account, err := s.complete(ctx, tx, order, plan)
		if err != nil {
			return err
		}
		result.Account = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPlanOrder(ctx, string(result.Order.Status), string(result.Order.BillingCycle))
	s.log.Info("plan order created",
		zap.String("order_number", result.Order.OrderNumber),
		zap.String("user_id", result.Order.UserID.String()),
		zap.String("final_price", result.Order.FinalPrice.String()),
		zap.String("status", string(result.Order.Status)),
	)
	return result, nil
}

// ProcessPaymentSuccess marks the order paid, assigns the plan and records
// referral commission in one transaction, then returns the refreshed account.
// Replaying an already succeeded order only re-reads the account.
func (s *Service) ProcessPaymentSuccess(ctx context.Context, orderID snowflake.ID) (*plandomain.OrderResult, error) {
	var (
		result   *plandomain.OrderResult
		replayed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return plandomain.ErrOrderNotFound
		}

		switch order.Status {
		case plandomain.OrderStatusSucceeded:
			replayed = true
			account, err := s.principals.WithTx(tx).FindByID(ctx, order.UserID)
			if err != nil {
				return err
			}
			result = &plandomain.OrderResult{Order: order, Account: account}
			return nil
		case plandomain.OrderStatusPending:
		default:
			return plandomain.ErrOrderNotPending
		}

		plan, err := repo.FindPlan(ctx, order.PlanID)
		if err != nil {
			return err
		}
		if plan == nil {
			return plandomain.ErrPlanNotFound
		}

		account, err := s.complete(ctx, tx, order, plan)
		if err != nil {
			return err
		}
		result = &plandomain.OrderResult{Order: order, Account: account}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !replayed {
		s.metrics.RecordPlanOrder(ctx, string(plandomain.OrderStatusSucceeded), string(result.Order.BillingCycle))
	}
	return result, nil
}

func (s *Service) MarkOrderFailed(ctx context.Context, orderID snowflake.ID) (*plandomain.PlanOrder, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, plandomain.ErrOrderNotFound
	}
	changed, err := s.repo.TransitionOrder(ctx, orderID, plandomain.OrderStatusFailed)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, plandomain.ErrOrderNotPending
	}
	order.Status = plandomain.OrderStatusFailed
	s.metrics.RecordPlanOrder(ctx, string(order.Status), string(order.BillingCycle))
	return order, nil
}

// complete runs inside tx. order must still be pending.
func (s *Service) complete(ctx context.Context, tx *gorm.DB, order *plandomain.PlanOrder, plan *plandomain.Plan) (*principaldomain.User, error) {
	repo := s.repo.WithTx(tx)
	principals := s.principals.WithTx(tx)

	changed, err := repo.TransitionOrder(ctx, order.ID, plandomain.OrderStatusSucceeded)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, plandomain.ErrOrderNotPending
	}
	order.Status = plandomain.OrderStatusSucceeded

	now := s.clock.Now()
	err = principals.AssignPlan(ctx, order.UserID, principaldomain.PlanAssignment{
		PlanID:     plan.ID,
		ExpireDate: expiry(plan, order.BillingCycle, now),
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	if s.referrals != nil && order.FinalPrice.IsPositive() {
		_, err := s.referrals.RecordCommission(ctx, tx, referraldomain.CommissionInput{
			CompanyID:   order.UserID,
			PlanOrderID: order.ID,
			PlanPrice:   order.FinalPrice,
		})
		if err != nil {
			return nil, err
		}
	}

	return principals.FindByID(ctx, order.UserID)
}

func (s *Service) purchasablePlan(ctx context.Context, repo plandomain.Repository, planID snowflake.ID) (*plandomain.Plan, error) {
	plan, err := repo.FindPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, plandomain.ErrPlanNotFound
	}
	if !plan.IsEnabled {
		return nil, plandomain.ErrPlanDisabled
	}
	return plan, nil
}

func expiry(plan *plandomain.Plan, cycle plandomain.BillingCycle, now time.Time) *time.Time {
	if plan.Duration == plandomain.DurationLifetime {
		return nil
	}
	var at time.Time
	if cycle == plandomain.BillingCycleYearly {
		at = now.AddDate(1, 0, 0)
	} else {
		at = now.AddDate(0, 1, 0)
	}
	return &at
}

func copyMetadata(in map[string]any) map[string]any {
	out := make(map[string]any, len(in)+4)
	for k, v := range in {
		out[k] = v
	}
	return out
}
