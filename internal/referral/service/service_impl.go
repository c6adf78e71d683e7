package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/workhub/internal/clock"
	obsmetrics "github.com/smallbiznis/workhub/internal/observability/metrics"
	principaldomain "github.com/smallbiznis/workhub/internal/principal/domain"
	referraldomain "github.com/smallbiznis/workhub/internal/referral/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

type ServiceParams struct {
	fx.In

	Log        *zap.Logger
	DB         *gorm.DB
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       referraldomain.Repository
	Principals principaldomain.Repository
	Locker     referraldomain.PayoutLocker `optional:"true"`
	Metrics    *obsmetrics.Metrics         `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	db         *gorm.DB
	genID      *snowflake.Node
	clock      clock.Clock
	repo       referraldomain.Repository
	principals principaldomain.Repository
	locker     referraldomain.PayoutLocker
	metrics    *obsmetrics.Metrics
}

func NewService(p ServiceParams) referraldomain.Service {
	return &Service{
		log:        p.Log.Named("referral.service"),
		db:         p.DB,
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		principals: p.Principals,
		locker:     p.Locker,
		metrics:    p.Metrics,
	}
}

// AvailableBalance is earned commission minus payouts that are pending or approved.
func (s *Service) AvailableBalance(ctx context.Context, companyID snowflake.ID) (decimal.Decimal, error) {
	return availableBalance(ctx, s.repo, companyID)
}

func availableBalance(ctx context.Context, repo referraldomain.Repository, companyID snowflake.ID) (decimal.Decimal, error) {
	earned, err := repo.SumReferrals(ctx, companyID)
	if err != nil {
		return decimal.Zero, err
	}
	committed, err := repo.SumPayouts(ctx, companyID, referraldomain.OpenPayoutStatuses)
	if err != nil {
		return decimal.Zero, err
	}
	return earned.Sub(committed), nil
}

func (s *Service) Balance(ctx context.Context, companyID snowflake.ID) (*referraldomain.Balance, error) {
	if companyID == 0 {
		return nil, referraldomain.ErrInvalidCompany
	}
	earned, err := s.repo.SumReferrals(ctx, companyID)
	if err != nil {
		return nil, err
	}
	committed, err := s.repo.SumPayouts(ctx, companyID, referraldomain.OpenPayoutStatuses)
	if err != nil {
		return nil, err
	}
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	return &referraldomain.Balance{
		Earned:    earned,
		Committed: committed,
		Available: earned.Sub(committed),
		Threshold: settings.ThresholdAmount,
	}, nil
}

func (s *Service) RequestPayout(ctx context.Context, companyID snowflake.ID, amount decimal.Decimal) (*referraldomain.PayoutRequest, error) {
	if companyID == 0 {
		return nil, referraldomain.ErrInvalidCompany
	}
	if !amount.IsPositive() {
		return nil, referraldomain.ErrInvalidAmount
	}

	if s.locker != nil {
		token, ok, err := s.locker.TryLockPayout(ctx, companyID.String())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, referraldomain.ErrPayoutInProgress
		}
		defer func() {
			if err := s.locker.ReleasePayout(context.WithoutCancel(ctx), companyID.String(), token); err != nil {
				s.log.Warn("release payout lock failed", zap.String("company_id", companyID.String()), zap.Error(err))
			}
		}()
	}

	var payout *referraldomain.PayoutRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		available, err := availableBalance(ctx, repo, companyID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(available) {
			return referraldomain.ErrInsufficientBalance
		}

		settings, err := repo.FindSettings(ctx)
		if err != nil {
			return err
		}
		if settings != nil && amount.LessThan(settings.ThresholdAmount) {
			return referraldomain.ErrBelowThreshold
		}

		now := s.clock.Now()
		payout = &referraldomain.PayoutRequest{
			ID:        s.genID.Generate(),
			CompanyID: companyID,
			Amount:    amount,
			Status:    referraldomain.PayoutStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return repo.CreatePayout(ctx, payout)
	})
	if err != nil {
		s.log.Info("payout request rejected",
			zap.String("company_id", companyID.String()),
			zap.String("amount", amount.String()),
			zap.Error(err),
		)
		s.metrics.RecordPayoutRequest(ctx, "rejected")
		return nil, err
	}

	s.metrics.RecordPayoutRequest(ctx, string(referraldomain.PayoutStatusPending))
	return payout, nil
}

func (s *Service) ListPayouts(ctx context.Context, companyID snowflake.ID) ([]referraldomain.PayoutRequest, error) {
	if companyID == 0 {
		return nil, referraldomain.ErrInvalidCompany
	}
	return s.repo.ListPayouts(ctx, companyID)
}

func (s *Service) ApprovePayout(ctx context.Context, id, reviewerID snowflake.ID) (*referraldomain.PayoutRequest, error) {
	return s.review(ctx, id, reviewerID, referraldomain.PayoutStatusApproved)
}

func (s *Service) RejectPayout(ctx context.Context, id, reviewerID snowflake.ID) (*referraldomain.PayoutRequest, error) {
	return s.review(ctx, id, reviewerID, referraldomain.PayoutStatusRejected)
}

func (s *Service) review(ctx context.Context, id, reviewerID snowflake.ID, status referraldomain.PayoutStatus) (*referraldomain.PayoutRequest, error) {
	existing, err := s.repo.FindPayout(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, referraldomain.ErrPayoutNotFound
	}

	changed, err := s.repo.TransitionPayout(ctx, id, status, reviewerID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, referraldomain.ErrInvalidStatus
	}

	s.metrics.RecordPayoutRequest(ctx, string(status))
	return s.repo.FindPayout(ctx, id)
}

// GetSettings returns the seeded program settings or a disabled zero value.
func (s *Service) GetSettings(ctx context.Context) (*referraldomain.ReferralSetting, error) {
	settings, err := s.repo.FindSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return &referraldomain.ReferralSetting{}, nil
	}
	return settings, nil
}

func (s *Service) UpdateSettings(ctx context.Context, req referraldomain.UpdateSettingsRequest) (*referraldomain.ReferralSetting, error) {
	if req.CommissionPercentage.IsNegative() || req.CommissionPercentage.GreaterThan(hundred) {
		return nil, referraldomain.ErrInvalidPercentage
	}
	if req.ThresholdAmount.IsNegative() {
		return nil, referraldomain.ErrInvalidAmount
	}

	settings, err := s.repo.FindSettings(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if settings == nil {
		operator, err := s.principals.FindOperator(ctx)
		if err != nil {
			return nil, err
		}
		if operator == nil {
			return nil, referraldomain.ErrInvalidCompany
		}
		settings = &referraldomain.ReferralSetting{
			ID:        s.genID.Generate(),
			OwnerID:   operator.ID,
			CreatedAt: now,
		}
	}
	settings.IsEnabled = req.IsEnabled
	settings.CommissionPercentage = req.CommissionPercentage
	settings.ThresholdAmount = req.ThresholdAmount
	settings.Guidelines = req.Guidelines
	settings.UpdatedAt = now

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// RecordCommission credits the tenant whose referral code the buyer signed up
// with. Each referred tenant pays out commission once.
func (s *Service) RecordCommission(ctx context.Context, tx *gorm.DB, in referraldomain.CommissionInput) (*referraldomain.Referral, error) {
	repo := s.repo.WithTx(tx)
	principals := s.principals.WithTx(tx)

	buyer, err := principals.FindByID(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if buyer == nil || buyer.UsedReferralCode == "" {
		return nil, nil
	}

	settings, err := repo.FindSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil || !settings.IsEnabled || !settings.CommissionPercentage.IsPositive() {
		return nil, nil
	}

	referrer, err := principals.FindByReferralCode(ctx, buyer.UsedReferralCode)
	if err != nil {
		return nil, err
	}
	if referrer == nil || referrer.ID == buyer.ID {
		return nil, nil
	}

	existing, err := repo.FindReferralByReferred(ctx, buyer.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}

	ref := &referraldomain.Referral{
		ID:                   s.genID.Generate(),
		CompanyID:            referrer.ID,
		ReferredCompanyID:    buyer.ID,
		PlanOrderID:          in.PlanOrderID,
		PlanPrice:            in.PlanPrice,
		CommissionPercentage: settings.CommissionPercentage,
		Amount:               in.PlanPrice.Mul(settings.CommissionPercentage).Div(hundred).Round(4),
		CreatedAt:            s.clock.Now(),
	}
	if err := repo.CreateReferral(ctx, ref); err != nil {
		return nil, err
	}

	s.log.Info("referral commission recorded",
		zap.String("referrer_id", referrer.ID.String()),
		zap.String("referred_id", buyer.ID.String()),
		zap.String("amount", ref.Amount.String()),
	)
	return ref, nil
}
