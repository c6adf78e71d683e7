package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	SumReferrals(ctx context.Context, companyID snowflake.ID) (decimal.Decimal, error)
	SumPayouts(ctx context.Context, companyID snowflake.ID, statuses []PayoutStatus) (decimal.Decimal, error)

	CreateReferral(ctx context.Context, r *Referral) error
	FindReferralByReferred(ctx context.Context, referredID snowflake.ID) (*Referral, error)

	CreatePayout(ctx context.Context, p *PayoutRequest) error
	FindPayout(ctx context.Context, id snowflake.ID) (*PayoutRequest, error)
	ListPayouts(ctx context.Context, companyID snowflake.ID) ([]PayoutRequest, error)
	// TransitionPayout moves a pending payout to status and reports whether a row changed.
	TransitionPayout(ctx context.Context, id snowflake.ID, status PayoutStatus, reviewer snowflake.ID, at time.Time) (bool, error)

	// FindSettings returns the program singleton, or nil when none was seeded.
	FindSettings(ctx context.Context) (*ReferralSetting, error)
	SaveSettings(ctx context.Context, s *ReferralSetting) error
}
