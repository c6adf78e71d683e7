package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service interface {
	AvailableBalance(ctx context.Context, companyID snowflake.ID) (decimal.Decimal, error)
	Balance(ctx context.Context, companyID snowflake.ID) (*Balance, error)
	RequestPayout(ctx context.Context, companyID snowflake.ID, amount decimal.Decimal) (*PayoutRequest, error)
	ListPayouts(ctx context.Context, companyID snowflake.ID) ([]PayoutRequest, error)
	ApprovePayout(ctx context.Context, id, reviewerID snowflake.ID) (*PayoutRequest, error)
	RejectPayout(ctx context.Context, id, reviewerID snowflake.ID) (*PayoutRequest, error)

	GetSettings(ctx context.Context) (*ReferralSetting, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*ReferralSetting, error)

	CommissionRecorder
}

// CommissionRecorder credits the referrer of a tenant after a paid plan
// order. It runs inside the caller's transaction.
type CommissionRecorder interface {
	RecordCommission(ctx context.Context, tx *gorm.DB, in CommissionInput) (*Referral, error)
}

// PayoutLocker serialises payout creation per tenant.
type PayoutLocker interface {
	TryLockPayout(ctx context.Context, companyID string) (string, bool, error)
	ReleasePayout(ctx context.Context, companyID, token string) error
}
