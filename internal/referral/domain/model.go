package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Referral is commission earned by CompanyID when the tenant it referred
// completed a paid plan order.
type Referral struct {
	ID                   snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID            snowflake.ID    `gorm:"column:company_id;not null;index" json:"company_id"`
	ReferredCompanyID    snowflake.ID    `gorm:"column:referred_company_id;not null;uniqueIndex" json:"referred_company_id"`
	PlanOrderID          snowflake.ID    `gorm:"column:plan_order_id;not null" json:"plan_order_id"`
	PlanPrice            decimal.Decimal `gorm:"column:plan_price;type:numeric(18,4);not null" json:"plan_price"`
	CommissionPercentage decimal.Decimal `gorm:"column:commission_percentage;type:numeric(9,4);not null" json:"commission_percentage"`
	Amount               decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"amount"`
	CreatedAt            time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Referral) TableName() string { return "referrals" }

type PayoutStatus string

const (
	PayoutStatusPending  PayoutStatus = "pending"
	PayoutStatusApproved PayoutStatus = "approved"
	PayoutStatusRejected PayoutStatus = "rejected"
)

// OpenPayoutStatuses draw down the available balance.
var OpenPayoutStatuses = []PayoutStatus{PayoutStatusPending, PayoutStatusApproved}

type PayoutRequest struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID  snowflake.ID    `gorm:"column:company_id;not null;index" json:"company_id"`
	Amount     decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"amount"`
	Status     PayoutStatus    `gorm:"type:text;not null" json:"status"`
	ReviewedBy *snowflake.ID   `gorm:"column:reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time      `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (PayoutRequest) TableName() string { return "payout_requests" }

// ReferralSetting is the operator-owned program configuration.
type ReferralSetting struct {
	ID                   snowflake.ID    `gorm:"primaryKey" json:"id"`
	OwnerID              snowflake.ID    `gorm:"column:owner_id;not null;uniqueIndex" json:"owner_id"`
	IsEnabled            bool            `gorm:"column:is_enabled;not null;default:false" json:"is_enabled"`
	CommissionPercentage decimal.Decimal `gorm:"column:commission_percentage;type:numeric(9,4);not null" json:"commission_percentage"`
	ThresholdAmount      decimal.Decimal `gorm:"column:threshold_amount;type:numeric(18,4);not null" json:"threshold_amount"`
	Guidelines           string          `gorm:"type:text" json:"guidelines"`
	CreatedAt            time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ReferralSetting) TableName() string { return "referral_settings" }

// CommissionInput describes a succeeded plan order of a possibly referred tenant.
type CommissionInput struct {
	CompanyID   snowflake.ID
	PlanOrderID snowflake.ID
	PlanPrice   decimal.Decimal
}

type Balance struct {
	Earned    decimal.Decimal `json:"earned"`
	Committed decimal.Decimal `json:"committed"`
	Available decimal.Decimal `json:"available"`
	Threshold decimal.Decimal `json:"threshold"`
}

type PayoutRequestInput struct {
	Amount decimal.Decimal `json:"amount"`
}

type UpdateSettingsRequest struct {
	IsEnabled            bool            `json:"is_enabled"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage"`
	ThresholdAmount      decimal.Decimal `json:"threshold_amount"`
	Guidelines           string          `json:"guidelines"`
}
