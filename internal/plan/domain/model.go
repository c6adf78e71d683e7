package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

func (c BillingCycle) Valid() bool {
	return c == BillingCycleMonthly || c == BillingCycleYearly
}

// Plan is a billing tier. Duration "lifetime" plans never expire.
type Plan struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"type:text;not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"price"`
	YearlyPrice decimal.Decimal `gorm:"column:yearly_price;type:numeric(18,4);not null" json:"yearly_price"`
	Duration    string          `gorm:"type:text;not null;default:'month'" json:"duration"`
	IsEnabled   bool            `gorm:"column:is_enabled;not null;default:true" json:"is_enabled"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Plan) TableName() string { return "plans" }

const DurationLifetime = "lifetime"

type CouponType string

const (
	CouponTypePercentage CouponType = "percentage"
	CouponTypeFixed      CouponType = "fixed"
)

const (
	CouponStatusActive   = "active"
	CouponStatusInactive = "inactive"
)

type Coupon struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	Code           string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"code"`
	Type           CouponType      `gorm:"type:text;not null" json:"type"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:numeric(18,4);not null" json:"discount_amount"`
	Status         string          `gorm:"type:text;not null;default:'active'" json:"status"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Coupon) TableName() string { return "coupons" }

func (c *Coupon) Eligible() bool {
	return c != nil && c.Status == CouponStatusActive
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusSucceeded OrderStatus = "succeeded"
	OrderStatusFailed    OrderStatus = "failed"
)

type PlanOrder struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrderNumber    string            `gorm:"column:order_number;type:varchar(40);not null;uniqueIndex" json:"order_number"`
	PlanID         snowflake.ID      `gorm:"column:plan_id;not null;index" json:"plan_id"`
	UserID         snowflake.ID      `gorm:"column:user_id;not null;index" json:"user_id"`
	CouponID       *snowflake.ID     `gorm:"column:coupon_id" json:"coupon_id,omitempty"`
	BillingCycle   BillingCycle      `gorm:"column:billing_cycle;type:text;not null" json:"billing_cycle"`
	OriginalPrice  decimal.Decimal   `gorm:"column:original_price;type:numeric(18,4);not null" json:"original_price"`
	DiscountAmount decimal.Decimal   `gorm:"column:discount_amount;type:numeric(18,4);not null" json:"discount_amount"`
	FinalPrice     decimal.Decimal   `gorm:"column:final_price;type:numeric(18,4);not null" json:"final_price"`
	Status         OrderStatus       `gorm:"type:text;not null" json:"status"`
	PaymentMethod  string            `gorm:"column:payment_method;type:text" json:"payment_method"`
	Metadata       datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (PlanOrder) TableName() string { return "plan_orders" }

// Pricing is the outcome of applying an optional coupon to a plan.
type Pricing struct {
	OriginalPrice  decimal.Decimal `json:"original_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalPrice     decimal.Decimal `json:"final_price"`
	CouponID       *snowflake.ID   `json:"coupon_id,omitempty"`
}
