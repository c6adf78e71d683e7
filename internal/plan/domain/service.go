package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	principaldomain "github.com/smallbiznis/workhub/internal/principal/domain"
)

type PricingRequest struct {
	CouponCode   string       `json:"coupon_code"`
	BillingCycle BillingCycle `json:"billing_cycle" binding:"required,oneof=monthly yearly"`
}

type CreateOrderRequest struct {
	PlanID        snowflake.ID   `json:"-"`
	UserID        snowflake.ID   `json:"-"`
	CouponCode    string         `json:"coupon_code"`
	BillingCycle  BillingCycle   `json:"billing_cycle" binding:"required,oneof=monthly yearly"`
	PaymentMethod string         `json:"payment_method" binding:"max=64"`
	Metadata      map[string]any `json:"metadata"`
}

// OrderResult is the persisted order and, once paid, the refreshed account.
type OrderResult struct {
	Order   *PlanOrder            `json:"order"`
	Account *principaldomain.User `json:"account,omitempty"`
}

type Service interface {
	ListPlans(ctx context.Context) ([]*Plan, error)
	CalculatePricing(ctx context.Context, planID snowflake.ID, req PricingRequest) (*Pricing, error)
	ValidateCoupon(ctx context.Context, code string) (*Coupon, error)
	CreatePlanOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error)
	ProcessPaymentSuccess(ctx context.Context, orderID snowflake.ID) (*OrderResult, error)
	MarkOrderFailed(ctx context.Context, orderID snowflake.ID) (*PlanOrder, error)
}
