package domain

import "errors"

var (
	ErrInvalidBillingCycle = errors.New("invalid_billing_cycle")
	ErrPlanNotFound        = errors.New("plan_not_found")
	ErrPlanDisabled        = errors.New("plan_disabled")
	ErrOrderNotFound       = errors.New("plan_order_not_found")
	ErrOrderNotPending     = errors.New("plan_order_not_pending")
	ErrCouponNotFound      = errors.New("coupon_not_found")
	ErrInvalidUser         = errors.New("invalid_user")
)
