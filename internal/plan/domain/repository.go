package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindPlan(ctx context.Context, id snowflake.ID) (*Plan, error)
	ListPlans(ctx context.Context, enabledOnly bool) ([]*Plan, error)
	CreatePlan(ctx context.Context, plan *Plan) error

	FindCouponByCode(ctx context.Context, code string) (*Coupon, error)
	CreateCoupon(ctx context.Context, coupon *Coupon) error

	CreateOrder(ctx context.Context, order *PlanOrder) error
	FindOrder(ctx context.Context, id snowflake.ID) (*PlanOrder, error)
	// TransitionOrder moves a pending order to status and reports whether a row changed.
	TransitionOrder(ctx context.Context, id snowflake.ID, status OrderStatus) (bool, error)
}
