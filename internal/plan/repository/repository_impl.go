package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/smallbiznis/workhub/internal/plan/domain"
	"github.com/smallbiznis/workhub/pkg/db/option"
	"github.com/smallbiznis/workhub/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	db      *gorm.DB
	plans   *repository.Store[plandomain.Plan]
	coupons *repository.Store[plandomain.Coupon]
}

func NewRepository(db *gorm.DB) plandomain.Repository {
	return &repo{
		db:      db,
		plans:   repository.NewStore[plandomain.Plan](db),
		coupons: repository.NewStore[plandomain.Coupon](db),
	}
}

func (r *repo) WithTx(tx *gorm.DB) plandomain.Repository {
	if tx == nil {
		return r
	}
	return &repo{
		db:      tx,
		plans:   r.plans.WithTx(tx),
		coupons: r.coupons.WithTx(tx),
	}
}

func (r *repo) FindPlan(ctx context.Context, id snowflake.ID) (*plandomain.Plan, error) {
	if id == 0 {
		return nil, nil
	}
	return r.plans.First(ctx, &plandomain.Plan{ID: id})
}

func (r *repo) ListPlans(ctx context.Context, enabledOnly bool) ([]*plandomain.Plan, error) {
	opts := []option.QueryOption{option.WithSortBy(option.SortBy{Column: "price", Direction: "ASC"})}
	if enabledOnly {
		opts = append(opts, option.WithWhere("is_enabled = ?", true))
	}
	return r.plans.Find(ctx, &plandomain.Plan{}, opts...)
}

func (r *repo) CreatePlan(ctx context.Context, plan *plandomain.Plan) error {
	return r.plans.Create(ctx, plan)
}

func (r *repo) FindCouponByCode(ctx context.Context, code string) (*plandomain.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	return r.coupons.First(ctx, &plandomain.Coupon{Code: code})
}

func (r *repo) CreateCoupon(ctx context.Context, coupon *plandomain.Coupon) error {
	return r.coupons.Create(ctx, coupon)
}

func (r *repo) CreateOrder(ctx context.Context, order *plandomain.PlanOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repo) FindOrder(ctx context.Context, id snowflake.ID) (*plandomain.PlanOrder, error) {
	var order plandomain.PlanOrder
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repo) TransitionOrder(ctx context.Context, id snowflake.ID, status plandomain.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&plandomain.PlanOrder{}).
		Where("id = ? AND status = ?", id, plandomain.OrderStatusPending).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
