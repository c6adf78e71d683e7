package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/workhub/internal/clock"
	plandomain "github.com/smallbiznis/workhub/internal/plan/domain"
	planrepo "github.com/smallbiznis/workhub/internal/plan/repository"
	principaldomain "github.com/smallbiznis/workhub/internal/principal/domain"
	principalrepo "github.com/smallbiznis/workhub/internal/principal/repository"
	referraldomain "github.com/smallbiznis/workhub/internal/referral/domain"
	dbpkg "github.com/smallbiznis/workhub/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var now = time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)

type commissionMock struct {
	mock.Mock
}

func (m *commissionMock) RecordCommission(ctx context.Context, tx *gorm.DB, in referraldomain.CommissionInput) (*referraldomain.Referral, error) {
	args := m.Called(ctx, tx, in)
	ref, _ := args.Get(0).(*referraldomain.Referral)
	return ref, args.Error(1)
}

type testEnv struct {
	db         *gorm.DB
	node       *snowflake.Node
	repo       plandomain.Repository
	principals principaldomain.Repository
	svc        plandomain.Service
	plan       *plandomain.Plan
	user       *principaldomain.User
}

func newTestEnv(t *testing.T, recorder referraldomain.CommissionRecorder) testEnv {
	t.Helper()
	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&principaldomain.User{},
		&plandomain.Plan{},
		&plandomain.Coupon{},
		&plandomain.PlanOrder{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	repo := planrepo.NewRepository(db)
	principals := principalrepo.NewRepository(db)
	ctx := context.Background()

	plan := &plandomain.Plan{ID: node.Generate(), Name: "Pro", Price: decimal.NewFromInt(100), YearlyPrice: decimal.NewFromInt(1000), Duration: "month", IsEnabled: true}
	require.NoError(t, repo.CreatePlan(ctx, plan))
	require.NoError(t, repo.CreateCoupon(ctx, &plandomain.Coupon{ID: node.Generate(), Code: "SAVE10", Type: plandomain.CouponTypePercentage, DiscountAmount: decimal.NewFromInt(10), Status: plandomain.CouponStatusActive}))
	require.NoError(t, repo.CreateCoupon(ctx, &plandomain.Coupon{ID: node.Generate(), Code: "FIXED200", Type: plandomain.CouponTypeFixed, DiscountAmount: decimal.NewFromInt(200), Status: plandomain.CouponStatusActive}))
	require.NoError(t, repo.CreateCoupon(ctx, &plandomain.Coupon{ID: node.Generate(), Code: "OLD", Type: plandomain.CouponTypeFixed, DiscountAmount: decimal.NewFromInt(5), Status: plandomain.CouponStatusInactive}))

	user := &principaldomain.User{ID: node.Generate(), Name: "Acme", Email: "acme@example.com", Type: principaldomain.UserTypeCompany}
	require.NoError(t, principals.CreateUser(ctx, user))

	svc := NewService(ServiceParams{
		Log:        zap.NewNop(),
		DB:         db,
		GenID:      node,
		Clock:      clock.NewFakeClock(now),
		Repo:       repo,
		Principals: principals,
		Referrals:  recorder,
	})
	return testEnv{db: db, node: node, repo: repo, principals: principals, svc: svc, plan: plan, user: user}
}

func TestCalculatePricingCouponCodes(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	got, err := env.svc.CalculatePricing(ctx, env.plan.ID, plandomain.PricingRequest{CouponCode: "SAVE10", BillingCycle: plandomain.BillingCycleMonthly})
	require.NoError(t, err)
	assert.Equal(t, "90", got.FinalPrice.String())
	assert.Equal(t, "10", got.DiscountAmount.String())

	got, err = env.svc.CalculatePricing(ctx, env.plan.ID, plandomain.PricingRequest{CouponCode: "FIXED200", BillingCycle: plandomain.BillingCycleMonthly})
	require.NoError(t, err)
	assert.True(t, got.FinalPrice.IsZero())

	for _, code := range []string{"NOPE", "OLD", ""} {
		got, err = env.svc.CalculatePricing(ctx, env.plan.ID, plandomain.PricingRequest{CouponCode: code, BillingCycle: plandomain.BillingCycleYearly})
		require.NoError(t, err)
		assert.Equal(t, "1000", got.FinalPrice.String(), code)
		assert.Nil(t, got.CouponID, code)
	}

	_, err = env.svc.CalculatePricing(ctx, env.node.Generate(), plandomain.PricingRequest{BillingCycle: plandomain.BillingCycleMonthly})
	assert.ErrorIs(t, err, plandomain.ErrPlanNotFound)
}

func TestValidateCoupon(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	coupon, err := env.svc.ValidateCoupon(ctx, " SAVE10 ")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", coupon.Code)

	_, err = env.svc.ValidateCoupon(ctx, "OLD")
	assert.ErrorIs(t, err, plandomain.ErrCouponNotFound)
}

func TestCreateOrderThenProcessPaymentAssignsPlan(t *testing.T) {
	recorder := &commissionMock{}
	recorder.On("RecordCommission", mock.Anything, mock.Anything, mock.MatchedBy(func(in referraldomain.CommissionInput) bool {
		return in.PlanPrice.Equal(decimal.NewFromInt(90))
	})).Return(nil, nil).Once()

	env := newTestEnv(t, recorder)
	ctx := context.Background()

	created, err := env.svc.CreatePlanOrder(ctx, plandomain.CreateOrderRequest{
		PlanID:        env.plan.ID,
		UserID:        env.user.ID,
		CouponCode:    "SAVE10",
		BillingCycle:  plandomain.BillingCycleMonthly,
		PaymentMethod: "stripe",
		Metadata:      map[string]any{"source": "checkout"},
	})
	require.NoError(t, err)
	order := created.Order
	assert.Equal(t, plandomain.OrderStatusPending, order.Status)
	assert.Nil(t, created.Account)
	assert.Contains(t, order.OrderNumber, orderNumberPrefix)
	assert.Equal(t, "checkout", order.Metadata["source"])
	assert.NotEmpty(t, order.Metadata["correlation_id"])

	paid, err := env.svc.ProcessPaymentSuccess(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, plandomain.OrderStatusSucceeded, paid.Order.Status)
	require.NotNil(t, paid.Account)
	require.NotNil(t, paid.Account.PlanID)
	assert.Equal(t, env.plan.ID, *paid.Account.PlanID)
	assert.True(t, paid.Account.PlanIsActive)
	require.NotNil(t, paid.Account.PlanExpireDate)
	assert.True(t, now.AddDate(0, 1, 0).Equal(paid.Account.PlanExpireDate.UTC()))

	replay, err := env.svc.ProcessPaymentSuccess(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, plandomain.OrderStatusSucceeded, replay.Order.Status)
	recorder.AssertExpectations(t)
}

func TestFreeOrderIsCompletedImmediately(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created, err := env.svc.CreatePlanOrder(ctx, plandomain.CreateOrderRequest{
		PlanID:       env.plan.ID,
		UserID:       env.user.ID,
		CouponCode:   "FIXED200",
		BillingCycle: plandomain.BillingCycleYearly,
	})
	require.NoError(t, err)
	assert.Equal(t, plandomain.OrderStatusSucceeded, created.Order.Status)
	require.NotNil(t, created.Account)
	require.NotNil(t, created.Account.PlanExpireDate)
	assert.True(t, now.AddDate(1, 0, 0).Equal(created.Account.PlanExpireDate.UTC()))
}

func TestProcessPaymentRollsBackWhenCommissionFails(t *testing.T) {
	recorder := &commissionMock{}
	recorder.On("RecordCommission", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	env := newTestEnv(t, recorder)
	ctx := context.Background()

	created, err := env.svc.CreatePlanOrder(ctx, plandomain.CreateOrderRequest{
		PlanID:       env.plan.ID,
		UserID:       env.user.ID,
		BillingCycle: plandomain.BillingCycleMonthly,
	})
	require.NoError(t, err)

	_, err = env.svc.ProcessPaymentSuccess(ctx, created.Order.ID)
	require.Error(t, err)

	order, err := env.repo.FindOrder(ctx, created.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, plandomain.OrderStatusPending, order.Status)

	user, err := env.principals.FindByID(ctx, env.user.ID)
	require.NoError(t, err)
	assert.Nil(t, user.PlanID)
	assert.False(t, user.PlanIsActive)
}

func TestMarkOrderFailed(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created, err := env.svc.CreatePlanOrder(ctx, plandomain.CreateOrderRequest{
		PlanID:       env.plan.ID,
		UserID:       env.user.ID,
		BillingCycle: plandomain.BillingCycleMonthly,
	})
	require.NoError(t, err)

	failed, err := env.svc.MarkOrderFailed(ctx, created.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, plandomain.OrderStatusFailed, failed.Status)

	_, err = env.svc.ProcessPaymentSuccess(ctx, created.Order.ID)
	assert.ErrorIs(t, err, plandomain.ErrOrderNotPending)
}

func TestCreateOrderUnknownUser(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.svc.CreatePlanOrder(context.Background(), plandomain.CreateOrderRequest{
		PlanID:       env.plan.ID,
		UserID:       env.node.Generate(),
		BillingCycle: plandomain.BillingCycleMonthly,
	})
	assert.ErrorIs(t, err, plandomain.ErrInvalidUser)
}
