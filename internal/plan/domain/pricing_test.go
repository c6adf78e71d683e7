package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestCalculatePlanPricing(t *testing.T) {
	plan := Plan{ID: 1, Price: d("100"), YearlyPrice: d("1000")}

	tests := []struct {
		name     string
		coupon   *Coupon
		cycle    BillingCycle
		original string
		discount string
		final    string
		coupon0  bool
	}{
		{name: "no coupon monthly", cycle: BillingCycleMonthly, original: "100", discount: "0", final: "100", coupon0: true},
		{name: "no coupon yearly", cycle: BillingCycleYearly, original: "1000", discount: "0", final: "1000", coupon0: true},
		{
			name:     "percentage",
			coupon:   &Coupon{ID: 7, Code: "SAVE10", Type: CouponTypePercentage, DiscountAmount: d("10"), Status: CouponStatusActive},
			cycle:    BillingCycleMonthly,
			original: "100", discount: "10", final: "90",
		},
		{
			name:     "fixed larger than price",
			coupon:   &Coupon{ID: 8, Code: "FIXED200", Type: CouponTypeFixed, DiscountAmount: d("200"), Status: CouponStatusActive},
			cycle:    BillingCycleMonthly,
			original: "100", discount: "100", final: "0",
		},
		{
			name:     "inactive coupon ignored",
			coupon:   &Coupon{ID: 9, Code: "OLD", Type: CouponTypePercentage, DiscountAmount: d("50"), Status: CouponStatusInactive},
			cycle:    BillingCycleYearly,
			original: "1000", discount: "0", final: "1000", coupon0: true,
		},
		{
			name:     "percentage above hundred floors at zero",
			coupon:   &Coupon{ID: 10, Code: "ALL", Type: CouponTypePercentage, DiscountAmount: d("150"), Status: CouponStatusActive},
			cycle:    BillingCycleMonthly,
			original: "100", discount: "150", final: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculatePlanPricing(plan, tt.coupon, tt.cycle)
			require.NoError(t, err)
			assert.True(t, d(tt.original).Equal(got.OriginalPrice), got.OriginalPrice.String())
			assert.True(t, d(tt.discount).Equal(got.DiscountAmount), got.DiscountAmount.String())
			assert.True(t, d(tt.final).Equal(got.FinalPrice), got.FinalPrice.String())
			if tt.coupon0 {
				assert.Nil(t, got.CouponID)
			} else {
				require.NotNil(t, got.CouponID)
				assert.Equal(t, tt.coupon.ID, *got.CouponID)
			}
		})
	}
}

func TestCalculatePlanPricingRejectsUnknownCycle(t *testing.T) {
	_, err := CalculatePlanPricing(Plan{Price: d("10")}, nil, BillingCycle("weekly"))
	assert.ErrorIs(t, err, ErrInvalidBillingCycle)
}
