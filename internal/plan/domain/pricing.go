package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// CalculatePlanPricing applies coupon to the plan price for cycle. A nil or
// ineligible coupon is the same as no coupon.
func CalculatePlanPricing(plan Plan, coupon *Coupon, cycle BillingCycle) (Pricing, error) {
	if !cycle.Valid() {
		return Pricing{}, ErrInvalidBillingCycle
	}

	original := plan.Price
	if cycle == BillingCycleYearly {
		original = plan.YearlyPrice
	}

	pricing := Pricing{
		OriginalPrice:  original,
		DiscountAmount: decimal.Zero,
		FinalPrice:     original,
	}
	if !coupon.Eligible() {
		return pricing, nil
	}

	var discount decimal.Decimal
	switch coupon.Type {
	case CouponTypePercentage:
		discount = original.Mul(coupon.DiscountAmount).Div(hundred)
	case CouponTypeFixed:
		discount = decimal.Min(coupon.DiscountAmount, original)
	default:
		return pricing, nil
	}

	id := coupon.ID
	pricing.DiscountAmount = discount
	pricing.FinalPrice = decimal.Max(decimal.Zero, original.Sub(discount))
	pricing.CouponID = &id
	return pricing, nil
}
