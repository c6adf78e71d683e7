package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateTotals(t *testing.T) {
	items := []InvoiceItem{
		{Rate: decimal.NewFromInt(50)},
		{Rate: decimal.NewFromInt(30)},
	}
	for i := range items {
		items[i].Normalize()
	}

	got := CalculateTotals(items, decimal.NewFromInt(10), decimal.NewFromInt(5))
	assert.True(t, decimal.NewFromInt(80).Equal(got.Subtotal), got.Subtotal.String())
	assert.True(t, decimal.NewFromInt(8).Equal(got.TaxAmount), got.TaxAmount.String())
	assert.True(t, decimal.NewFromInt(83).Equal(got.TotalAmount), got.TotalAmount.String())

	empty := CalculateTotals(nil, decimal.NewFromInt(10), decimal.Zero)
	assert.True(t, empty.TotalAmount.IsZero())
}

func TestNormalizeForcesAmountToRate(t *testing.T) {
	it := InvoiceItem{Rate: decimal.NewFromInt(12), Amount: decimal.NewFromInt(99)}
	it.Normalize()
	assert.True(t, it.Amount.Equal(it.Rate))
}

func TestBalanceDueAndOverdue(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	inv := Invoice{
		TotalAmount: decimal.NewFromInt(83),
		PaidAmount:  decimal.NewFromInt(40),
		Status:      InvoiceStatusPartial,
		DueDate:     now.Add(-time.Hour),
	}
	assert.True(t, decimal.NewFromInt(43).Equal(inv.BalanceDue()))
	assert.True(t, inv.IsOverdue(now))

	inv.Status = InvoiceStatusPaid
	assert.False(t, inv.IsOverdue(now))
	inv.Status = InvoiceStatusCancelled
	assert.False(t, inv.IsOverdue(now))

	inv.Status = InvoiceStatusSent
	inv.DueDate = now.Add(time.Hour)
	assert.False(t, inv.IsOverdue(now))
}

func TestStatusAfterPayment(t *testing.T) {
	total := decimal.NewFromInt(100)
	assert.Equal(t, InvoiceStatusPartial, StatusAfterPayment(total, decimal.NewFromInt(1)))
	assert.Equal(t, InvoiceStatusPaid, StatusAfterPayment(total, decimal.NewFromInt(100)))
	assert.Equal(t, InvoiceStatusSent, StatusAfterPayment(total, decimal.Zero))
}
