package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

type Totals struct {
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
}

// CalculateTotals sums item amounts, applies tax to the subtotal and then
// subtracts the discount.
func CalculateTotals(items []InvoiceItem, taxRate, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Amount)
	}
	tax := subtotal.Mul(taxRate).Div(hundred).Round(4)
	return Totals{
		Subtotal:    subtotal,
		TaxAmount:   tax,
		TotalAmount: subtotal.Add(tax).Sub(discount),
	}
}

// Apply copies t onto inv.
func (t Totals) Apply(inv *Invoice) {
	inv.Subtotal = t.Subtotal
	inv.TaxAmount = t.TaxAmount
	inv.TotalAmount = t.TotalAmount
}

// StatusAfterPayment is paid once paid covers total, partial otherwise.
func StatusAfterPayment(total, paid decimal.Decimal) InvoiceStatus {
	if paid.GreaterThanOrEqual(total) {
		return InvoiceStatusPaid
	}
	if paid.IsPositive() {
		return InvoiceStatusPartial
	}
	return InvoiceStatusSent
}
