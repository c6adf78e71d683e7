// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPartial   InvoiceStatus = "partial"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Settled invoices are neither overdue nor editable.
func (s InvoiceStatus) Settled() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// Invoice is a tenant-issued bill. Totals are derived from Items by
// CalculateTotals and persisted alongside the row.
type Invoice struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID       snowflake.ID    `gorm:"column:tenant_id;not null;uniqueIndex:ux_invoice_number,priority:1" json:"tenant_id"`
	WorkspaceID    *snowflake.ID   `gorm:"column:workspace_id;index" json:"workspace_id,omitempty"`
	InvoiceNumber  string          `gorm:"column:invoice_number;type:varchar(64);not null;uniqueIndex:ux_invoice_number,priority:2" json:"invoice_number"`
	CustomerName   string          `gorm:"column:customer_name;type:text;not null" json:"customer_name"`
	CustomerEmail  string          `gorm:"column:customer_email;type:text" json:"customer_email,omitempty"`
	Subtotal       decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0" json:"subtotal"`
	TaxRate        decimal.Decimal `gorm:"column:tax_rate;type:numeric(9,4);not null;default:0" json:"tax_rate"`
	TaxAmount      decimal.Decimal `gorm:"column:tax_amount;type:numeric(18,4);not null;default:0" json:"tax_amount"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:numeric(18,4);not null;default:0" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:numeric(18,4);not null;default:0" json:"total_amount"`
	PaidAmount     decimal.Decimal `gorm:"column:paid_amount;type:numeric(18,4);not null;default:0" json:"paid_amount"`
	Status         InvoiceStatus   `gorm:"type:text;not null;default:'draft'" json:"status"`
	IssueDate      time.Time       `gorm:"column:issue_date;not null" json:"issue_date"`
	DueDate        time.Time       `gorm:"column:due_date;not null" json:"due_date"`
	Notes          string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items []InvoiceItem `gorm:"-" json:"items"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

func (i Invoice) BalanceDue() decimal.Decimal {
	return i.TotalAmount.Sub(i.PaidAmount)
}

func (i Invoice) IsOverdue(now time.Time) bool {
	return i.DueDate.Before(now) && !i.Status.Settled()
}

// InvoiceView is the response shape of an invoice with its derived
// balance and overdue state.
type InvoiceView struct {
	*Invoice
	BalanceDue decimal.Decimal `json:"balance_due"`
	IsOverdue  bool            `json:"is_overdue"`
}

// View evaluates the derived attributes at now.
func (i *Invoice) View(now time.Time) InvoiceView {
	return InvoiceView{
		Invoice:    i,
		BalanceDue: i.BalanceDue(),
		IsOverdue:  i.IsOverdue(now),
	}
}

// InvoiceItem is a line on an invoice. Amount always mirrors Rate.
type InvoiceItem struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID   snowflake.ID    `gorm:"column:invoice_id;not null;index" json:"invoice_id"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Rate        decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"rate"`
	Amount      decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"amount"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

// Normalize applies the save rule: amount := rate.
func (it *InvoiceItem) Normalize() {
	it.Amount = it.Rate
}

// InvoicePayment records money received against an invoice.
type InvoicePayment struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID     snowflake.ID    `gorm:"column:invoice_id;not null;index" json:"invoice_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"amount"`
	PaymentMethod string          `gorm:"column:payment_method;type:text" json:"payment_method,omitempty"`
	Reference     string          `gorm:"type:text" json:"reference,omitempty"`
	PaidAt        time.Time       `gorm:"column:paid_at;not null" json:"paid_at"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (InvoicePayment) TableName() string { return "invoice_payments" }
