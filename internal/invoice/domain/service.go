package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/workhub/internal/scope"
)

type ItemInput struct {
	Description string          `json:"description" binding:"required,max=500"`
	Rate        decimal.Decimal `json:"rate"`
}

type UpdateItemRequest struct {
	Description *string          `json:"description" binding:"omitempty,max=500"`
	Rate        *decimal.Decimal `json:"rate"`
}

type CreateInvoiceRequest struct {
	CustomerName   string          `json:"customer_name" binding:"required,max=255"`
	CustomerEmail  string          `json:"customer_email" binding:"omitempty,email"`
	IssueDate      time.Time       `json:"issue_date"`
	DueDate        time.Time       `json:"due_date" binding:"required"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Notes          string          `json:"notes"`
	Items          []ItemInput     `json:"items" binding:"dive"`
}

type RecordPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" binding:"max=64"`
	Reference     string          `json:"reference" binding:"max=255"`
}

// Document is a rendered invoice file.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

type Service interface {
	Create(ctx context.Context, sc scope.Scope, req CreateInvoiceRequest) (*Invoice, error)
	Get(ctx context.Context, sc scope.Scope, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, sc scope.Scope) ([]*Invoice, error)
	Cancel(ctx context.Context, sc scope.Scope, id snowflake.ID) (*Invoice, error)

	AddItem(ctx context.Context, sc scope.Scope, invoiceID snowflake.ID, in ItemInput) (*Invoice, error)
	UpdateItem(ctx context.Context, sc scope.Scope, invoiceID, itemID snowflake.ID, req UpdateItemRequest) (*Invoice, error)
	DeleteItem(ctx context.Context, sc scope.Scope, invoiceID, itemID snowflake.ID) (*Invoice, error)
	// RecalculateTotals recomputes and persists totals from the current items.
	RecalculateTotals(ctx context.Context, invoiceID snowflake.ID) (*Invoice, error)

	RecordPayment(ctx context.Context, sc scope.Scope, invoiceID snowflake.ID, req RecordPaymentRequest) (*Invoice, error)
	RenderPDF(ctx context.Context, sc scope.Scope, invoiceID snowflake.ID) (*Document, error)
}
