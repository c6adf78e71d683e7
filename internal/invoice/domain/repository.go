package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateInvoice(ctx context.Context, inv *Invoice) error
	FindInvoice(ctx context.Context, id snowflake.ID) (*Invoice, error)
	ListInvoices(ctx context.Context, tenantID snowflake.ID, workspaceID *snowflake.ID) ([]*Invoice, error)
	CountInvoices(ctx context.Context, tenantID snowflake.ID) (int64, error)
	// SaveTotals persists the derived totals, paid amount and status.
	SaveTotals(ctx context.Context, inv *Invoice) error
	UpdateStatus(ctx context.Context, id snowflake.ID, status InvoiceStatus) error

	ListItems(ctx context.Context, invoiceID snowflake.ID) ([]InvoiceItem, error)
	FindItem(ctx context.Context, invoiceID, itemID snowflake.ID) (*InvoiceItem, error)
	CreateItems(ctx context.Context, items []*InvoiceItem) error
	UpdateItem(ctx context.Context, item *InvoiceItem) error
	DeleteItem(ctx context.Context, itemID snowflake.ID) error

	CreatePayment(ctx context.Context, p *InvoicePayment) error
	ListPayments(ctx context.Context, invoiceID snowflake.ID) ([]*InvoicePayment, error)
}
