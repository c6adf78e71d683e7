package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/smallbiznis/workhub/internal/invoice/domain"
	"github.com/smallbiznis/workhub/pkg/db/option"
	"github.com/smallbiznis/workhub/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	invoices *repository.Store[invoicedomain.Invoice]
	items    *repository.Store[invoicedomain.InvoiceItem]
	payments *repository.Store[invoicedomain.InvoicePayment]
}

func NewRepository(db *gorm.DB) invoicedomain.Repository {
	return &repo{
		invoices: repository.NewStore[invoicedomain.Invoice](db),
		items:    repository.NewStore[invoicedomain.InvoiceItem](db),
		payments: repository.NewStore[invoicedomain.InvoicePayment](db),
	}
}

func (r *repo) WithTx(tx *gorm.DB) invoicedomain.Repository {
	if tx == nil {
		return r
	}
	return &repo{
		invoices: r.invoices.WithTx(tx),
		items:    r.items.WithTx(tx),
		payments: r.payments.WithTx(tx),
	}
}

func (r *repo) CreateInvoice(ctx context.Context, inv *invoicedomain.Invoice) error {
	return r.invoices.Create(ctx, inv)
}

func (r *repo) FindInvoice(ctx context.Context, id snowflake.ID) (*invoicedomain.Invoice, error) {
	if id == 0 {
		return nil, nil
	}
	return r.invoices.First(ctx, &invoicedomain.Invoice{ID: id})
}

func (r *repo) ListInvoices(ctx context.Context, tenantID snowflake.ID, workspaceID *snowflake.ID) ([]*invoicedomain.Invoice, error) {
	opts := []option.QueryOption{
		option.WithSortBy(option.SortBy{Column: "issue_date", Direction: "DESC"}),
	}
	if workspaceID != nil {
		opts = append(opts, option.WithWhere("workspace_id = ?", *workspaceID))
	}
	return r.invoices.Find(ctx, &invoicedomain.Invoice{TenantID: tenantID}, opts...)
}

func (r *repo) CountInvoices(ctx context.Context, tenantID snowflake.ID) (int64, error) {
	return r.invoices.Count(ctx, &invoicedomain.Invoice{TenantID: tenantID})
}

func (r *repo) SaveTotals(ctx context.Context, inv *invoicedomain.Invoice) error {
	return r.invoices.UpdateColumns(ctx, inv.ID, map[string]any{
		"subtotal":     inv.Subtotal,
		"tax_amount":   inv.TaxAmount,
		"total_amount": inv.TotalAmount,
		"paid_amount":  inv.PaidAmount,
		"status":       inv.Status,
	})
}

func (r *repo) UpdateStatus(ctx context.Context, id snowflake.ID, status invoicedomain.InvoiceStatus) error {
	return r.invoices.UpdateColumns(ctx, id, map[string]any{"status": status})
}

func (r *repo) ListItems(ctx context.Context, invoiceID snowflake.ID) ([]invoicedomain.InvoiceItem, error) {
	rows, err := r.items.Find(ctx, &invoicedomain.InvoiceItem{InvoiceID: invoiceID},
		option.WithSortBy(option.SortBy{Column: "id", Direction: "ASC"}))
	if err != nil {
		return nil, err
	}
	items := make([]invoicedomain.InvoiceItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, *row)
	}
	return items, nil
}

func (r *repo) FindItem(ctx context.Context, invoiceID, itemID snowflake.ID) (*invoicedomain.InvoiceItem, error) {
	if itemID == 0 {
		return nil, nil
	}
	return r.items.First(ctx, &invoicedomain.InvoiceItem{ID: itemID, InvoiceID: invoiceID})
}

func (r *repo) CreateItems(ctx context.Context, items []*invoicedomain.InvoiceItem) error {
	return r.items.CreateBatch(ctx, items)
}

func (r *repo) UpdateItem(ctx context.Context, item *invoicedomain.InvoiceItem) error {
	return r.items.UpdateColumns(ctx, item.ID, map[string]any{
		"description": item.Description,
		"rate":        item.Rate,
		"amount":      item.Amount,
	})
}

func (r *repo) DeleteItem(ctx context.Context, itemID snowflake.ID) error {
	return r.items.Delete(ctx, itemID)
}

func (r *repo) CreatePayment(ctx context.Context, p *invoicedomain.InvoicePayment) error {
	return r.payments.Create(ctx, p)
}

func (r *repo) ListPayments(ctx context.Context, invoiceID snowflake.ID) ([]*invoicedomain.InvoicePayment, error) {
	return r.payments.Find(ctx, &invoicedomain.InvoicePayment{InvoiceID: invoiceID},
		option.WithSortBy(option.SortBy{Column: "paid_at", Direction: "ASC"}))
}
