package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/workhub/internal/clock"
	invoicedomain "github.com/smallbiznis/workhub/internal/invoice/domain"
	"github.com/smallbiznis/workhub/internal/invoice/format"
	obsmetrics "github.com/smallbiznis/workhub/internal/observability/metrics"
	principaldomain "github.com/smallbiznis/workhub/internal/principal/domain"
	"github.com/smallbiznis/workhub/internal/providers/pdf"
	"github.com/smallbiznis/workhub/internal/scope"
	settingsdomain "github.com/smallbiznis/workhub/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// presentationKeys are read from settings when rendering documents.
var presentationKeys = []string{
	"invoice_prefix",
	"dateFormat",
	"currencySymbol",
	"site_currency_symbol_position",
	"decimal_format",
	"thousand_separator",
	"decimal_separator",
}

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       invoicedomain.Repository
	Settings   settingsdomain.Service
	Principals principaldomain.Repository
	PDF        pdf.Provider
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID      *snowflake.Node
	clock      clock.Clock
	repo       invoicedomain.Repository
	settings   settingsdomain.Service
	principals principaldomain.Repository
	pdf        pdf.Provider
	metrics    *obsmetrics.Metrics
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,

		clock:      p.Clock,
		repo:       p.Repo,
		settings:   p.Settings,
		principals: p.Principals,
		pdf:        p.PDF,
		metrics:    p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, sc scope.Scope, req invoicedomain.CreateInvoiceRequest) (*invoicedomain.Invoice, error) {
	if !sc.Valid() {
		return nil, invoicedomain.ErrPrincipalRequired
	}
	sc = sc.Normalized()

	customer := strings.TrimSpace(req.CustomerName)
	if customer == "" {
		return nil, invoicedomain.ErrInvalidCustomer
	}
	if req.TaxRate.IsNegative() || req.TaxRate.GreaterThan(hundred) {
		return nil, invoicedomain.ErrInvalidTaxRate
	}
	if req.DiscountAmount.IsNegative() {
		return nil, invoicedomain.ErrInvalidAmount
	}

	now := s.clock.Now()
	issue := req.IssueDate
	if issue.IsZero() {
		issue = now
	}
	if req.DueDate.IsZero() || req.DueDate.Before(issue) {
		return nil, invoicedomain.ErrInvalidDueDate
	}
	for _, in := range req.Items {
		if err := validateItem(in.Description, in.Rate); err != nil {
			return nil, err
		}
	}

	prefix, _ := s.settings.Get(ctx, sc, "invoice_prefix", nil)

	var out *invoicedomain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		count, err := repo.CountInvoices(ctx, sc.PrincipalID)
		if err != nil {
			return err
		}
		number, err := format.FormatInvoiceNumber(format.DefaultInvoiceNumberTemplate, prefix, issue, count+1)
		if err != nil {
			return err
		}

		inv := &invoicedomain.Invoice{
			ID:             s.genID.Generate(),
			TenantID:       sc.PrincipalID,
			WorkspaceID:    sc.WorkspaceID,
			InvoiceNumber:  number,
			CustomerName:   customer,
			CustomerEmail:  strings.TrimSpace(req.CustomerEmail),
			TaxRate:        req.TaxRate,
			DiscountAmount: req.DiscountAmount,
			Status:         invoicedomain.InvoiceStatusDraft,
			IssueDate:      issue,
			DueDate:        req.DueDate,
			Notes:          req.Notes,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := repo.CreateInvoice(ctx, inv); err != nil {
			return err
		}

		items := make([]*invoicedomain.InvoiceItem, 0, len(req.Items))
		for _, in := range req.Items {
			items = append(items, s.newItem(inv.ID, in, now))
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return err
		}

		out, err = s.recalculate(ctx, repo, inv)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice created",
		zap.String("invoice_number", out.InvoiceNumber),
		zap.String("tenant_id", out.TenantID.String()),
		zap.String("total_amount", out.TotalAmount.String()),
	)
	return out, nil
}

func (s *Service) Get(ctx context.Context, sc scope.Scope, id snowflake.ID) (*invoicedomain.Invoice, error) {
	inv, err := s.owned(ctx, s.repo, sc, id)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

func (s *Service) List(ctx context.Context, sc scope.Scope) ([]*invoicedomain.Invoice, error) {
	if !sc.Valid() {
		return nil, invoicedomain.ErrPrincipalRequired
	}
	sc = sc.Normalized()
	return s.repo.ListInvoices(ctx, sc.PrincipalID, sc.WorkspaceID)
}

func (s *Service) Cancel(ctx context.Context, sc scope.Scope, id snowflake.ID) (*invoicedomain.Invoice, error) {
	inv, err := s.owned(ctx, s.repo, sc, id)
	if err != nil {
		return nil, err
	}
	if inv.Status.Settled() || inv.PaidAmount.IsPositive() {
		return nil, invoicedomain.ErrInvoiceLocked
	}
	if err := s.repo.UpdateStatus(ctx, inv.ID, invoicedomain.InvoiceStatusCancelled); err != nil {
		return nil, err
	}
	inv.Status = invoicedomain.InvoiceStatusCancelled
	return inv, nil
}

func (s *Service) AddItem(ctx context.Context, sc scope.Scope, invoiceID snowflake.ID, in invoicedomain.ItemInput) (*invoicedomain.Invoice, error) {
	if err := validateItem(in.Description, in.Rate); err != nil {
		return nil, err
	}
	return s.mutateItems(ctx, sc, invoiceID, func(repo invoicedomain.Repository, inv *invoicedomain.Invoice) error {
		return repo.CreateItems(ctx, []*invoicedomain.InvoiceItem{s.newItem(inv.ID, in, s.clock.Now())})
	})
}

func (s *Service) UpdateItem(ctx context.Context, sc scope.Scope, invoiceID, itemID snowflake.ID, req invoicedomain.UpdateItemRequest) (*invoicedomain.Invoice, error) {
	return s.mutateItems(ctx, sc, invoiceID, func(repo invoicedomain.Repository, inv *invoicedomain.Invoice) error {
		item, err := repo.FindItem(ctx, inv.ID, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return invoicedomain.ErrItemNotFound
		}
		if req.Description != nil {
			item.Description = strings.TrimSpace(*req.Description)
		}
		if req.Rate != nil {
			item.Rate = *req.Rate
		}
		if err := validateItem(item.Description, item.Rate); err != nil {
			return err
		}
		item.Normalize()
		return repo.UpdateItem(ctx, item)
	})
}

func (s *Service) DeleteItem(ctx context.Context, sc scope.Scope, invoiceID, itemID snowflake.ID) (*invoicedomain.Invoice, error) {
	return s.mutateItems(ctx, sc, invoiceID, func(repo invoicedomain.Repository, inv *invoicedomain.Invoice) error {
		item, err := repo.FindItem(ctx, inv.ID, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return invoicedomain.ErrItemNotFound
		}
		return repo.DeleteItem(ctx, item.ID)
	})
}

// mutateItems applies fn and recalculates totals in the same transaction.
func (s *Service) mutateItems(ctx context.Context, sc scope.Scope, invoiceID snowflake.ID, fn func(invoicedomain.Repository, *invoicedomain.Invoice) error) (*invoicedomain.Invoice, error) {
	var out *invoicedomain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		inv, err := s.owned(ctx, repo, sc, invoiceID)
		if err != nil {
			return err
		}
		if inv.Status.Settled() {
			return invoicedomain.ErrInvoiceLocked
		}
		if err := fn(repo, inv); err != nil {
			return err
		}
		out, err = s.recalculate(ctx, repo, inv)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) RecalculateTotals(ctx context.Context, invoiceID snowflake.ID) (*invoicedomain.Invoice, error) {
	var out *invoicedomain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		inv, err := repo.FindInvoice(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return invoicedomain.ErrInvoiceNotFound
		}
		out, err = s.recalculate(ctx, repo, inv)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) recalculate(ctx context.Context, repo invoicedomain.Repository, inv *invoicedomain.Invoice) (*invoicedomain.Invoice, error) {
	items, err := repo.ListItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	invoicedomain.CalculateTotals(items, inv.TaxRate, inv.DiscountAmount).Apply(inv)
	if inv.PaidAmount.IsPositive() && inv.Status != invoicedomain.InvoiceStatusCancelled {
		inv.Status = invoicedomain.StatusAfterPayment(inv.TotalAmount, inv.PaidAmount)
	}
	if err := repo.SaveTotals(ctx, inv); err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

func (s *Service) RecordPayment(ctx context.Context, sc scope.Scope, invoiceID snowflake.ID, req invoicedomain.RecordPaymentRequest) (*invoicedomain.Invoice, error) {
	if !req.Amount.IsPositive() {
		return nil, invoicedomain.ErrInvalidAmount
	}

	var out *invoicedomain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		inv, err := s.owned(ctx, repo, sc, invoiceID)
		if err != nil {
			return err
		}
		if inv.Status.Settled() {
			return invoicedomain.ErrInvoiceLocked
		}
		if req.Amount.GreaterThan(inv.BalanceDue()) {
			return invoicedomain.ErrOverpayment
		}

		now := s.clock.Now()
		err = repo.CreatePayment(ctx, &invoicedomain.InvoicePayment{
			ID:            s.genID.Generate(),
			InvoiceID:     inv.ID,
			Amount:        req.Amount,
			PaymentMethod: strings.TrimSpace(req.PaymentMethod),
			Reference:     strings.TrimSpace(req.Reference),
			PaidAt:        now,
			CreatedAt:     now,
		})
		if err != nil {
			return err
		}

		inv.PaidAmount = inv.PaidAmount.Add(req.Amount)
		inv.Status = invoicedomain.StatusAfterPayment(inv.TotalAmount, inv.PaidAmount)
		if err := repo.SaveTotals(ctx, inv); err != nil {
			return err
		}
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordInvoicePayment(ctx, string(out.Status))
	return out, nil
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func (s *Service) RenderPDF(ctx context.Context, sc scope.Scope, invoiceID snowflake.ID) (*invoicedomain.Document, error) {
	inv, err := s.Get(ctx, sc, invoiceID)
	if err != nil {
		return nil, err
	}

	invScope := scope.Scope{PrincipalID: inv.TenantID, WorkspaceID: inv.WorkspaceID}
	values := make(map[string]string, len(presentationKeys))
	for _, key := range presentationKeys {
		if v, ok := s.settings.Get(ctx, invScope, key, nil); ok {
			values[key] = v
		}
	}
	doc := s.documentData(ctx, inv, values)
	if inv.Status == invoicedomain.InvoiceStatusPaid {
		paidAt := inv.UpdatedAt
		payments, err := s.repo.ListPayments(ctx, inv.ID)
		if err != nil {
			return nil, err
		}
		if n := len(payments); n > 0 {
			paidAt = payments[n-1].PaidAt
		}
		doc.DatePaid = format.Date(paidAt, values["dateFormat"])
	}

	body, err := s.pdf.Render(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	name := strings.Trim(unsafeFilename.ReplaceAllString(inv.InvoiceNumber, "-"), "-")
	if name == "" {
		name = inv.ID.String()
	}
	return &invoicedomain.Document{
		Filename:    name + ".pdf",
		ContentType: "application/pdf",
		Body:        body,
	}, nil
}

func (s *Service) documentData(ctx context.Context, inv *invoicedomain.Invoice, values map[string]string) pdf.Document {
	currency := format.CurrencyFromSettings(values)
	dateFormat := values["dateFormat"]

	data := pdf.Document{
		Title:         "Invoice",
		InvoiceNumber: inv.InvoiceNumber,
		IssueDate:     format.Date(inv.IssueDate, dateFormat),
		DueDate:       format.Date(inv.DueDate, dateFormat),
		Status:        strings.ToUpper(string(inv.Status)),
		BillToName:    inv.CustomerName,
		BillToEmail:   inv.CustomerEmail,
		Subtotal:      currency.Money(inv.Subtotal),
		TaxLabel:      "Tax (" + inv.TaxRate.String() + "%)",
		Tax:           currency.Money(inv.TaxAmount),
		Discount:      currency.Money(inv.DiscountAmount),
		Total:         currency.Money(inv.TotalAmount),
		Paid:          currency.Money(inv.PaidAmount),
		AmountDue:     currency.Money(inv.BalanceDue()),
		Notes:         inv.Notes,
	}
	if inv.IsOverdue(s.clock.Now()) {
		data.Status = "OVERDUE"
	}
	for _, it := range inv.Items {
		data.Items = append(data.Items, pdf.Line{
			Description: it.Description,
			Rate:        currency.Money(it.Rate),
			Amount:      currency.Money(it.Amount),
		})
	}

	tenant, err := s.principals.FindByID(ctx, inv.TenantID)
	if err != nil {
		s.log.Warn("load invoice issuer failed", zap.String("invoice_id", inv.ID.String()), zap.Error(err))
	}
	if tenant != nil {
		data.FromName = tenant.Name
		data.FromEmail = tenant.Email
	}
	return data
}

// owned loads an invoice visible to sc. Invoices of other tenants or other
// workspaces are reported as not found.
func (s *Service) owned(ctx context.Context, repo invoicedomain.Repository, sc scope.Scope, id snowflake.ID) (*invoicedomain.Invoice, error) {
	if !sc.Valid() {
		return nil, invoicedomain.ErrPrincipalRequired
	}
	sc = sc.Normalized()

	inv, err := repo.FindInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil || inv.TenantID != sc.PrincipalID {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	if sc.WorkspaceID != nil && inv.WorkspaceID != nil && *sc.WorkspaceID != *inv.WorkspaceID {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return inv, nil
}

func (s *Service) newItem(invoiceID snowflake.ID, in invoicedomain.ItemInput, now time.Time) *invoicedomain.InvoiceItem {
	item := &invoicedomain.InvoiceItem{
		ID:          s.genID.Generate(),
		InvoiceID:   invoiceID,
		Description: strings.TrimSpace(in.Description),
		Rate:        in.Rate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	item.Normalize()
	return item
}

func validateItem(description string, rate decimal.Decimal) error {
	if strings.TrimSpace(description) == "" {
		return invoicedomain.ErrInvalidDescription
	}
	if rate.IsNegative() {
		return invoicedomain.ErrInvalidAmount
	}
	return nil
}
