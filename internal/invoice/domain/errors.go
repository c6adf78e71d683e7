package domain

import "errors"

var (
	ErrInvoiceNotFound    = errors.New("invoice_not_found")
	ErrItemNotFound       = errors.New("invoice_item_not_found")
	ErrInvoiceLocked      = errors.New("invoice_locked")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidTaxRate     = errors.New("invalid_tax_rate")
	ErrInvalidDueDate     = errors.New("invalid_due_date")
	ErrInvalidCustomer    = errors.New("invalid_customer")
	ErrOverpayment        = errors.New("payment_exceeds_balance")
	ErrPrincipalRequired  = errors.New("principal_unresolved")
	ErrInvalidDescription = errors.New("invalid_item_description")
)
