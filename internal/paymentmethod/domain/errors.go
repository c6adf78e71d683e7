package domain

import "errors"

var (
	ErrUnknownMethod       = errors.New("unknown_payment_method")
	ErrUnknownField        = errors.New("unknown_payment_field")
	ErrPrincipalUnresolved = errors.New("principal_unresolved")
	ErrSealedValue         = errors.New("sealed_value_unreadable")
)
