package domain

import "errors"

var (
	ErrPrincipalUnresolved = errors.New("principal_unresolved")
	ErrInvalidKey          = errors.New("invalid_setting_key")
)
