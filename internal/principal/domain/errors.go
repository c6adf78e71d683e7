package domain

import "errors"

var (
	ErrNotFound         = errors.New("principal_not_found")
	ErrInvalidEmail     = errors.New("invalid_email")
	ErrInvalidName      = errors.New("invalid_name")
	ErrEmailTaken       = errors.New("email_taken")
	ErrWorkspaceMissing = errors.New("workspace_not_found")
)
