package authorization

import (
	"context"
	"errors"

	principaldomain "github.com/smallbiznis/workhub/internal/principal/domain"
)

type Service interface {
	// Authorize checks whether actor may perform action on object within its tenant.
	Authorize(ctx context.Context, actor *principaldomain.User, object string, action string) error
}

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
)
