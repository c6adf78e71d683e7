package domain

import (
	"context"

	"github.com/smallbiznis/workhub/internal/scope"
)

type Service interface {
	GetConfig(ctx context.Context, method string, s scope.Scope) (Config, error)
	GetEnabled(ctx context.Context, s scope.Scope) (map[string]Config, error)
	Validate(method string, cfg Config) ValidationResult
	UpdateConfig(ctx context.Context, method string, req UpdateConfigRequest, s scope.Scope) (Config, error)
}
