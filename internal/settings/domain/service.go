package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/workhub/internal/scope"
	"gorm.io/gorm"
)

type Service interface {
	// WithTx binds the service to an open transaction.
	WithTx(tx *gorm.DB) Service

	// Resolve returns exactly the rows stored for the scope. It never fails;
	// an unresolved scope or an uninstalled system yields an empty map.
	Resolve(ctx context.Context, s scope.Scope) map[string]string
	// Get falls back from the stored value to def, then to the default table.
	Get(ctx context.Context, s scope.Scope, key string, def *string) (string, bool)
	Update(ctx context.Context, s scope.Scope, req UpdateRequest) (*Setting, error)
	UpdateMany(ctx context.Context, s scope.Scope, req UpdateManyRequest) ([]Setting, error)

	CreateDefaultSettings(ctx context.Context, ownerID snowflake.ID, workspaceID *snowflake.ID) error
	CopySettingsFromOperator(ctx context.Context, tenantID snowflake.ID, workspaceID *snowflake.ID) error
}
