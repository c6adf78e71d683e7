package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository stores scoped rows in one table. Reads match the
// (owner, workspace) pair exactly; a nil workspace only matches NULL.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Table() string

	List(ctx context.Context, ownerID snowflake.ID, workspaceID *snowflake.ID) ([]Setting, error)
	ListKeys(ctx context.Context, ownerID snowflake.ID, workspaceID *snowflake.ID, keys []string) ([]Setting, error)
	Find(ctx context.Context, ownerID snowflake.ID, workspaceID *snowflake.ID, key string) (*Setting, error)
	Create(ctx context.Context, row *Setting) error
	// Upsert writes row.Value for its (owner, workspace, key), last write
	// wins, and returns the stored row.
	Upsert(ctx context.Context, row *Setting) (*Setting, error)
	BulkInsert(ctx context.Context, rows []Setting) error
}
