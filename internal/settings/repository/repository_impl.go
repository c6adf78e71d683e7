package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	settingsdomain "github.com/smallbiznis/workhub/internal/settings/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var scopeColumns = []clause.Column{{Name: "owner_id"}, {Name: "workspace_scope"}, {Name: "key"}}

type repository struct {
	db    *gorm.DB
	table string
}

// NewRepository stores rows in the settings table.
func NewRepository(db *gorm.DB) settingsdomain.Repository {
	return &repository{db: db, table: settingsdomain.TableSettings}
}

type PaymentRepositoryResult struct {
	fx.Out

	Repo settingsdomain.Repository `name:"payment_settings"`
}

// NewPaymentRepository stores rows in the payment_settings table.
func NewPaymentRepository(db *gorm.DB) PaymentRepositoryResult {
	return PaymentRepositoryResult{Repo: NewTableRepository(db, settingsdomain.TablePaymentSettings)}
}

func NewTableRepository(db *gorm.DB, table string) settingsdomain.Repository {
	return &repository{db: db, table: table}
}

func (r *repository) WithTx(tx *gorm.DB) settingsdomain.Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx, table: r.table}
}

func (r *repository) Table() string {
	return r.table
}

func (r *repository) scoped(ctx context.Context, ownerID snowflake.ID, workspaceID *snowflake.ID) *gorm.DB {
	stmt := r.db.WithContext(ctx).Table(r.table).Where("owner_id = ?", ownerID)
	if workspaceID == nil {
		return stmt.Where("workspace_id IS NULL")
	}
	return stmt.Where("workspace_id = ?", *workspaceID)
}

func (r *repository) List(ctx context.Context, ownerID snowflake.ID, workspaceID *snowflake.ID) ([]settingsdomain.Setting, error) {
	var rows []settingsdomain.Setting
	if err := r.scoped(ctx, ownerID, workspaceID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListKeys(ctx context.Context, ownerID snowflake.ID, workspaceID *snowflake.ID, keys []string) ([]settingsdomain.Setting, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	var rows []settingsdomain.Setting
	err := r.scoped(ctx, ownerID, workspaceID).
		Where(clause.IN{Column: clause.Column{Name: "key"}, Values: toAny(keys)}).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Find(ctx context.Context, ownerID snowflake.ID, workspaceID *snowflake.ID, key string) (*settingsdomain.Setting, error) {
	var row settingsdomain.Setting
	err := r.scoped(ctx, ownerID, workspaceID).
		Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) Create(ctx context.Context, row *settingsdomain.Setting) error {
	row.WorkspaceScope = settingsdomain.ScopeOf(row.WorkspaceID)
	return r.db.WithContext(ctx).Table(r.table).Create(row).Error
}

// Upsert resolves concurrent writers on the unique scope index in a single
// statement; the later write keeps its value.
func (r *repository) Upsert(ctx context.Context, row *settingsdomain.Setting) (*settingsdomain.Setting, error) {
	row.WorkspaceScope = settingsdomain.ScopeOf(row.WorkspaceID)
	row.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).Table(r.table).
		Clauses(clause.OnConflict{
			Columns:   scopeColumns,
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.Find(ctx, row.OwnerID, row.WorkspaceID, row.Key)
}

// BulkInsert skips rows that collide with the unique (owner, workspace, key) index.
func (r *repository) BulkInsert(ctx context.Context, rows []settingsdomain.Setting) error {
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].WorkspaceScope = settingsdomain.ScopeOf(rows[i].WorkspaceID)
	}
	return r.db.WithContext(ctx).Table(r.table).
		Clauses(clause.OnConflict{Columns: scopeColumns, DoNothing: true}).
		CreateInBatches(rows, 100).Error
}

func toAny(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
