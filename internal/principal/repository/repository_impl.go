package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	principaldomain "github.com/smallbiznis/workhub/internal/principal/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) principaldomain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) principaldomain.Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*principaldomain.User, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*principaldomain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.first(ctx, r.db.WithContext(ctx).Where("email = ?", email))
}

func (r *repository) FindByReferralCode(ctx context.Context, code string) (*principaldomain.User, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	return r.first(ctx, r.db.WithContext(ctx).
		Where("referral_code = ? AND type = ?", code, principaldomain.UserTypeCompany))
}

func (r *repository) FindOperator(ctx context.Context) (*principaldomain.User, error) {
	return r.first(ctx, r.db.WithContext(ctx).
		Where("type = ?", principaldomain.UserTypeSuperAdmin).
		Order("id ASC"))
}

func (r *repository) FindSingleTenant(ctx context.Context) (*principaldomain.User, error) {
	return r.first(ctx, r.db.WithContext(ctx).
		Where("type = ?", principaldomain.UserTypeCompany).
		Order("id ASC"))
}

func (r *repository) first(_ context.Context, stmt *gorm.DB) (*principaldomain.User, error) {
	var user principaldomain.User
	err := stmt.First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) CreateUser(ctx context.Context, user *principaldomain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) CreateWorkspace(ctx context.Context, ws *principaldomain.Workspace) error {
	return r.db.WithContext(ctx).Create(ws).Error
}

func (r *repository) FindWorkspace(ctx context.Context, id snowflake.ID) (*principaldomain.Workspace, error) {
	var ws principaldomain.Workspace
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ws).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *repository) SetCurrentWorkspace(ctx context.Context, userID, workspaceID snowflake.ID) error {
	return r.db.WithContext(ctx).
		Model(&principaldomain.User{}).
		Where("id = ?", userID).
		Update("current_workspace_id", workspaceID).Error
}

func (r *repository) AssignPlan(ctx context.Context, userID snowflake.ID, assignment principaldomain.PlanAssignment) error {
	return r.db.WithContext(ctx).
		Model(&principaldomain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"plan_id":          assignment.PlanID,
			"plan_expire_date": assignment.ExpireDate,
			"plan_is_active":   true,
			"updated_at":       assignment.UpdatedAt,
		}).Error
}
