package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository reads and writes principals and workspaces. Lookups return
// nil, nil when no row matches.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindByID(ctx context.Context, id snowflake.ID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByReferralCode(ctx context.Context, code string) (*User, error)
	// FindOperator returns the single superadmin principal.
	FindOperator(ctx context.Context) (*User, error)
	// FindSingleTenant returns the first company principal.
	FindSingleTenant(ctx context.Context) (*User, error)

	CreateUser(ctx context.Context, user *User) error
	CreateWorkspace(ctx context.Context, ws *Workspace) error
	FindWorkspace(ctx context.Context, id snowflake.ID) (*Workspace, error)
	SetCurrentWorkspace(ctx context.Context, userID, workspaceID snowflake.ID) error
	AssignPlan(ctx context.Context, userID snowflake.ID, assignment PlanAssignment) error
}
