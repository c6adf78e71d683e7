package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// UserType is the principal role stored on the users table. Any value other
// than the two below denotes a staff member created by a tenant.
type UserType string

const (
	UserTypeSuperAdmin UserType = "superadmin"
	UserTypeCompany    UserType = "company"
)

// User is an operator, tenant or staff principal.
type User struct {
	ID    snowflake.ID `gorm:"primaryKey" json:"id"`
	Name  string       `gorm:"type:text;not null" json:"name"`
	Email string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Type  UserType     `gorm:"type:text;not null;index" json:"type"`
	Slug  string       `gorm:"type:text" json:"slug"`

	CreatedBy          *snowflake.ID `gorm:"column:created_by;index" json:"created_by,omitempty"`
	CurrentWorkspaceID *snowflake.ID `gorm:"column:current_workspace_id" json:"current_workspace_id,omitempty"`

	PlanID         *snowflake.ID `gorm:"column:plan_id" json:"plan_id,omitempty"`
	PlanExpireDate *time.Time    `gorm:"column:plan_expire_date" json:"plan_expire_date,omitempty"`
	PlanIsActive   bool          `gorm:"column:plan_is_active;not null;default:false" json:"plan_is_active"`

	ReferralCode     string `gorm:"column:referral_code;type:text;index" json:"referral_code"`
	UsedReferralCode string `gorm:"column:used_referral_code;type:text" json:"used_referral_code"`

	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) IsOperator() bool {
	return u != nil && u.Type == UserTypeSuperAdmin
}

func (u *User) IsTenant() bool {
	return u != nil && u.Type == UserTypeCompany
}

// IsStaff reports whether the principal acts on behalf of the tenant that created it.
func (u *User) IsStaff() bool {
	return u != nil && u.Type != UserTypeSuperAdmin && u.Type != UserTypeCompany
}

// Workspace is a sub-scope owned by a tenant.
type Workspace struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Slug      string       `gorm:"type:text;not null" json:"slug"`
	CreatedBy snowflake.ID `gorm:"column:created_by;not null;index" json:"created_by"`
	IsActive  bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Workspace) TableName() string { return "workspaces" }

// PlanAssignment is written to a tenant when a plan order succeeds.
type PlanAssignment struct {
	PlanID     snowflake.ID
	ExpireDate *time.Time
	UpdatedAt  time.Time
}
