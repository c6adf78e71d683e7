package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	TableSettings        = "settings"
	TablePaymentSettings = "payment_settings"
)

// Setting is one scoped key/value row. A nil WorkspaceID is tenant-wide, or
// platform-wide when the owner is the operator. WorkspaceScope repeats
// WorkspaceID with NULL stored as 0 so tenant-wide rows collide in the unique
// index. payment_settings shares the same shape.
type Setting struct {
	ID             snowflake.ID  `gorm:"primaryKey" json:"id"`
	OwnerID        snowflake.ID  `gorm:"column:owner_id;not null;index:,composite:owner_ws;uniqueIndex:,composite:scope_key" json:"owner_id"`
	WorkspaceID    *snowflake.ID `gorm:"column:workspace_id;index:,composite:owner_ws" json:"workspace_id,omitempty"`
	WorkspaceScope snowflake.ID  `gorm:"column:workspace_scope;not null;default:0;uniqueIndex:,composite:scope_key" json:"-"`
	Key            string        `gorm:"column:key;type:varchar(191);not null;uniqueIndex:,composite:scope_key" json:"key"`
	Value          string        `gorm:"column:value;type:text" json:"value"`
	CreatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ScopeOf maps a nullable workspace id onto the workspace_scope column.
func ScopeOf(workspaceID *snowflake.ID) snowflake.ID {
	if workspaceID == nil {
		return 0
	}
	return *workspaceID
}

func (Setting) TableName() string { return TableSettings }

// PaymentSetting is only used to migrate the payment_settings table.
type PaymentSetting struct {
	Setting
}

func (PaymentSetting) TableName() string { return TablePaymentSettings }

type UpdateRequest struct {
	Key             string `json:"key" binding:"required,max=191"`
	Value           string `json:"value"`
	IgnoreWorkspace bool   `json:"ignore_workspace"`
}

type UpdateManyRequest struct {
	Values          map[string]string `json:"values" binding:"required,min=1"`
	IgnoreWorkspace bool              `json:"ignore_workspace"`
}
