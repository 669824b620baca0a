// Package domain contains audit log types.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	ActionUserLogin              = "user.login"
	ActionUserLoginFailed        = "user.login_failed"
	ActionUserLogout             = "user.logout"
	ActionCompanyProvisioned     = "company.provisioned"
	ActionCompanyProvisionFailed = "company.provision_failed"
)

// AuditLog records one administrative action.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey"`
	ActorID    *string           `gorm:"column:actor_id;type:text;index"`
	Action     string            `gorm:"type:text;not null;index"`
	TargetType string            `gorm:"column:target_type;type:text;not null"`
	TargetID   *string           `gorm:"column:target_id;type:text;index"`
	IPAddress  *string           `gorm:"column:ip_address;type:text"`
	UserAgent  *string           `gorm:"column:user_agent;type:text"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt  time.Time         `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP;index"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "audit_logs" }

var ErrInvalidAction = errors.New("invalid_action")
