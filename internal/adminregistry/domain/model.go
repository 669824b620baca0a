// Package domain contains core types for the administrator registry.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Administrator marks a user account as an authorized console operator.
type Administrator struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	UserID    snowflake.ID `gorm:"column:user_id;not null;uniqueIndex"`
	Email     string       `gorm:"column:email;type:text;not null"`
	GrantedBy *snowflake.ID `gorm:"column:granted_by"`
	CreatedAt time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Administrator) TableName() string { return "administrators" }
