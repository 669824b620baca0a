// Package domain contains persistence models for the company service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	// StatusActive is the status assigned to newly provisioned companies.
	StatusActive = "ACTIVE"
	// ClassificationInventoryContractor is the fixed classification for
	// companies provisioned through the console.
	ClassificationInventoryContractor = "INVENTORY_CONTRACTOR"
)

// Company represents a tenant record.
type Company struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name           string            `gorm:"type:text;not null" json:"name"`
	Slug           string            `gorm:"type:text;not null;uniqueIndex:ux_companies_slug" json:"slug"`
	TaxID          string            `gorm:"column:tax_id;type:text;not null;uniqueIndex:ux_companies_tax_id" json:"tax_id"`
	Status         string            `gorm:"type:text;not null" json:"status"`
	Classification string            `gorm:"type:text;not null" json:"classification"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Company) TableName() string { return "companies" }

// CompanyResponse is returned to clients.
type CompanyResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	TaxID          string    `json:"tax_id"`
	Status         string    `json:"status"`
	Classification string    `json:"classification"`
	CreatedAt      time.Time `json:"created_at"`
}
