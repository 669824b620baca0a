// Package event records provisioning lifecycle events for later reconciliation.
package event

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// CompanyOrphanedTopic marks a company left without provisioned users.
	CompanyOrphanedTopic = "company.orphaned"
	// CompanyProvisionedTopic marks a fully provisioned company.
	CompanyProvisionedTopic = "company.provisioned"
)

// ProvisioningEvent is an append-only record of a workflow outcome.
type ProvisioningEvent struct {
	ID        snowflake.ID      `gorm:"primaryKey"`
	EventType string            `gorm:"column:event_type;type:text;not null;index"`
	Payload   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt time.Time         `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (ProvisioningEvent) TableName() string { return "provisioning_events" }

// Publisher appends provisioning events.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload map[string]any) error
}

type publisher struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewPublisher(db *gorm.DB, genID *snowflake.Node) Publisher {
	return &publisher{db: db, genID: genID}
}

func (p *publisher) Publish(ctx context.Context, eventType string, payload map[string]any) error {
	if payload == nil {
		payload = map[string]any{}
	}
	record := ProvisioningEvent{
		ID:        p.genID.Generate(),
		EventType: eventType,
		Payload:   datatypes.JSONMap(payload),
		CreatedAt: time.Now().UTC(),
	}
	return p.db.WithContext(ctx).Create(&record).Error
}
