package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	EventStatusPending    = "pending"
	EventStatusProcessing = "processing"
	EventStatusProcessed  = "processed"
	EventStatusFailed     = "failed"
)

const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

const (
	AggregateB2CCustomer = "b2c_customer"
	AggregateB2BCustomer = "b2b_customer"
	AggregateHousehold   = "household"
)

// OutboxEvent is one row of the append-only outbox table written by the
// upstream triggers. The worker never reads Payload: the aggregate's current
// state is re-read from the source tables on every projection.
type OutboxEvent struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SourceTable   string         `gorm:"column:table_name;not null;index" json:"table_name"`
	AggregateType string         `gorm:"column:aggregate_type;not null;index" json:"aggregate_type"`
	AggregateID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"aggregate_id"`
	Op            string         `gorm:"column:op;not null" json:"op"`
	Payload       datatypes.JSON `gorm:"column:payload" json:"payload,omitempty"`
	Status        string         `gorm:"not null;default:'pending';index" json:"status"`
	Attempts      int            `gorm:"not null;default:0" json:"attempts"`
	LastError     *string        `gorm:"column:last_error" json:"last_error,omitempty"`
	LastErrorAt   *time.Time     `gorm:"column:last_error_at" json:"last_error_at,omitempty"`
	ClaimedAt     *time.Time     `gorm:"column:claimed_at" json:"claimed_at,omitempty"`
	ProcessedAt   *time.Time     `gorm:"column:processed_at" json:"processed_at,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;default:now();index" json:"created_at"`
}

func (OutboxEvent) TableName() string { return "outbox_events" }
