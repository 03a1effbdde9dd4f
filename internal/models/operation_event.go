package models

import (
	"time"

	"gorm.io/datatypes"
)

// OperationEvent records the outcome of a lifecycle operation (backup, reset,
// retention sweep) for monitoring and analytics.
type OperationEvent struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID   string         `gorm:"uniqueIndex;size:36" json:"event_id"`
	Type      string         `gorm:"index;size:100" json:"type"`
	Timestamp time.Time      `gorm:"index" json:"timestamp"`
	Source    string         `gorm:"size:100" json:"source"`
	Success   bool           `json:"success"`
	Details   datatypes.JSON `gorm:"type:jsonb" json:"details"`
}

func (OperationEvent) TableName() string {
	return "operation_events"
}
