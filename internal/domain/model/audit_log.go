package model

import (
	"time"
)

// AuditLog rows are written by database triggers on the payments and
// campaign_payments tables; the application only reads them.
type AuditLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Action    string    `gorm:"not null;size:100" json:"action"`
	Table     string    `gorm:"column:table_name;not null;size:100;index:idx_audit_log_table_action" json:"table_name"`
	RecordID  *string   `gorm:"size:36" json:"record_id,omitempty"`
	OldValues JSONB     `gorm:"type:jsonb" json:"old_values,omitempty"`
	NewValues JSONB     `gorm:"type:jsonb" json:"new_values,omitempty"`
	CreatedAt time.Time `gorm:"default:now();index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (AuditLog) TableName() string {
	return "audit_log"
}
