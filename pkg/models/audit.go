package models

import "time"

// Decision values recorded in the audit log.
const (
	DecisionAllow = "allow"
	DecisionDeny  = "deny"
)

// AuditEntry records one authorization decision worth keeping: denied
// writes, grant changes and principal provisioning.
type AuditEntry struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp   time.Time `gorm:"index;not null" json:"timestamp"`
	UserID      string    `gorm:"size:36;index" json:"user_id,omitempty"`
	PrincipalID string    `gorm:"size:36" json:"principal_id,omitempty"`
	Operation   string    `gorm:"size:32;not null" json:"operation"`
	Collection  string    `gorm:"size:32;not null" json:"collection"`
	Target      string    `gorm:"size:255" json:"target,omitempty"`
	Decision    string    `gorm:"size:8;not null" json:"decision"`
	Reason      string    `gorm:"size:512" json:"reason,omitempty"`
}

// TableName returns the table name for AuditEntry.
func (AuditEntry) TableName() string {
	return "audit_entries"
}
