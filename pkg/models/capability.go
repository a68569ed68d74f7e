package models

import "time"

// CapabilityName names an elevated right that sits outside the
// owner/writer/reader ladder.
type CapabilityName string

// CapabilityDelete allows deleting projects, records and messages. Owning
// or writing a project does not imply it.
const CapabilityDelete CapabilityName = "delete"

// IsValid reports whether c is a known capability.
func (c CapabilityName) IsValid() bool {
	return c == CapabilityDelete
}

// Capability assigns a CapabilityName to a user. Capabilities are granted by
// administrators only.
type Capability struct {
	UserID    string         `gorm:"primaryKey;size:36" json:"user_id"`
	Name      CapabilityName `gorm:"primaryKey;size:32" json:"name"`
	GrantedBy string         `gorm:"size:36" json:"granted_by"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName returns the table name for Capability.
func (Capability) TableName() string {
	return "capabilities"
}
