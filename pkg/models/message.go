package models

import "time"

// Message is an authored entity. Only its sender and recipient can see it,
// and FromUserID always equals the identity that inserted it.
type Message struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	FromUserID string    `gorm:"not null;size:36;index" json:"from_user_id"`
	ToUserID   string    `gorm:"not null;size:36;index" json:"to_user_id"`
	Body       string    `gorm:"type:text" json:"body"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	From *User `gorm:"foreignKey:FromUserID" json:"-"`
	To   *User `gorm:"foreignKey:ToUserID" json:"-"`
}

// TableName returns the table name for Message.
func (Message) TableName() string {
	return "messages"
}

// Involves reports whether userID is the sender or the recipient.
func (m *Message) Involves(userID string) bool {
	return userID != "" && (m.FromUserID == userID || m.ToUserID == userID)
}

// MessageFilter selects messages for bulk reads and deletes.
type MessageFilter struct {
	FromUserID string
	ToUserID   string
}
