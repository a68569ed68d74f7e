package models

import (
	"regexp"
	"time"
)

// principalNamePattern mirrors the usual SQL role-name rules: lowercase,
// starts with a letter or underscore, at most 63 characters.
var principalNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// Principal is a durable login identity created by a user for clients that
// connect directly instead of calling login. It is a live alias: every
// operation performed as the principal is evaluated as UserID, with the
// grants UserID holds at that moment.
type Principal struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"uniqueIndex;not null;size:63" json:"name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	UserID       string    `gorm:"not null;size:36;index" json:"user_id"`
	Enabled      bool      `gorm:"not null" json:"enabled"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName returns the table name for Principal.
func (Principal) TableName() string {
	return "principals"
}

// ValidatePrincipalName checks name against the principal naming rules.
func ValidatePrincipalName(name string) error {
	if !principalNamePattern.MatchString(name) {
		return ErrInvalidPrincipalName
	}
	return nil
}
