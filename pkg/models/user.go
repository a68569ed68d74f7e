package models

import (
	"strings"
	"time"
)

// UserRole is the administrative role of a user. It governs provisioning
// (creating users, granting capabilities) and never row visibility.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// IsValid reports whether r is a known role.
func (r UserRole) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is an application-level identity. Users are never deleted; they are
// disabled instead, which invalidates every session bound to them.
type User struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Username     string     `gorm:"uniqueIndex;not null;size:255" json:"username"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Enabled      bool       `gorm:"not null" json:"enabled"`
	Role         string     `gorm:"default:user;size:50" json:"role"`
	DisplayName  string     `gorm:"size:255" json:"display_name,omitempty"`
	Email        string     `gorm:"size:255" json:"email,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}

// GetDisplayName returns DisplayName, falling back to Username.
func (u *User) GetDisplayName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return UserRole(u.Role) == RoleAdmin
}

// Validate checks the fields required before persisting.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyName
	}
	if u.Role != "" && !UserRole(u.Role).IsValid() {
		return ErrInvariantViolation
	}
	return nil
}
