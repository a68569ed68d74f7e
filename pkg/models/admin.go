package models

import (
	"crypto/rand"
	"encoding/base64"
	"os"
)

// DefaultAdminUsername is the account created on first start.
const DefaultAdminUsername = "admin"

// EnvAdminInitialPassword overrides the generated first-start admin password.
const EnvAdminInitialPassword = "ROWGUARD_ADMIN_INITIAL_PASSWORD"

// GetOrGenerateAdminPassword returns the password from
// EnvAdminInitialPassword, or a random 24-character one.
func GetOrGenerateAdminPassword() (string, error) {
	if pw := os.Getenv(EnvAdminInitialPassword); pw != "" {
		return pw, nil
	}
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NewAdminUser builds the bootstrap admin with the given password hash.
func NewAdminUser(username, passwordHash string) *User {
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		Enabled:      true,
		Role:         string(RoleAdmin),
		DisplayName:  "Administrator",
	}
}
