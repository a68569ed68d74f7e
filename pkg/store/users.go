package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marmos91/rowguard/pkg/models"
)

// ============================================
// USER OPERATIONS
// ============================================

func (s *GORMStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	return getByField[models.User](s.db, ctx, "username", username, models.ErrUserNotFound)
}

func (s *GORMStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return getByField[models.User](s.db, ctx, "id", id, models.ErrUserNotFound)
}

func (s *GORMStore) ListUsers(ctx context.Context, scopes ...Scope) ([]*models.User, error) {
	return listScoped[models.User](s.db, ctx, "username", scopes...)
}

func (s *GORMStore) CreateUser(ctx context.Context, user *models.User) (string, error) {
	if err := user.Validate(); err != nil {
		return "", err
	}
	if user.Role == "" {
		user.Role = string(models.RoleUser)
	}
	user.CreatedAt = time.Now()
	return createWithID(s.db, ctx, user, func(u *models.User, id string) { u.ID = id }, user.ID, models.ErrDuplicateUser)
}

// UpdateUser updates the profile fields of an existing user. The username
// and password are not touched; identities are immutable once created.
func (s *GORMStore) UpdateUser(ctx context.Context, user *models.User) error {
	var existing models.User
	if err := s.db.WithContext(ctx).Where("id = ?", user.ID).First(&existing).Error; err != nil {
		return convertNotFoundError(err, models.ErrUserNotFound)
	}

	return s.db.WithContext(ctx).
		Model(&existing).
		Select("Enabled", "Role", "DisplayName", "Email").
		Updates(user).Error
}

// SetUserEnabled soft-disables or re-enables a user.
func (s *GORMStore) SetUserEnabled(ctx context.Context, id string, enabled bool) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("enabled", enabled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (s *GORMStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (s *GORMStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
}

// ValidateCredentials returns the user matching username and password.
// Unknown names, disabled users and wrong passwords all yield
// models.ErrAuthenticationFailed after the same bcrypt work.
func (s *GORMStore) ValidateCredentials(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.GetUser(ctx, username)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		return nil, err
	}

	hash := ""
	if user != nil {
		hash = user.PasswordHash
	}
	ok := models.VerifyPasswordWithCost(password, hash, s.BcryptCost())
	if !ok || user == nil || !user.Enabled {
		return nil, models.ErrAuthenticationFailed
	}
	return user, nil
}

// ============================================
// ADMIN INITIALIZATION
// ============================================

// EnsureAdminUser creates the bootstrap admin if no user has that name.
// It returns the initial password when it created the account, "" otherwise.
func (s *GORMStore) EnsureAdminUser(ctx context.Context, username string) (string, error) {
	if username == "" {
		username = models.DefaultAdminUsername
	}

	_, err := s.GetUser(ctx, username)
	if err == nil {
		return "", nil
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return "", err
	}

	password, err := models.GetOrGenerateAdminPassword()
	if err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}

	hash, err := models.HashPasswordWithCost(password, s.BcryptCost())
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.CreateUser(ctx, models.NewAdminUser(username, hash)); err != nil {
		return "", fmt.Errorf("failed to create admin user: %w", err)
	}

	return password, nil
}
