package store

import (
	"context"

	"github.com/marmos91/rowguard/pkg/models"
)

// ============================================
// CAPABILITY OPERATIONS
// ============================================

// HasCapability reports whether userID holds the named capability.
func (s *GORMStore) HasCapability(ctx context.Context, userID string, name models.CapabilityName) (bool, error) {
	if userID == "" {
		return false, nil
	}
	n, err := countScoped[models.Capability](s.db, ctx, whereEq("user_id", userID), whereEq("name", string(name)))
	return n > 0, err
}

// ListCapabilities returns the capabilities held by userID, or all of them
// when userID is empty.
func (s *GORMStore) ListCapabilities(ctx context.Context, userID string) ([]*models.Capability, error) {
	return listScoped[models.Capability](s.db, ctx, "user_id, name", whereEq("user_id", userID))
}

// GrantCapability gives userID the named capability. Granting twice is a no-op.
func (s *GORMStore) GrantCapability(ctx context.Context, c *models.Capability) error {
	if !c.Name.IsValid() {
		return models.ErrInvalidCapability
	}
	if _, err := s.GetUserByID(ctx, c.UserID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Create(c).Error
	if isUniqueConstraintError(err) {
		return nil
	}
	return err
}

// RevokeCapability removes the named capability from userID.
func (s *GORMStore) RevokeCapability(ctx context.Context, userID string, name models.CapabilityName) error {
	n, err := deleteScoped[models.Capability](s.db, ctx, whereEq("user_id", userID), whereEq("name", string(name)))
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
