package store

import (
	"context"
	"time"

	"github.com/marmos91/rowguard/pkg/models"
)

// ============================================
// AUDIT OPERATIONS
// ============================================

// AppendAudit stores an audit entry.
func (s *GORMStore) AppendAudit(ctx context.Context, e *models.AuditEntry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return s.db.WithContext(ctx).Create(e).Error
}

// ListAudit returns the newest entries first. userID filters by actor when
// set; limit <= 0 means 100.
func (s *GORMStore) ListAudit(ctx context.Context, userID string, limit int) ([]*models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	entries := make([]*models.AuditEntry, 0)
	err := s.db.WithContext(ctx).
		Scopes(whereEq("user_id", userID)).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
