package store

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/marmos91/rowguard/pkg/models"
)

// ============================================
// GRANT OPERATIONS
// ============================================

// GetGrant returns the grant of userID on projectID.
func (s *GORMStore) GetGrant(ctx context.Context, projectID, userID string) (*models.Grant, error) {
	var g models.Grant
	err := s.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&g).Error
	if err != nil {
		return nil, convertNotFoundError(err, models.ErrGrantNotFound)
	}
	return &g, nil
}

// GrantLevel returns the level userID holds on projectID, LevelNone if none.
func (s *GORMStore) GrantLevel(ctx context.Context, projectID, userID string) (models.Level, error) {
	if userID == "" {
		return models.LevelNone, nil
	}
	var levels []models.Level
	err := s.db.WithContext(ctx).Model(&models.Grant{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Limit(1).
		Pluck("level", &levels).Error
	if err != nil || len(levels) == 0 {
		return models.LevelNone, err
	}
	return levels[0], nil
}

// ListGrants returns grants matching scopes, ordered by project then user.
func (s *GORMStore) ListGrants(ctx context.Context, scopes ...Scope) ([]*models.Grant, error) {
	return listScoped[models.Grant](s.db, ctx, "project_id, user_id", scopes...)
}

// PutGrant creates or replaces the grant identified by (ProjectID, UserID).
func (s *GORMStore) PutGrant(ctx context.Context, grant *models.Grant) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"level", "granted_by", "updated_at"}),
	}).Create(grant).Error
	if isForeignKeyError(err) {
		return models.ErrUnknownGrantee
	}
	return err
}

// DeleteGrant removes the grant of userID on projectID.
func (s *GORMStore) DeleteGrant(ctx context.Context, projectID, userID string) error {
	result := s.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.Grant{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrGrantNotFound
	}
	return nil
}

// CountOwners returns how many owner grants projectID has.
func (s *GORMStore) CountOwners(ctx context.Context, projectID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Grant{}).
		Where("project_id = ? AND level = ?", projectID, models.LevelOwner).
		Count(&n).Error
	return n, err
}
