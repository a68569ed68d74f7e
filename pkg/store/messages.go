package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/marmos91/rowguard/pkg/models"
)

// ============================================
// MESSAGE OPERATIONS
// ============================================

func messageFilter(f models.MessageFilter) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Scopes(
			whereEq("from_user_id", f.FromUserID),
			whereEq("to_user_id", f.ToUserID),
		)
	}
}

func (s *GORMStore) GetMessage(ctx context.Context, id string, scopes ...Scope) (*models.Message, error) {
	return getByField[models.Message](s.db, ctx, "id", id, models.ErrMessageNotFound, scopes...)
}

func (s *GORMStore) ListMessages(ctx context.Context, filter models.MessageFilter, scopes ...Scope) ([]*models.Message, error) {
	return listScoped[models.Message](s.db, ctx, "created_at, id", append(scopes, messageFilter(filter))...)
}

// MessageIDs returns the ids of the messages matching filter and scopes.
func (s *GORMStore) MessageIDs(ctx context.Context, filter models.MessageFilter, scopes ...Scope) ([]string, error) {
	ids := make([]string, 0)
	err := s.db.WithContext(ctx).Model(&models.Message{}).
		Scopes(append(scopes, messageFilter(filter))...).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (s *GORMStore) CreateMessage(ctx context.Context, msg *models.Message) (string, error) {
	id, err := createWithID(s.db, ctx, msg, func(m *models.Message, id string) { m.ID = id }, msg.ID, models.ErrConflict)
	if isForeignKeyError(err) {
		return "", models.ErrUnknownRecipient
	}
	return id, err
}

// UpdateMessageBody replaces the body of a message.
func (s *GORMStore) UpdateMessageBody(ctx context.Context, id, body string) error {
	result := s.db.WithContext(ctx).Model(&models.Message{}).Where("id = ?", id).
		Updates(map[string]any{"body": body, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrMessageNotFound
	}
	return nil
}

// DeleteMessages deletes the messages with the given ids.
func (s *GORMStore) DeleteMessages(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return deleteScoped[models.Message](s.db, ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN ?", ids)
	})
}
