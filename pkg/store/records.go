package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/marmos91/rowguard/pkg/models"
)

// ============================================
// RECORD OPERATIONS
// ============================================

func recordFilter(f models.RecordFilter) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Scopes(
			whereEq("project_id", f.ProjectID),
			whereEq("lithology", f.Lithology),
			whereEq("time_period", f.TimePeriod),
		)
	}
}

func (s *GORMStore) GetRecord(ctx context.Context, id string, scopes ...Scope) (*models.Record, error) {
	return getByField[models.Record](s.db, ctx, "id", id, models.ErrRecordNotFound, scopes...)
}

func (s *GORMStore) ListRecords(ctx context.Context, filter models.RecordFilter, scopes ...Scope) ([]*models.Record, error) {
	return listScoped[models.Record](s.db, ctx, "created_at, id", append(scopes, recordFilter(filter))...)
}

func (s *GORMStore) CountRecords(ctx context.Context, filter models.RecordFilter, scopes ...Scope) (int64, error) {
	return countScoped[models.Record](s.db, ctx, append(scopes, recordFilter(filter))...)
}

// RecordIDs returns the ids of the records matching filter and scopes.
func (s *GORMStore) RecordIDs(ctx context.Context, filter models.RecordFilter, scopes ...Scope) ([]string, error) {
	ids := make([]string, 0)
	err := s.db.WithContext(ctx).Model(&models.Record{}).
		Scopes(append(scopes, recordFilter(filter))...).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (s *GORMStore) CreateRecord(ctx context.Context, record *models.Record) (string, error) {
	id, err := createWithID(s.db, ctx, record, func(r *models.Record, id string) { r.ID = id }, record.ID, models.ErrConflict)
	if isForeignKeyError(err) {
		return "", models.ErrProjectNotFound
	}
	return id, err
}

// UpdateRecords applies cols to the records with the given ids.
func (s *GORMStore) UpdateRecords(ctx context.Context, ids []string, cols map[string]any) (int64, error) {
	if len(ids) == 0 || len(cols) == 0 {
		return 0, nil
	}
	cols["updated_at"] = time.Now()
	result := s.db.WithContext(ctx).Model(&models.Record{}).Where("id IN ?", ids).Updates(cols)
	if isForeignKeyError(result.Error) {
		return 0, models.ErrProjectNotFound
	}
	return result.RowsAffected, result.Error
}

// DeleteRecords deletes the records with the given ids.
func (s *GORMStore) DeleteRecords(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return deleteScoped[models.Record](s.db, ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN ?", ids)
	})
}
