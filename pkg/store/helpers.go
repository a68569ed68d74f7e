package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ============================================================================
// Generic GORM Helpers
// ============================================================================

// Scope narrows a query. Visibility predicates are passed to list and get
// methods as scopes, so the store never decides who may see what.
type Scope = func(*gorm.DB) *gorm.DB

// getByField retrieves a single T where field=value and all scopes hold.
// gorm.ErrRecordNotFound becomes notFoundErr.
func getByField[T any](db *gorm.DB, ctx context.Context, field string, value any, notFoundErr error, scopes ...Scope) (*T, error) {
	var result T
	if err := db.WithContext(ctx).Scopes(scopes...).Where(field+" = ?", value).First(&result).Error; err != nil {
		return nil, convertNotFoundError(err, notFoundErr)
	}
	return &result, nil
}

// listScoped retrieves every T matching scopes, ordered by order.
// It returns an empty slice, not nil, when nothing matches.
func listScoped[T any](db *gorm.DB, ctx context.Context, order string, scopes ...Scope) ([]*T, error) {
	results := make([]*T, 0)
	q := db.WithContext(ctx).Scopes(scopes...)
	if order != "" {
		q = q.Order(order)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// countScoped counts the T rows matching scopes.
func countScoped[T any](db *gorm.DB, ctx context.Context, scopes ...Scope) (int64, error) {
	var n int64
	var zero T
	err := db.WithContext(ctx).Model(&zero).Scopes(scopes...).Count(&n).Error
	return n, err
}

// createWithID generates a UUID for the entity if it has no ID, then creates
// it. Unique violations become dupErr.
func createWithID[T any](db *gorm.DB, ctx context.Context, entity *T, idSetter func(*T, string), currentID string, dupErr error) (string, error) {
	id := currentID
	if id == "" {
		id = uuid.New().String()
		idSetter(entity, id)
	}
	if err := db.WithContext(ctx).Create(entity).Error; err != nil {
		if isUniqueConstraintError(err) {
			return "", dupErr
		}
		return "", err
	}
	return id, nil
}

// deleteScoped deletes the T rows matching scopes and reports how many went.
func deleteScoped[T any](db *gorm.DB, ctx context.Context, scopes ...Scope) (int64, error) {
	var zero T
	result := db.WithContext(ctx).Scopes(scopes...).Delete(&zero)
	return result.RowsAffected, result.Error
}

// whereEq returns a scope for column = value, or a no-op when value is empty.
func whereEq(column, value string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if value == "" {
			return db
		}
		return db.Where(column+" = ?", value)
	}
}
