package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/marmos91/rowguard/pkg/models"
)

var (
	_ Store           = (*GORMStore)(nil)
	_ CredentialStore = (*GORMStore)(nil)
	_ AuditStore      = (*GORMStore)(nil)
)

func (s *GORMStore) sqlDB() (*sql.DB, error) {
	db, err := s.db.DB()
	if err != nil {
		return nil, fmt.Errorf("store: no underlying sql.DB: %w", err)
	}
	return db, nil
}

// Healthcheck pings the database and checks that the users table answers,
// so a reachable server with a missing schema still reports unhealthy.
func (s *GORMStore) Healthcheck(ctx context.Context) error {
	db, err := s.sqlDB()
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("store: ping: %w", err)
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Limit(1).Count(&n).Error; err != nil {
		return fmt.Errorf("store: schema check: %w", err)
	}
	return nil
}

// OpenConnections reports the open database connections, or zero when the
// pool is unavailable.
func (s *GORMStore) OpenConnections() int {
	db, err := s.sqlDB()
	if err != nil {
		return 0
	}
	return db.Stats().OpenConnections
}

// Close releases the database handle. The store must not be used after.
func (s *GORMStore) Close() error {
	db, err := s.sqlDB()
	if err != nil {
		return err
	}
	return db.Close()
}
