//go:build integration

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marmos91/rowguard/pkg/models"
)

func createPostgresStore(t *testing.T) *GORMStore {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("rowguard_test"),
		postgres.WithUsername("rowguard_test"),
		postgres.WithPassword("rowguard_test"),
		testcontainers.WithWaitStrategyAndDeadline(5*time.Minute,
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	s, err := New(&Config{
		Type: DatabaseTypePostgres,
		Postgres: PostgresConfig{
			Host:     host,
			Port:     port.Int(),
			Database: "rowguard_test",
			User:     "rowguard_test",
			Password: "rowguard_test",
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPostgresGrantLifecycle(t *testing.T) {
	ctx := context.Background()
	s := createPostgresStore(t)

	casey := &models.User{Username: "casey", PasswordHash: "x", Enabled: true}
	daven := &models.User{Username: "daven", PasswordHash: "x", Enabled: true}
	_, err := s.CreateUser(ctx, casey)
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, daven)
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, &models.User{Username: "casey", PasswordHash: "x"})
	assert.ErrorIs(t, err, models.ErrDuplicateUser)

	pid, err := s.CreateProject(ctx, &models.Project{Name: "p1"}, casey.ID)
	require.NoError(t, err)

	err = s.PutGrant(ctx, &models.Grant{ProjectID: pid, UserID: "00000000-0000-0000-0000-000000000000", Level: models.LevelReader})
	assert.ErrorIs(t, err, models.ErrUnknownGrantee)

	// Concurrent writers on the same project serialize on the row lock; the
	// final level is one of the two writes, never a mix.
	var wg sync.WaitGroup
	for _, lvl := range []models.Level{models.LevelWriter, models.LevelReader} {
		wg.Add(1)
		go func(lvl models.Level) {
			defer wg.Done()
			_ = s.Transaction(ctx, func(tx Store) error {
				if _, err := tx.LockProject(ctx, pid); err != nil {
					return err
				}
				return tx.PutGrant(ctx, &models.Grant{ProjectID: pid, UserID: daven.ID, Level: lvl, GrantedBy: casey.ID})
			})
		}(lvl)
	}
	wg.Wait()

	g, err := s.GetGrant(ctx, pid, daven.ID)
	require.NoError(t, err)
	assert.Contains(t, []models.Level{models.LevelWriter, models.LevelReader}, g.Level)
}
