package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/tendant/site-counts/pkg/sitecounts/repo/postgres"
	"github.com/tendant/site-counts/pkg/sitecounts/repo/repotest"
)

// newTestPool connects to TEST_DATABASE_URL with a fresh schema on the
// search path. The schema is dropped when the test ends.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	schema := fmt.Sprintf("sitecounts_test_%d", time.Now().UnixNano())

	admin, err := pgx.Connect(ctx, connString)
	require.NoError(t, err, "Failed to connect to test database")
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err, "Failed to create test schema")
	t.Cleanup(func() {
		admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		admin.Close(context.Background())
	})

	cfg, err := pgxpool.ParseConfig(connString)
	require.NoError(t, err)
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, "SET search_path TO "+schema)
		return err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err, "Failed to create pool")
	t.Cleanup(pool.Close)

	require.NoError(t, pool.Ping(ctx), "Failed to ping test database")
	return pool
}

func TestRepository(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repotest.Store {
		repo := postgres.NewWithPool(newTestPool(t))
		require.NoError(t, repo.Migrate(context.Background()))
		return repo
	})
}
