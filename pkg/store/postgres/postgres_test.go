package postgres_test

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/studiodesk/pkg/pg"
	"github.com/dmitrymomot/studiodesk/pkg/store"
	"github.com/dmitrymomot/studiodesk/pkg/store/postgres"
	"github.com/dmitrymomot/studiodesk/pkg/store/storetest"
)

// The suite runs against a real database when PG_CONN_URL is set.
func TestStore(t *testing.T) {
	connURL := os.Getenv("PG_CONN_URL")
	if connURL == "" {
		t.Skip("PG_CONN_URL not set")
	}

	ctx := t.Context()
	cfg := pg.Config{
		ConnectionString: connURL,
		MaxOpenConns:     4,
		RetryAttempts:    1,
		MigrationsTable:  "schema_migrations",
	}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pg.Migrate(ctx, pool, postgres.Migrations(), cfg, slog.New(slog.DiscardHandler)))

	s := postgres.New(pool)
	require.NoError(t, s.Ping(ctx))

	storetest.Run(t, func(t *testing.T) store.Store { return s })
}
