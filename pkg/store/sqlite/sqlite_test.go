package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/studiodesk/pkg/store"
	"github.com/dmitrymomot/studiodesk/pkg/store/sqlite"
	"github.com/dmitrymomot/studiodesk/pkg/store/storetest"
	"github.com/dmitrymomot/studiodesk/pkg/tenant"
)

func open(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore(t *testing.T) {
	t.Parallel()

	storetest.Run(t, func(t *testing.T) store.Store {
		return open(t, filepath.Join(t.TempDir(), "studiodesk.db"))
	})
}

func TestReopenKeepsData(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "studiodesk.db")

	first, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	org := &tenant.Organization{Slug: "acme"}
	require.NoError(t, first.CreateOrganization(ctx, org))
	require.NoError(t, first.Close())

	// Migrations are already applied on the second open.
	second := open(t, path)
	got, err := second.OrganizationBySlug(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, org.ID, got.ID)
	assert.NoError(t, second.Ping(ctx))
}
