package tenant_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/studiodesk/pkg/auth"
	"github.com/dmitrymomot/studiodesk/pkg/tenant"
)

func TestContextBuilder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("builds full context", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()
		org := store.addOrg(activeOrg(1, "acme"))
		sub := activeSub(1)
		store.subs[1] = sub
		user := &auth.User{ID: 9, OrganizationID: 1}

		tc, gotOrg, err := tenant.NewContextBuilder(store, nil, 0, nil).Build(ctx, 1, user)
		require.NoError(t, err)
		assert.Equal(t, org, gotOrg)
		assert.Equal(t, int64(1), tc.OrganizationID)
		assert.Equal(t, "acme", tc.OrganizationSlug)
		assert.Equal(t, sub, tc.Subscription)
		assert.Equal(t, user, tc.User)
		assert.Equal(t, sub.Features, tc.Features)

		// Features are copied so handlers cannot alter the subscription.
		tc.Features[0] = "changed"
		assert.Equal(t, "invoices", sub.Features[0])
	})

	t.Run("organization not found", func(t *testing.T) {
		t.Parallel()

		_, _, err := tenant.NewContextBuilder(newMockStore(), nil, 0, nil).Build(ctx, 1, nil)
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("organization store failure", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()
		store.failOrgs = true

		_, _, err := tenant.NewContextBuilder(store, nil, 0, nil).Build(ctx, 1, nil)
		assert.ErrorIs(t, err, tenant.ErrTenantLookup)
		assert.ErrorIs(t, err, errStoreDown)
	})

	t.Run("non-current subscription is ignored", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()
		store.addOrg(activeOrg(1, "acme"))
		sub := activeSub(1)
		sub.Status = tenant.SubscriptionCancelled
		store.subs[1] = sub

		tc, _, err := tenant.NewContextBuilder(store, nil, 0, nil).Build(ctx, 1, nil)
		require.NoError(t, err)
		assert.Nil(t, tc.Subscription)
		assert.Equal(t, []string{}, tc.Features)
	})

	t.Run("subscription failure is logged and tolerated", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()
		store.addOrg(activeOrg(1, "acme"))
		store.failSubs = true

		var logs bytes.Buffer
		log := slog.New(slog.NewTextHandler(&logs, nil))

		tc, _, err := tenant.NewContextBuilder(store, nil, 0, log).Build(ctx, 1, nil)
		require.NoError(t, err)
		assert.Nil(t, tc.Subscription)
		assert.Contains(t, logs.String(), "level=WARN")
		assert.Contains(t, logs.String(), "organization_id=1")
	})

	t.Run("slug lookups", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()
		store.addOrg(activeOrg(1, "acme"))
		cache := tenant.NewMemoryCache(10)
		t.Cleanup(func() { _ = cache.Close() })

		builder := tenant.NewContextBuilder(store, cache, time.Minute, nil)

		org, err := builder.OrganizationBySlug(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, int64(1), org.ID)

		_, err = builder.OrganizationBySlug(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, 1, store.slugLookups)

		_, err = builder.OrganizationBySlug(ctx, "ghost")
		assert.ErrorIs(t, err, tenant.ErrOrganizationNotFound)
	})

	t.Run("requires store", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() { tenant.NewContextBuilder(nil, nil, 0, nil) })
	})
}

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, ok := tenant.FromContext(ctx)
	assert.False(t, ok)
	_, ok = tenant.OrganizationIDFromContext(ctx)
	assert.False(t, ok)
	assert.PanicsWithError(t, tenant.ErrNoTenantInContext.Error(), func() { tenant.MustFromContext(ctx) })

	tc := &tenant.Context{OrganizationID: 5, Features: []string{"invoices"}}
	ctx = tenant.WithContext(ctx, tc)

	id, ok := tenant.OrganizationIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(5), id)
	assert.Same(t, tc, tenant.MustFromContext(ctx))
	assert.True(t, tc.HasFeature("invoices"))
	assert.False(t, tc.HasFeature("payroll"))

	attr, ok := tenant.LoggerExtractor()(ctx)
	assert.True(t, ok)
	assert.Equal(t, "organization_id", attr.Key)
}
