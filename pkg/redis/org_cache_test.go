package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/studiodesk/pkg/redis"
	"github.com/dmitrymomot/studiodesk/pkg/tenant"
)

func setup(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestOrganizationCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr, client := setup(t)
	cache := redis.NewOrganizationCache(client, "test:org:", nil)

	trialEnds := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	org := &tenant.Organization{ID: 7, Name: "Acme", Slug: "acme", Status: tenant.StatusTrial, TrialEndsAt: &trialEnds}

	_, ok := cache.Get(ctx, "id:7")
	assert.False(t, ok)

	cache.Set(ctx, "id:7", org, time.Minute)
	assert.True(t, mr.Exists("test:org:id:7"))

	got, ok := cache.Get(ctx, "id:7")
	require.True(t, ok)
	assert.Equal(t, org.ID, got.ID)
	assert.Equal(t, tenant.StatusTrial, got.Status)
	require.NotNil(t, got.TrialEndsAt)
	assert.True(t, trialEnds.Equal(*got.TrialEndsAt))

	mr.FastForward(2 * time.Minute)
	_, ok = cache.Get(ctx, "id:7")
	assert.False(t, ok)

	cache.Set(ctx, "slug:acme", org, time.Minute)
	cache.Delete(ctx, "slug:acme")
	_, ok = cache.Get(ctx, "slug:acme")
	assert.False(t, ok)

	assert.NoError(t, cache.Close())
}

func TestOrganizationCacheCorruptEntry(t *testing.T) {
	t.Parallel()

	mr, client := setup(t)
	require.NoError(t, mr.Set("test:org:id:1", "{not json"))

	cache := redis.NewOrganizationCache(client, "test:org:", nil)
	_, ok := cache.Get(context.Background(), "id:1")
	assert.False(t, ok)
	assert.False(t, mr.Exists("test:org:id:1"))
}

func TestOrganizationCacheOutageIsMiss(t *testing.T) {
	t.Parallel()

	mr, client := setup(t)
	cache := redis.NewOrganizationCache(client, "test:org:", nil)
	mr.Close()

	ctx := context.Background()
	cache.Set(ctx, "id:1", &tenant.Organization{ID: 1}, time.Minute)
	_, ok := cache.Get(ctx, "id:1")
	assert.False(t, ok)
}

func TestConnect(t *testing.T) {
	t.Parallel()

	mr, _ := setup(t)
	ctx := context.Background()

	client, err := redis.Connect(ctx, redis.Config{ConnectionURL: "redis://" + mr.Addr() + "/0", RetryAttempts: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	assert.NoError(t, redis.Healthcheck(client)(ctx))

	_, err = redis.Connect(ctx, redis.Config{})
	assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)

	_, err = redis.Connect(ctx, redis.Config{ConnectionURL: "://bad"})
	assert.ErrorIs(t, err, redis.ErrInvalidConnectionURL)
}
