package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/studiodesk/pkg/logger"
	"github.com/dmitrymomot/studiodesk/pkg/tenant"
)

// OrganizationCache is a tenant.Cache shared by every API instance.
// Redis failures are logged and treated as cache misses, so an outage only
// sends lookups to the database.
type OrganizationCache struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

var _ tenant.Cache = (*OrganizationCache)(nil)

// NewOrganizationCache creates a cache storing JSON-encoded organizations
// under prefix. The client stays owned by the caller.
func NewOrganizationCache(client redis.UniversalClient, prefix string, log *slog.Logger) *OrganizationCache {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &OrganizationCache{client: client, prefix: prefix, logger: log}
}

func (c *OrganizationCache) Get(ctx context.Context, key string) (*tenant.Organization, bool) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "organization cache read failed", slog.String("key", key), logger.Error(err))
		}
		return nil, false
	}

	var org tenant.Organization
	if err := json.Unmarshal(raw, &org); err != nil {
		c.logger.WarnContext(ctx, "organization cache entry corrupted", slog.String("key", key), logger.Error(err))
		c.Delete(ctx, key)
		return nil, false
	}
	return &org, true
}

func (c *OrganizationCache) Set(ctx context.Context, key string, org *tenant.Organization, ttl time.Duration) {
	raw, err := json.Marshal(org)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "organization cache write failed", slog.String("key", key), logger.Error(err))
	}
}

func (c *OrganizationCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.logger.WarnContext(ctx, "organization cache delete failed", slog.String("key", key), logger.Error(err))
	}
}

// Close is a no-op. Close the client where it was created.
func (c *OrganizationCache) Close() error { return nil }
