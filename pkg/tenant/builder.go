package tenant

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/dmitrymomot/studiodesk/pkg/auth"
	"github.com/dmitrymomot/studiodesk/pkg/logger"
)

// ContextBuilder loads an organization and its current subscription and
// assembles the request's tenant Context.
type ContextBuilder struct {
	store    Store
	cache    Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewContextBuilder creates a builder. A nil cache disables caching and a nil
// logger discards degradation warnings.
func NewContextBuilder(store Store, cache Cache, cacheTTL time.Duration, log *slog.Logger) *ContextBuilder {
	if store == nil {
		panic("tenant: store is required")
	}
	if cache == nil {
		cache = NewNoopCache()
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &ContextBuilder{store: store, cache: cache, cacheTTL: cacheTTL, logger: log}
}

// Build loads the organization by id and returns the tenant context along with
// the organization row for status checks.
//
// A missing organization yields ErrTenantNotFound and a store failure yields
// ErrTenantLookup. A failure while loading the subscription does not fail the
// build: the context is returned without subscription and features.
func (b *ContextBuilder) Build(ctx context.Context, organizationID int64, user *auth.User) (*Context, *Organization, error) {
	org, err := b.OrganizationByID(ctx, organizationID)
	if err != nil {
		return nil, nil, err
	}

	tc := &Context{
		OrganizationID:   org.ID,
		OrganizationSlug: org.Slug,
		User:             user,
		Features:         []string{},
	}

	sub, err := b.store.CurrentSubscription(ctx, org.ID)
	switch {
	case err == nil && sub.IsCurrent():
		tc.Subscription = sub
		tc.Features = slices.Clone(sub.Features)
		if tc.Features == nil {
			tc.Features = []string{}
		}
	case err == nil, errors.Is(err, ErrSubscriptionNotFound):
	default:
		b.logger.WarnContext(ctx, "subscription lookup failed, continuing without subscription",
			logger.OrganizationID(org.ID),
			logger.Error(err),
		)
	}

	return tc, org, nil
}

// OrganizationByID returns the organization, consulting the cache first.
func (b *ContextBuilder) OrganizationByID(ctx context.Context, id int64) (*Organization, error) {
	key := cacheKeyID(id)
	if org, ok := b.cache.Get(ctx, key); ok {
		return org, nil
	}
	org, err := b.store.OrganizationByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrganizationNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, ErrTenantLookup.Wrap(err)
	}
	b.cache.Set(ctx, key, org, b.cacheTTL)
	return org, nil
}

// OrganizationBySlug resolves a slug. It returns ErrOrganizationNotFound for unknown slugs.
func (b *ContextBuilder) OrganizationBySlug(ctx context.Context, slug string) (*Organization, error) {
	key := cacheKeySlug(slug)
	if org, ok := b.cache.Get(ctx, key); ok {
		return org, nil
	}
	org, err := b.store.OrganizationBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrOrganizationNotFound) {
			return nil, err
		}
		return nil, ErrTenantLookup.Wrap(err)
	}
	b.cache.Set(ctx, key, org, b.cacheTTL)
	return org, nil
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
