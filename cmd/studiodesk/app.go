package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/studiodesk/modules/office"
	"github.com/dmitrymomot/studiodesk/pkg/auth"
	"github.com/dmitrymomot/studiodesk/pkg/httpserver"
	"github.com/dmitrymomot/studiodesk/pkg/logger"
	"github.com/dmitrymomot/studiodesk/pkg/metrics"
	"github.com/dmitrymomot/studiodesk/pkg/pg"
	"github.com/dmitrymomot/studiodesk/pkg/rbac"
	"github.com/dmitrymomot/studiodesk/pkg/redis"
	"github.com/dmitrymomot/studiodesk/pkg/requestid"
	"github.com/dmitrymomot/studiodesk/pkg/store"
	"github.com/dmitrymomot/studiodesk/pkg/store/memory"
	"github.com/dmitrymomot/studiodesk/pkg/store/postgres"
	"github.com/dmitrymomot/studiodesk/pkg/store/sqlite"
	"github.com/dmitrymomot/studiodesk/pkg/tenant"
)

var ErrUnknownStoreDriver = errors.New("unknown store driver")

// app owns everything that must be closed on shutdown.
type app struct {
	handler http.Handler
	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func newApp(ctx context.Context, cfg appConfig, log *slog.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, st.Close)

	if cfg.SeedFile != "" {
		data, err := store.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		if err := store.Seed(ctx, st, data); err != nil {
			return nil, err
		}
		log.InfoContext(ctx, "seed data applied", slog.String("file", cfg.SeedFile))
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	var roles rbac.RoleSource = rbac.NewMemorySource(rbac.DefaultRoles())
	if cfg.RolesFile != "" {
		roles = rbac.NewYAMLSource(cfg.RolesFile)
	}
	authz, err := rbac.NewAuthorizer(ctx, roles)
	if err != nil {
		return nil, err
	}

	opts := office.RouterOptions{
		Store:      st,
		Tokens:     tokens,
		Authorizer: authz,
		CacheTTL:   cfg.TenantCacheTTL,
		Logger:     log,
		TenantOptions: []tenant.Option{
			tenant.WithRequired(cfg.TenantRequired),
			tenant.WithResolver(tenant.NewCompositeResolver(
				tenant.NewSubdomainResolver(cfg.ReservedSubdomains...),
				tenant.NewDomainResolver(st),
				tenant.NewPathResolver(),
				tenant.UserResolver{},
			)),
		},
	}
	if !cfg.AllowSuperAdmin {
		opts.TenantOptions = append(opts.TenantOptions, tenant.WithSuperAdminBypass(""))
	}
	if cfg.MetricsEnabled {
		opts.Metrics = metrics.New(nil)
	}

	if cfg.TenantCacheTTL > 0 {
		if cfg.Redis.ConnectionURL != "" {
			client, err := redis.Connect(ctx, cfg.Redis)
			if err != nil {
				return nil, err
			}
			a.closers = append(a.closers, client.Close)
			opts.Cache = redis.NewOrganizationCache(client, cfg.Redis.KeyPrefix, log)
			opts.HealthChecks = append(opts.HealthChecks, httpserver.Check{Name: "redis", Probe: redis.Healthcheck(client)})
		} else {
			cache := tenant.NewMemoryCache(cfg.TenantCacheSize)
			a.closers = append(a.closers, cache.Close)
			opts.Cache = cache
		}
	}

	a.handler = office.Router(opts)
	return a, nil
}

func openStore(ctx context.Context, cfg appConfig, log *slog.Logger) (store.Store, error) {
	log = log.With(slog.String("driver", cfg.StoreDriver))

	switch cfg.StoreDriver {
	case driverMemory:
		log.WarnContext(ctx, "using in-memory store, data is lost on restart")
		return memory.New(), nil

	case driverSQLite:
		st, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.InfoContext(ctx, "store opened", slog.String("path", cfg.SQLitePath))
		return st, nil

	case driverPostgres:
		pool, err := pg.Connect(ctx, cfg.PG)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx, pool, postgres.Migrations(), cfg.PG, log); err != nil {
			pool.Close()
			return nil, err
		}
		log.InfoContext(ctx, "store opened")
		return postgres.New(pool), nil
	}

	return nil, errors.Join(ErrUnknownStoreDriver, fmt.Errorf("%q", cfg.StoreDriver))
}

func newLogger(cfg appConfig) *slog.Logger {
	return logger.New(
		logger.WithConfig(cfg.Log, cfg.ServiceName),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			auth.LoggerExtractor(),
			tenant.LoggerExtractor(),
		),
	)
}
