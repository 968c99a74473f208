package tenant

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/studiodesk/pkg/apierr"
)

// ErrorHandler writes the response for a rejected request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultSkipPaths bypass tenant resolution entirely.
var DefaultSkipPaths = []string{
	"/api/health",
	"/api/ping",
	"/api/auth/login",
	"/api/auth/register",
	"/api/auth/signup",
	"/api/plans",
	"/api/admin",
	"/metrics",
}

// config is shared by Middleware, RequireLimit and RequireOrganizationAccess;
// each reads only the fields it needs.
type config struct {
	resolver       Resolver
	cache          Cache
	cacheTTL       time.Duration
	errorHandler   ErrorHandler
	skipPaths      []string
	required       bool
	superAdminRole string
	users          UserStore
	logger         *slog.Logger
	now            func() time.Time
}

func newConfig(opts []Option) *config {
	cfg := &config{
		cache:        NewNoopCache(),
		cacheTTL:     5 * time.Minute,
		errorHandler: defaultErrorHandler,
		skipPaths:    DefaultSkipPaths,
		required:     true,
		logger:       slog.New(slog.DiscardHandler),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Option configures the tenant middlewares.
type Option func(*config)

// WithResolver replaces the default resolution chain.
func WithResolver(resolver Resolver) Option {
	return func(c *config) {
		if resolver != nil {
			c.resolver = resolver
		}
	}
}

// WithCache caches organization lookups for ttl.
// Status changes become visible only after the entry expires.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *config) {
		if cache != nil {
			c.cache = cache
		}
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// WithSkipPaths sets path prefixes that bypass tenant resolution.
func WithSkipPaths(paths ...string) Option {
	return func(c *config) {
		c.skipPaths = paths
	}
}

// WithRequired controls whether requests without a tenant are rejected
// with TENANT_REQUIRED. Defaults to true.
func WithRequired(required bool) Option {
	return func(c *config) {
		c.required = required
	}
}

// WithSuperAdminBypass lets users with the given role skip the tenant-required
// check and the status gate. Resolution still runs.
func WithSuperAdminBypass(role string) Option {
	return func(c *config) {
		c.superAdminRole = role
	}
}

// WithUserStore makes RequireOrganizationAccess re-read the user's stored
// organization instead of trusting the token claim.
func WithUserStore(users UserStore) Option {
	return func(c *config) {
		c.users = users
	}
}

// WithLogger sets the logger for infrastructure failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used by the status gate.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	apierr.Write(w, r, err)
}
