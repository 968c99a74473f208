package tenant

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/studiodesk/pkg/apierr"
	"github.com/dmitrymomot/studiodesk/pkg/auth"
	"github.com/dmitrymomot/studiodesk/pkg/logger"
)

// Middleware resolves the request's organization, loads its tenant context and
// enforces the organization status gate.
//
// Requests under a skip path pass through untouched. A request that resolves to
// no organization is rejected with TENANT_REQUIRED unless WithRequired(false)
// is set or the user is a super admin.
func Middleware(store Store, opts ...Option) func(http.Handler) http.Handler {
	if store == nil {
		panic("tenant: store is required")
	}
	cfg := newConfig(opts)
	if cfg.resolver == nil {
		cfg.resolver = DefaultResolver(store)
	}
	builder := NewContextBuilder(store, cfg.cache, cfg.cacheTTL, cfg.logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			user, _ := auth.UserFromContext(ctx)
			bypass := cfg.isSuperAdmin(user)

			id, err := cfg.resolver.Resolve(r)
			if err != nil {
				cfg.fail(w, r, ErrTenantLookup.Wrap(err))
				return
			}

			organizationID := id.ID
			if organizationID == 0 && id.Slug != "" {
				org, err := builder.OrganizationBySlug(ctx, id.Slug)
				switch {
				case err == nil:
					organizationID = org.ID
				case errors.Is(err, ErrOrganizationNotFound):
					cfg.logger.DebugContext(ctx, "unknown organization slug", slog.String("slug", id.Slug))
				default:
					cfg.fail(w, r, err)
					return
				}
			}

			if organizationID == 0 {
				if cfg.required && !bypass {
					cfg.fail(w, r, ErrTenantRequired)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			tc, org, err := builder.Build(ctx, organizationID, user)
			if err != nil {
				cfg.fail(w, r, err)
				return
			}

			if !bypass {
				if err := CheckStatus(org, cfg.now()); err != nil {
					cfg.fail(w, r, err)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithContext(ctx, tc)))
		})
	}
}

// RequireTenant rejects requests that reached it without a tenant context.
// Use it on routes mounted behind Middleware configured with WithRequired(false).
func RequireTenant(opts ...Option) func(http.Handler) http.Handler {
	cfg := newConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				cfg.fail(w, r, ErrTenantRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// skip matches whole path segments: "/api/plans" skips "/api/plans" and
// "/api/plans/1" but not "/api/plansx".
func (c *config) skip(r *http.Request) bool {
	path := r.URL.Path
	for _, prefix := range c.skipPaths {
		prefix = strings.TrimSuffix(prefix, "/")
		rest, ok := strings.CutPrefix(path, prefix)
		if ok && (rest == "" || rest[0] == '/') {
			return true
		}
	}
	return false
}

func (c *config) isSuperAdmin(user *auth.User) bool {
	return c.superAdminRole != "" && user != nil && user.Role == c.superAdminRole
}

// fail logs infrastructure errors and hands the error to the error handler.
func (c *config) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apierr.IsServerError(err) {
		c.logger.ErrorContext(r.Context(), "tenant middleware failed",
			slog.String("path", r.URL.Path),
			logger.Error(err),
		)
	}
	c.errorHandler(w, r, err)
}
