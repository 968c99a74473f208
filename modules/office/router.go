package office

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/studiodesk/pkg/apierr"
	"github.com/dmitrymomot/studiodesk/pkg/auth"
	"github.com/dmitrymomot/studiodesk/pkg/httpserver"
	"github.com/dmitrymomot/studiodesk/pkg/metrics"
	"github.com/dmitrymomot/studiodesk/pkg/rbac"
	"github.com/dmitrymomot/studiodesk/pkg/requestid"
	"github.com/dmitrymomot/studiodesk/pkg/store"
	"github.com/dmitrymomot/studiodesk/pkg/tenant"
)

// FeatureStorage is the plan feature that allows recording uploads.
const FeatureStorage = "storage"

// RouterOptions wires the office API. Store, Tokens and Authorizer are required.
type RouterOptions struct {
	Store      store.Store
	Tokens     *auth.TokenService
	Authorizer *rbac.Authorizer

	// Cache is shared by the tenant middleware and the admin status endpoint,
	// which invalidates entries after a status change.
	Cache    tenant.Cache
	CacheTTL time.Duration

	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	HealthChecks []httpserver.Check
	// TenantOptions are applied after the defaults, e.g. tenant.WithRequired(false).
	TenantOptions []tenant.Option
}

// Router builds the HTTP API.
//
// Tenant-scoped routes are served twice: under /api, where the tenant comes
// from the host or the user's organization, and under /org/{orgSlug}/api.
func Router(opts RouterOptions) chi.Router {
	if opts.Store == nil || opts.Tokens == nil || opts.Authorizer == nil {
		panic("office: store, tokens and authorizer are required")
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	var fail apierr.HandlerFunc = apierr.Write
	if opts.Metrics != nil {
		fail = opts.Metrics.ErrorHandler(nil)
	}

	h := &handlers{
		store:  opts.Store,
		tokens: opts.Tokens,
		authz:  opts.Authorizer,
		auth:   auth.NewAuthenticator(opts.Store, log),
		cache:  opts.Cache,
		logger: log,
		errors: fail,
	}
	h.tenantOpts = append([]tenant.Option{
		tenant.WithCache(opts.Cache, opts.CacheTTL),
		tenant.WithLogger(log),
		tenant.WithErrorHandler(tenant.ErrorHandler(fail)),
		tenant.WithSuperAdminBypass(rbac.RoleSuperAdmin),
		tenant.WithUserStore(opts.Store),
	}, opts.TenantOptions...)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(auth.Middleware(opts.Tokens))

	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}

	checks := append([]httpserver.Check{{Name: "store", Probe: opts.Store.Ping}}, opts.HealthChecks...)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", httpserver.HealthCheckHandler(log, checks...))
		r.Get("/ping", h.ping)
		r.Post("/auth/login", h.login)
		r.Get("/plans", h.plans)

		r.Route("/admin", func(r chi.Router) {
			r.Use(rbac.RequireWithHandler(h.authz, fail, rbac.PlatformAdmin))
			r.Get("/organizations/{id}", h.adminOrganization)
			r.Put("/organizations/{id}/status", h.adminSetStatus)
		})

		r.Group(h.tenantRoutes)
	})
	r.Route("/org/{"+tenant.DefaultSlugParam+"}/api", h.tenantRoutes)

	return r
}

func (h *handlers) tenantRoutes(r chi.Router) {
	r.Use(tenant.Middleware(h.store, h.tenantOpts...))
	r.Use(tenant.RequireOrganizationAccess(h.tenantOpts...))

	r.Get("/tenant", h.tenant)
	r.Get("/tenant/usage", h.usage)

	r.With(h.require(rbac.ProjectsWrite), h.limit(tenant.ResourceProjects)).Post("/projects", h.createProject)
	r.With(h.require(rbac.UsersManage), h.limit(tenant.ResourceUsers)).Post("/users", h.createUser)
	r.With(h.require(rbac.UsersManage)).Delete("/users/{id}", h.deleteUser)
	r.With(h.require(rbac.ProjectsWrite), h.feature(FeatureStorage), h.limit(tenant.ResourceStorage)).Post("/storage/uploads", h.recordUpload)
	r.With(h.require(rbac.ProjectsWrite)).Post("/storage/releases", h.releaseStorage)
}

func (h *handlers) require(capabilities ...string) func(http.Handler) http.Handler {
	return rbac.RequireWithHandler(h.authz, h.errors, capabilities...)
}

func (h *handlers) feature(name string) func(http.Handler) http.Handler {
	return tenant.RequireFeature(name, h.tenantOpts...)
}

func (h *handlers) limit(res tenant.Resource) func(http.Handler) http.Handler {
	return tenant.RequireLimit(res, h.store, h.tenantOpts...)
}
