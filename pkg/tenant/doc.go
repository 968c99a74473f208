// Package tenant resolves the organization a request belongs to and gates the
// request on the organization's lifecycle state and subscription plan.
//
// # Architecture
//
// Three middlewares cooperate:
//
//  1. Middleware resolves the organization, builds a read-only Context with
//     the current subscription and feature set, and rejects suspended,
//     cancelled and trial-expired organizations. It runs on every request.
//  2. RequireLimit compares current usage of users, projects or storage to
//     the subscription's cap before a mutating route runs.
//  3. RequireOrganizationAccess checks that the authenticated user belongs
//     to the resolved organization.
//
// Resolution tries, in order: the first label of a host with at least three
// labels (except "www" and "app"), an active organization's custom domain, the
// "orgSlug" path parameter and finally the authenticated user's stored
// organization. Slugs are then looked up to obtain the organization id.
//
// # Usage
//
//	r := chi.NewRouter()
//	r.Use(auth.Middleware(tokens))
//	r.Use(tenant.Middleware(store,
//		tenant.WithRequired(true),
//		tenant.WithSuperAdminBypass(rbac.RoleSuperAdmin),
//		tenant.WithLogger(log),
//	))
//
//	r.With(
//		tenant.RequireOrganizationAccess(),
//		tenant.RequireLimit(tenant.ResourceProjects, store),
//	).Post("/api/projects", createProject)
//
// Handlers read the context with FromContext:
//
//	tc, ok := tenant.FromContext(r.Context())
//
// # Errors
//
// Rejections are *apierr.Error values with stable codes such as
// TENANT_SUSPENDED or PROJECT_LIMIT_REACHED. Store failures surface as
// TENANT_ERROR, LIMITS_CHECK_ERROR or ACCESS_CHECK_ERROR depending on the
// middleware, except while loading the subscription: that failure is logged
// and the request continues with no subscription.
//
// # Caching
//
// Organization lookups are not cached by default so that suspensions apply to
// the next request. WithCache enables an in-memory or Redis-backed cache.
package tenant
