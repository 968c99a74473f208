package tenant_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/studiodesk/pkg/auth"
	"github.com/dmitrymomot/studiodesk/pkg/tenant"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("resolves subdomain and attaches context", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()
		store.addOrg(activeOrg(1, "acme"))
		store.subs[1] = activeSub(1)

		var got captured
		handler := tenant.Middleware(store)(got.handler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("acme.app.example", "/api/projects", nil))

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, got.tc)
		assert.Equal(t, int64(1), got.tc.OrganizationID)
		assert.Equal(t, "acme", got.tc.OrganizationSlug)
		assert.Equal(t, "Studio", got.tc.Subscription.PlanName)
		assert.Equal(t, []string{"invoices", "expenses"}, got.tc.Features)
		assert.True(t, got.tc.HasFeature("invoices"))
		assert.Nil(t, got.tc.User)
	})

	t.Run("skip paths bypass resolution", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()
		store.addOrg(&tenant.Organization{ID: 1, Slug: "acme", Status: tenant.StatusSuspended})

		for _, path := range []string{"/api/health", "/api/auth/login", "/api/plans", "/api/admin/organizations/1"} {
			var got captured
			handler := tenant.Middleware(store)(got.handler())

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, newRequest("acme.studiodesk.io", path, &auth.User{ID: 1, OrganizationID: 1}))

			assert.Equal(t, http.StatusOK, w.Code, path)
			assert.True(t, got.called, path)
			assert.Nil(t, got.tc, path)
		}

		assert.Zero(t, store.slugLookups)
		assert.Zero(t, store.idLookups)
		assert.Zero(t, store.domainLookups)
	})

	t.Run("skip paths match whole segments", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()

		for _, path := range []string{"/api/plansx", "/api/administrators", "/api/healthz"} {
			var got captured
			handler := tenant.Middleware(store)(got.handler())

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, newRequest("studiodesk.io", path, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code, path)
			assert.False(t, got.called, path)
			assert.Equal(t, "TENANT_REQUIRED", decodeError(t, w).Code, path)
		}

		for _, path := range []string{"/api/plans", "/api/plans/", "/api/admin/organizations/1"} {
			var got captured
			handler := tenant.Middleware(store)(got.handler())

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, newRequest("studiodesk.io", path, nil))

			assert.Equal(t, http.StatusOK, w.Code, path)
		}
	})

	t.Run("tenant required when nothing resolves", func(t *testing.T) {
		t.Parallel()

		var got captured
		handler := tenant.Middleware(newMockStore())(got.handler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("studiodesk.io", "/api/projects", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "TENANT_REQUIRED", decodeError(t, w).Code)
		assert.False(t, got.called)
	})

	t.Run("optional tenant passes through without context", func(t *testing.T) {
		t.Parallel()

		var got captured
		handler := tenant.Middleware(newMockStore(), tenant.WithRequired(false))(got.handler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("studiodesk.io", "/api/projects", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, got.called)
		assert.Nil(t, got.tc)
	})

	t.Run("unknown slug counts as unresolved", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()
		var got captured
		handler := tenant.Middleware(store)(got.handler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("ghost.studiodesk.io", "/api/projects", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "TENANT_REQUIRED", decodeError(t, w).Code)
		assert.Equal(t, 1, store.slugLookups)
	})

	t.Run("user organization id that does not exist", func(t *testing.T) {
		t.Parallel()

		var got captured
		handler := tenant.Middleware(newMockStore())(got.handler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("localhost", "/api/projects", &auth.User{ID: 1, OrganizationID: 404}))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "TENANT_NOT_FOUND", decodeError(t, w).Code)
	})

	t.Run("user organization bypasses slug lookup", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()
		store.addOrg(activeOrg(42, "globex"))
		user := &auth.User{ID: 5, OrganizationID: 42, Role: "manager"}

		var got captured
		handler := tenant.Middleware(store)(got.handler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("app.example", "/api/projects", user))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(42), got.tc.OrganizationID)
		assert.Equal(t, user, got.tc.User)
		assert.Zero(t, store.slugLookups)
	})

	t.Run("store failure during resolution", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()
		store.failOrgs = true

		var logs bytes.Buffer
		var got captured
		handler := tenant.Middleware(store, tenant.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))(got.handler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("acme.studiodesk.io", "/api/projects", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "TENANT_ERROR", body.Code)
		assert.NotContains(t, body.Message, errStoreDown.Error())
		assert.Contains(t, logs.String(), errStoreDown.Error())
	})

	t.Run("subscription failure degrades", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()
		store.addOrg(activeOrg(1, "acme"))
		store.subs[1] = activeSub(1)
		store.failSubs = true

		var got captured
		handler := tenant.Middleware(store)(got.handler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("acme.studiodesk.io", "/api/projects", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(1), got.tc.OrganizationID)
		assert.Nil(t, got.tc.Subscription)
		assert.Empty(t, got.tc.Features)
		assert.NotNil(t, got.tc.Features)
	})

	t.Run("organization without subscription", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()
		store.addOrg(activeOrg(1, "acme"))

		var got captured
		handler := tenant.Middleware(store)(got.handler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("acme.studiodesk.io", "/api/projects", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, got.tc.Subscription)
		assert.Equal(t, []string{}, got.tc.Features)
	})

	t.Run("custom error handler", func(t *testing.T) {
		t.Parallel()

		var seen error
		handler := tenant.Middleware(newMockStore(), tenant.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			seen = err
			w.WriteHeader(http.StatusTeapot)
		}))(http.NotFoundHandler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("localhost", "/api/projects", nil))

		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.ErrorIs(t, seen, tenant.ErrTenantRequired)
	})
}

func TestMiddlewareStatusGate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	tests := []struct {
		name       string
		status     tenant.OrganizationStatus
		trialEnds  *time.Time
		wantStatus int
		wantCode   string
	}{
		{"active", tenant.StatusActive, nil, http.StatusOK, ""},
		{"suspended", tenant.StatusSuspended, nil, http.StatusForbidden, "TENANT_SUSPENDED"},
		{"cancelled", tenant.StatusCancelled, nil, http.StatusForbidden, "TENANT_CANCELLED"},
		{"trial expired", tenant.StatusTrial, &past, http.StatusPaymentRequired, "TRIAL_EXPIRED"},
		{"trial running", tenant.StatusTrial, &future, http.StatusOK, ""},
		{"trial ends exactly now", tenant.StatusTrial, &now, http.StatusOK, ""},
		{"trial without end date", tenant.StatusTrial, nil, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newMockStore()
			store.addOrg(&tenant.Organization{ID: 1, Slug: "acme", Status: tt.status, TrialEndsAt: tt.trialEnds})
			store.subs[1] = activeSub(1)

			var got captured
			handler := tenant.Middleware(store, tenant.WithClock(func() time.Time { return now }))(got.handler())

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, newRequest("acme.studiodesk.io", "/api/projects", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, got.called)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
			}
		})
	}
}

func TestMiddlewareSuperAdmin(t *testing.T) {
	t.Parallel()

	admin := &auth.User{ID: 1, Role: "super_admin"}

	t.Run("skips status gate", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()
		store.addOrg(&tenant.Organization{ID: 1, Slug: "acme", Status: tenant.StatusSuspended})

		var got captured
		handler := tenant.Middleware(store, tenant.WithSuperAdminBypass("super_admin"))(got.handler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("acme.studiodesk.io", "/api/projects", admin))

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, got.tc)
		assert.Equal(t, int64(1), got.tc.OrganizationID)
	})

	t.Run("skips tenant required", func(t *testing.T) {
		t.Parallel()

		var got captured
		handler := tenant.Middleware(newMockStore(), tenant.WithSuperAdminBypass("super_admin"))(got.handler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("studiodesk.io", "/api/projects", admin))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, got.tc)
	})

	t.Run("no bypass unless enabled", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()
		store.addOrg(&tenant.Organization{ID: 1, Slug: "acme", Status: tenant.StatusSuspended})

		var got captured
		handler := tenant.Middleware(store)(got.handler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("acme.studiodesk.io", "/api/projects", admin))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("regular roles are gated", func(t *testing.T) {
		t.Parallel()

		store := newMockStore()
		store.addOrg(&tenant.Organization{ID: 1, Slug: "acme", Status: tenant.StatusCancelled})

		var got captured
		handler := tenant.Middleware(store, tenant.WithSuperAdminBypass("super_admin"))(got.handler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("acme.studiodesk.io", "/api/projects", &auth.User{ID: 2, OrganizationID: 1, Role: "admin"}))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "TENANT_CANCELLED", decodeError(t, w).Code)
	})
}

func TestMiddlewareCache(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	store.addOrg(activeOrg(1, "acme"))

	cache := tenant.NewMemoryCache(10)
	t.Cleanup(func() { _ = cache.Close() })

	handler := tenant.Middleware(store, tenant.WithCache(cache, time.Minute))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for range 3 {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newRequest("acme.studiodesk.io", "/api/projects", nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}

	assert.Equal(t, 1, store.slugLookups)
	assert.Equal(t, 1, store.idLookups)
}

func TestRequireTenant(t *testing.T) {
	t.Parallel()

	var got captured
	handler := tenant.RequireTenant()(got.handler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, newRequest("localhost", "/api/projects", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, got.called)

	req := newRequest("localhost", "/api/projects", nil)
	req = req.WithContext(tenant.WithContext(req.Context(), &tenant.Context{OrganizationID: 1}))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
