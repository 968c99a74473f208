package tenant_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/studiodesk/pkg/auth"
	"github.com/dmitrymomot/studiodesk/pkg/tenant"
)

func TestSubdomainResolver(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		want string
	}{
		{"acme.studiodesk.io", "acme"},
		{"acme.app.example", "acme"},
		{"Acme.StudioDesk.io", "acme"},
		{"acme.studiodesk.io:8080", "acme"},
		{"deep.acme.studiodesk.io", "deep"},
		{"www.studiodesk.io", ""},
		{"app.studiodesk.io", ""},
		{"app.example", ""},
		{"studiodesk.io", ""},
		{"localhost", ""},
		{"localhost:3000", ""},
		{"", ""},
	}

	resolver := tenant.NewSubdomainResolver()
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host

			id, err := resolver.Resolve(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, id.Slug)
			assert.Zero(t, id.ID)
		})
	}

	t.Run("custom reserved labels", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = "admin.studiodesk.io"

		id, err := tenant.NewSubdomainResolver("admin").Resolve(req)
		require.NoError(t, err)
		assert.True(t, id.IsZero())
	})
}

func TestDomainResolver(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	org := activeOrg(1, "acme")
	org.Domain = "projects.acme-films.com"
	store.addOrg(org)

	suspended := activeOrg(2, "globex")
	suspended.Domain = "globex.tv"
	suspended.Status = tenant.StatusSuspended
	store.addOrg(suspended)

	resolver := tenant.NewDomainResolver(store)

	t.Run("matches active custom domain", func(t *testing.T) {
		t.Parallel()

		id, err := resolver.Resolve(newRequest("projects.acme-films.com:443", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, "acme", id.Slug)
	})

	t.Run("ignores inactive organizations", func(t *testing.T) {
		t.Parallel()

		id, err := resolver.Resolve(newRequest("globex.tv", "/", nil))
		require.NoError(t, err)
		assert.True(t, id.IsZero())
	})

	t.Run("unknown domain", func(t *testing.T) {
		t.Parallel()

		id, err := resolver.Resolve(newRequest("example.org", "/", nil))
		require.NoError(t, err)
		assert.True(t, id.IsZero())
	})

	t.Run("store error is returned", func(t *testing.T) {
		t.Parallel()

		broken := newMockStore()
		broken.failOrgs = true
		_, err := tenant.NewDomainResolver(broken).Resolve(newRequest("example.org", "/", nil))
		assert.ErrorIs(t, err, errStoreDown)
	})
}

func TestPathResolver(t *testing.T) {
	t.Parallel()

	t.Run("reads chi url param", func(t *testing.T) {
		t.Parallel()

		var got tenant.Identifier
		r := chi.NewRouter()
		r.Get("/org/{orgSlug}/api/projects", func(w http.ResponseWriter, r *http.Request) {
			var err error
			got, err = tenant.NewPathResolver().Resolve(r)
			require.NoError(t, err)
		})

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/org/acme/api/projects", nil))
		assert.Equal(t, "acme", got.Slug)
	})

	t.Run("falls back to path prefix before routing", func(t *testing.T) {
		t.Parallel()

		id, err := tenant.NewPathResolver().Resolve(httptest.NewRequest(http.MethodGet, "/org/globex/api/users", nil))
		require.NoError(t, err)
		assert.Equal(t, "globex", id.Slug)
	})

	t.Run("no slug outside org routes", func(t *testing.T) {
		t.Parallel()

		id, err := tenant.NewPathResolver().Resolve(httptest.NewRequest(http.MethodGet, "/api/projects", nil))
		require.NoError(t, err)
		assert.True(t, id.IsZero())
	})
}

func TestUserResolver(t *testing.T) {
	t.Parallel()

	id, err := tenant.UserResolver{}.Resolve(newRequest("localhost", "/", &auth.User{ID: 1, OrganizationID: 42}))
	require.NoError(t, err)
	assert.Equal(t, tenant.Identifier{ID: 42}, id)

	id, err = tenant.UserResolver{}.Resolve(newRequest("localhost", "/", &auth.User{ID: 1}))
	require.NoError(t, err)
	assert.True(t, id.IsZero())

	id, err = tenant.UserResolver{}.Resolve(newRequest("localhost", "/", nil))
	require.NoError(t, err)
	assert.True(t, id.IsZero())
}

func TestDefaultResolverPriority(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	org := activeOrg(1, "custom")
	org.Domain = "acmefilms.com"
	store.addOrg(org)

	resolver := tenant.DefaultResolver(store)
	user := &auth.User{ID: 9, OrganizationID: 42}

	tests := []struct {
		name string
		host string
		path string
		want tenant.Identifier
	}{
		{"subdomain beats everything", "acme.studiodesk.io", "/org/other/api", tenant.Identifier{Slug: "acme"}},
		{"custom domain beats path", "acmefilms.com", "/org/other/api", tenant.Identifier{Slug: "custom"}},
		{"path beats user", "studiodesk.io", "/org/other/api", tenant.Identifier{Slug: "other"}},
		{"user organization last", "app.example", "/api/projects", tenant.Identifier{ID: 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, err := resolver.Resolve(newRequest(tt.host, tt.path, user))
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestCompositeResolverStopsOnError(t *testing.T) {
	t.Parallel()

	called := false
	resolver := tenant.NewCompositeResolver(
		tenant.ResolverFunc(func(*http.Request) (tenant.Identifier, error) { return tenant.Identifier{}, errStoreDown }),
		tenant.ResolverFunc(func(*http.Request) (tenant.Identifier, error) {
			called = true
			return tenant.Identifier{ID: 1}, nil
		}),
	)

	_, err := resolver.Resolve(newRequest("localhost", "/", nil))
	assert.ErrorIs(t, err, errStoreDown)
	assert.False(t, called)
}
