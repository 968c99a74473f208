package tenant_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/studiodesk/pkg/apierr"
	"github.com/dmitrymomot/studiodesk/pkg/auth"
	"github.com/dmitrymomot/studiodesk/pkg/tenant"
)

var errStoreDown = errors.New("store unavailable")

type mockStore struct {
	mu            sync.Mutex
	orgs          map[int64]*tenant.Organization
	subs          map[int64]*tenant.Subscription
	usage         map[int64]tenant.Usage
	userOrgs      map[int64]int64
	failOrgs      bool
	failSubs      bool
	failUsage     bool
	failUsers     bool
	slugLookups   int
	idLookups     int
	domainLookups int
}

func newMockStore() *mockStore {
	return &mockStore{
		orgs:     make(map[int64]*tenant.Organization),
		subs:     make(map[int64]*tenant.Subscription),
		usage:    make(map[int64]tenant.Usage),
		userOrgs: make(map[int64]int64),
	}
}

func (m *mockStore) addOrg(org *tenant.Organization) *tenant.Organization {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orgs[org.ID] = org
	return org
}

func (m *mockStore) OrganizationByID(_ context.Context, id int64) (*tenant.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idLookups++
	if m.failOrgs {
		return nil, errStoreDown
	}
	if org, ok := m.orgs[id]; ok {
		return org, nil
	}
	return nil, tenant.ErrOrganizationNotFound
}

func (m *mockStore) OrganizationBySlug(_ context.Context, slug string) (*tenant.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slugLookups++
	if m.failOrgs {
		return nil, errStoreDown
	}
	for _, org := range m.orgs {
		if org.Slug == slug {
			return org, nil
		}
	}
	return nil, tenant.ErrOrganizationNotFound
}

func (m *mockStore) OrganizationByDomain(_ context.Context, domain string) (*tenant.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.domainLookups++
	if m.failOrgs {
		return nil, errStoreDown
	}
	for _, org := range m.orgs {
		if org.Domain != "" && org.Domain == domain && org.Status == tenant.StatusActive {
			return org, nil
		}
	}
	return nil, tenant.ErrOrganizationNotFound
}

func (m *mockStore) CurrentSubscription(_ context.Context, orgID int64) (*tenant.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSubs {
		return nil, errStoreDown
	}
	if sub, ok := m.subs[orgID]; ok {
		return sub, nil
	}
	return nil, tenant.ErrSubscriptionNotFound
}

func (m *mockStore) Usage(_ context.Context, orgID int64) (tenant.Usage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUsage {
		return tenant.Usage{}, errStoreDown
	}
	return m.usage[orgID], nil
}

func (m *mockStore) UserOrganizationID(_ context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUsers {
		return 0, errStoreDown
	}
	orgID, ok := m.userOrgs[userID]
	if !ok {
		return 0, tenant.ErrUserNotFound
	}
	return orgID, nil
}

func activeOrg(id int64, slug string) *tenant.Organization {
	return &tenant.Organization{ID: id, Name: slug, Slug: slug, Status: tenant.StatusActive, CreatedAt: time.Now()}
}

func activeSub(orgID int64) *tenant.Subscription {
	return &tenant.Subscription{
		ID:             orgID * 10,
		OrganizationID: orgID,
		PlanID:         "studio",
		PlanName:       "Studio",
		Status:         tenant.SubscriptionActive,
		Features:       []string{"invoices", "expenses"},
		MaxUsers:       5,
		MaxProjects:    10,
		MaxStorageGB:   50,
		CreatedAt:      time.Now(),
	}
}

// captured records what reached the final handler.
type captured struct {
	called bool
	tc     *tenant.Context
}

func (c *captured) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called = true
		c.tc, _ = tenant.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func newRequest(host, path string, user *auth.User) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Host = host
	if user != nil {
		req = req.WithContext(auth.WithUser(req.Context(), user))
	}
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierr.Response {
	t.Helper()
	var body apierr.Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}
