// Package memory is an in-process store for development and tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/studiodesk/pkg/auth"
	"github.com/dmitrymomot/studiodesk/pkg/store"
	"github.com/dmitrymomot/studiodesk/pkg/tenant"
)

type user struct {
	auth.User
	passwordHash []byte
}

// Store keeps all data in maps guarded by a single mutex.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	nextID   int64
	orgs     map[int64]*tenant.Organization
	subs     []*tenant.Subscription
	plans    map[string]tenant.Plan
	users    map[int64]*user
	projects []*store.Project
	storage  map[int64]float64
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		now:     time.Now,
		orgs:    make(map[int64]*tenant.Organization),
		plans:   make(map[string]tenant.Plan),
		users:   make(map[int64]*user),
		storage: make(map[int64]float64),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func cloneOrg(org *tenant.Organization) *tenant.Organization {
	cp := *org
	return &cp
}

func (s *Store) OrganizationByID(_ context.Context, id int64) (*tenant.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, ok := s.orgs[id]
	if !ok {
		return nil, tenant.ErrOrganizationNotFound
	}
	return cloneOrg(org), nil
}

func (s *Store) OrganizationBySlug(_ context.Context, slug string) (*tenant.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, org := range s.orgs {
		if org.Slug == slug {
			return cloneOrg(org), nil
		}
	}
	return nil, tenant.ErrOrganizationNotFound
}

// OrganizationByDomain matches active organizations only.
func (s *Store) OrganizationByDomain(_ context.Context, domain string) (*tenant.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, org := range s.orgs {
		if org.Domain != "" && strings.EqualFold(org.Domain, domain) && org.Status == tenant.StatusActive {
			return cloneOrg(org), nil
		}
	}
	return nil, tenant.ErrOrganizationNotFound
}

// CurrentSubscription returns the newest active or trial subscription.
func (s *Store) CurrentSubscription(_ context.Context, organizationID int64) (*tenant.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// subs is append-only, so the last match is the newest.
	for _, sub := range slices.Backward(s.subs) {
		if sub.OrganizationID == organizationID && sub.IsCurrent() {
			cp := *sub
			cp.Features = slices.Clone(sub.Features)
			return &cp, nil
		}
	}
	return nil, tenant.ErrSubscriptionNotFound
}

func (s *Store) Usage(_ context.Context, organizationID int64) (tenant.Usage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	usage := tenant.Usage{StorageGB: s.storage[organizationID]}
	for _, u := range s.users {
		if u.OrganizationID == organizationID {
			usage.Users++
		}
	}
	for _, p := range s.projects {
		if p.OrganizationID == organizationID {
			usage.Projects++
		}
	}
	return usage, nil
}

func (s *Store) UserOrganizationID(_ context.Context, userID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return 0, tenant.ErrUserNotFound
	}
	return u.OrganizationID, nil
}

func (s *Store) CredentialsByEmail(_ context.Context, email string) (*auth.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = auth.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			return &auth.Credentials{User: u.User, PasswordHash: slices.Clone(u.passwordHash)}, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (s *Store) CreateOrganization(_ context.Context, org *tenant.Organization) error {
	if org.Slug == "" {
		return store.ErrInvalidData
	}
	if org.Status == "" {
		org.Status = tenant.StatusActive
	}
	if !org.Status.Valid() {
		return store.ErrInvalidData
	}
	org.Domain = strings.ToLower(org.Domain)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.orgs {
		if existing.Slug == org.Slug || (org.Domain != "" && existing.Domain == org.Domain) {
			return store.ErrSlugTaken
		}
	}
	org.ID = s.id()
	org.CreatedAt = s.now()
	s.orgs[org.ID] = cloneOrg(org)
	return nil
}

// SetOrganizationStatus changes an organization's lifecycle status.
func (s *Store) SetOrganizationStatus(_ context.Context, organizationID int64, status tenant.OrganizationStatus) error {
	if !status.Valid() {
		return store.ErrInvalidData
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	org, ok := s.orgs[organizationID]
	if !ok {
		return tenant.ErrOrganizationNotFound
	}
	org.Status = status
	return nil
}

func (s *Store) CreateSubscription(_ context.Context, sub *tenant.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orgs[sub.OrganizationID]; !ok {
		return tenant.ErrOrganizationNotFound
	}
	sub.ID = s.id()
	sub.CreatedAt = s.now()
	cp := *sub
	cp.Features = slices.Clone(sub.Features)
	s.subs = append(s.subs, &cp)
	return nil
}

func (s *Store) SavePlan(_ context.Context, plan tenant.Plan) error {
	if plan.ID == "" {
		return store.ErrInvalidData
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	plan.Features = slices.Clone(plan.Features)
	s.plans[plan.ID] = plan
	return nil
}

func (s *Store) Plans(_ context.Context) ([]tenant.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plans := make([]tenant.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		if p.Public {
			p.Features = slices.Clone(p.Features)
			plans = append(plans, p)
		}
	}
	slices.SortFunc(plans, func(a, b tenant.Plan) int {
		return cmp.Or(cmp.Compare(a.PriceCents, b.PriceCents), cmp.Compare(a.ID, b.ID))
	})
	return plans, nil
}

func (s *Store) CreateUser(_ context.Context, nu store.NewUser) (*auth.User, error) {
	email := auth.NormalizeEmail(nu.Email)
	if email == "" {
		return nil, store.ErrInvalidData
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return nil, store.ErrEmailTaken
		}
	}
	if nu.OrganizationID != 0 {
		if _, ok := s.orgs[nu.OrganizationID]; !ok {
			return nil, tenant.ErrOrganizationNotFound
		}
	}

	u := &user{
		User: auth.User{
			ID:             s.id(),
			Email:          email,
			Name:           nu.Name,
			OrganizationID: nu.OrganizationID,
			Role:           nu.Role,
		},
		passwordHash: slices.Clone(nu.PasswordHash),
	}
	s.users[u.ID] = u

	out := u.User
	return &out, nil
}

// DeleteUser removes a user. Unknown ids are ignored.
func (s *Store) DeleteUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, userID)
	return nil
}

func (s *Store) CreateProject(_ context.Context, organizationID int64, name string) (*store.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, store.ErrInvalidData
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orgs[organizationID]; !ok {
		return nil, tenant.ErrOrganizationNotFound
	}
	p := &store.Project{
		ID:             s.id(),
		OrganizationID: organizationID,
		Name:           name,
		CreatedAt:      s.now(),
	}
	s.projects = append(s.projects, p)

	out := *p
	return &out, nil
}

func (s *Store) RecordStorageUsage(_ context.Context, organizationID int64, gb float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orgs[organizationID]; !ok {
		return tenant.ErrOrganizationNotFound
	}
	s.storage[organizationID] = max(0, s.storage[organizationID]+gb)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
