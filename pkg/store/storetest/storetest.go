// Package storetest runs the behaviour every store.Store backend must share.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/studiodesk/pkg/auth"
	"github.com/dmitrymomot/studiodesk/pkg/store"
	"github.com/dmitrymomot/studiodesk/pkg/tenant"
)

// Factory returns a store for one subtest. Stores may be shared between
// subtests, so every subtest uses unique slugs and emails.
type Factory func(t *testing.T) store.Store

var seq atomic.Int64

func unique(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), seq.Add(1))
}

func studioPlan(id string) tenant.Plan {
	return tenant.Plan{
		ID:           id,
		Name:         "Studio",
		Features:     []string{"invoices"},
		MaxUsers:     2,
		MaxProjects:  10,
		MaxStorageGB: 50,
		PriceCents:   4900,
		Public:       true,
	}
}

// Run executes the shared store tests.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("organizations", func(t *testing.T) { testOrganizations(t, newStore(t)) })
	t.Run("current subscription", func(t *testing.T) { testCurrentSubscription(t, newStore(t)) })
	t.Run("users and usage", func(t *testing.T) { testUsersAndUsage(t, newStore(t)) })
	t.Run("plans", func(t *testing.T) { testPlans(t, newStore(t)) })
}

func testOrganizations(t *testing.T, s store.Store) {
	ctx := context.Background()
	slug := unique("acme")
	domain := slug + ".example.com"
	trialEnds := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	org := &tenant.Organization{Name: "Acme", Slug: slug, Domain: domain, TrialEndsAt: &trialEnds}
	require.NoError(t, s.CreateOrganization(ctx, org))
	assert.NotZero(t, org.ID)
	assert.Equal(t, tenant.StatusActive, org.Status)
	assert.False(t, org.CreatedAt.IsZero())

	assert.ErrorIs(t, s.CreateOrganization(ctx, &tenant.Organization{Slug: slug}), store.ErrSlugTaken)
	assert.ErrorIs(t, s.CreateOrganization(ctx, &tenant.Organization{}), store.ErrInvalidData)
	assert.ErrorIs(t, s.CreateOrganization(ctx, &tenant.Organization{
		Slug:   unique("bogus"),
		Status: "Suspended",
	}), store.ErrInvalidData)

	// Custom domains are unique regardless of case.
	globex := unique("globex")
	assert.ErrorIs(t, s.CreateOrganization(ctx, &tenant.Organization{
		Slug:   globex,
		Domain: strings.ToUpper(domain),
	}), store.ErrSlugTaken)
	_, err := s.OrganizationBySlug(ctx, globex)
	assert.ErrorIs(t, err, tenant.ErrOrganizationNotFound)

	got, err := s.OrganizationBySlug(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, org.ID, got.ID)
	assert.Equal(t, "Acme", got.Name)
	require.NotNil(t, got.TrialEndsAt)
	assert.True(t, trialEnds.Equal(*got.TrialEndsAt))

	got, err = s.OrganizationByDomain(ctx, domain)
	require.NoError(t, err)
	assert.Equal(t, org.ID, got.ID)

	_, err = s.OrganizationByID(ctx, org.ID+100000)
	assert.ErrorIs(t, err, tenant.ErrOrganizationNotFound)
	_, err = s.OrganizationBySlug(ctx, unique("ghost"))
	assert.ErrorIs(t, err, tenant.ErrOrganizationNotFound)

	// Domain lookups ignore organizations that are not active.
	require.NoError(t, s.SetOrganizationStatus(ctx, org.ID, tenant.StatusSuspended))
	_, err = s.OrganizationByDomain(ctx, domain)
	assert.ErrorIs(t, err, tenant.ErrOrganizationNotFound)

	got, err = s.OrganizationByID(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusSuspended, got.Status)

	assert.ErrorIs(t, s.SetOrganizationStatus(ctx, org.ID+100000, tenant.StatusActive), tenant.ErrOrganizationNotFound)
	assert.ErrorIs(t, s.SetOrganizationStatus(ctx, org.ID, "archived"), store.ErrInvalidData)
}

func testCurrentSubscription(t *testing.T, s store.Store) {
	ctx := context.Background()

	org := &tenant.Organization{Slug: unique("acme")}
	require.NoError(t, s.CreateOrganization(ctx, org))

	_, err := s.CurrentSubscription(ctx, org.ID)
	assert.ErrorIs(t, err, tenant.ErrSubscriptionNotFound)

	plan := studioPlan(unique("studio"))
	require.NoError(t, s.CreateSubscription(ctx, store.SubscriptionFromPlan(org.ID, plan, tenant.SubscriptionActive)))
	trial := store.SubscriptionFromPlan(org.ID, plan, tenant.SubscriptionTrial)
	require.NoError(t, s.CreateSubscription(ctx, trial))
	require.NoError(t, s.CreateSubscription(ctx, store.SubscriptionFromPlan(org.ID, plan, tenant.SubscriptionCancelled)))

	sub, err := s.CurrentSubscription(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, trial.ID, sub.ID)
	assert.Equal(t, tenant.SubscriptionTrial, sub.Status)
	assert.Equal(t, "Studio", sub.PlanName)
	assert.Equal(t, int64(10), sub.MaxProjects)
	assert.Equal(t, []string{"invoices"}, sub.Features)

	assert.ErrorIs(t, s.CreateSubscription(ctx, &tenant.Subscription{
		OrganizationID: org.ID + 100000,
		Status:         tenant.SubscriptionActive,
	}), tenant.ErrOrganizationNotFound)
}

func testUsersAndUsage(t *testing.T, s store.Store) {
	ctx := context.Background()

	org := &tenant.Organization{Slug: unique("acme")}
	require.NoError(t, s.CreateOrganization(ctx, org))

	email := unique("jane") + "@acme.io"
	u, err := s.CreateUser(ctx, store.NewUser{
		OrganizationID: org.ID,
		Email:          "  " + email + " ",
		Name:           "Jane",
		Role:           "admin",
		PasswordHash:   []byte("hash"),
	})
	require.NoError(t, err)
	assert.Equal(t, email, u.Email)
	assert.Equal(t, org.ID, u.OrganizationID)

	_, err = s.CreateUser(ctx, store.NewUser{Email: email, PasswordHash: []byte("x")})
	assert.ErrorIs(t, err, store.ErrEmailTaken)

	platform, err := s.CreateUser(ctx, store.NewUser{Email: unique("root") + "@studiodesk.io", Role: "super_admin", PasswordHash: []byte("x")})
	require.NoError(t, err)
	orgID, err := s.UserOrganizationID(ctx, platform.ID)
	require.NoError(t, err)
	assert.Zero(t, orgID)

	creds, err := s.CredentialsByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, creds.User.ID)
	assert.Equal(t, "admin", creds.User.Role)
	assert.Equal(t, []byte("hash"), creds.PasswordHash)

	_, err = s.CredentialsByEmail(ctx, unique("nobody")+"@acme.io")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	orgID, err = s.UserOrganizationID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, org.ID, orgID)

	project, err := s.CreateProject(ctx, org.ID, "Spring campaign")
	require.NoError(t, err)
	assert.NotZero(t, project.ID)
	_, err = s.CreateProject(ctx, org.ID, "  ")
	assert.ErrorIs(t, err, store.ErrInvalidData)
	_, err = s.CreateProject(ctx, org.ID+100000, "Orphan")
	assert.ErrorIs(t, err, tenant.ErrOrganizationNotFound)

	require.NoError(t, s.RecordStorageUsage(ctx, org.ID, 2.5))
	require.NoError(t, s.RecordStorageUsage(ctx, org.ID, -10))
	require.NoError(t, s.RecordStorageUsage(ctx, org.ID, 1.25))

	usage, err := s.Usage(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.Usage{Users: 1, Projects: 1, StorageGB: 1.25}, usage)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	_, err = s.UserOrganizationID(ctx, u.ID)
	assert.ErrorIs(t, err, tenant.ErrUserNotFound)
}

func testPlans(t *testing.T, s store.Store) {
	ctx := context.Background()

	cheap := unique("solo")
	studio := unique("studio")
	hidden := unique("legacy")

	require.NoError(t, s.SavePlan(ctx, studioPlan(studio)))
	require.NoError(t, s.SavePlan(ctx, tenant.Plan{ID: cheap, Name: "Solo", Features: []string{}, MaxUsers: 1, PriceCents: 900, Public: true}))
	require.NoError(t, s.SavePlan(ctx, tenant.Plan{ID: hidden, Name: "Legacy", PriceCents: 100}))
	assert.ErrorIs(t, s.SavePlan(ctx, tenant.Plan{}), store.ErrInvalidData)

	updated := studioPlan(studio)
	updated.PriceCents = 5900
	require.NoError(t, s.SavePlan(ctx, updated))

	plans, err := s.Plans(ctx)
	require.NoError(t, err)

	index := make(map[string]int, len(plans))
	for i, p := range plans {
		index[p.ID] = i
	}
	require.Contains(t, index, cheap)
	require.Contains(t, index, studio)
	assert.NotContains(t, index, hidden)
	assert.Less(t, index[cheap], index[studio])
	assert.Equal(t, int64(5900), plans[index[studio]].PriceCents)
	assert.Equal(t, []string{"invoices"}, plans[index[studio]].Features)
}
