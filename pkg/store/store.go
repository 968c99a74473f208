// Package store defines the persistence contract shared by the postgres,
// sqlite and memory backends.
package store

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dmitrymomot/studiodesk/pkg/auth"
	"github.com/dmitrymomot/studiodesk/pkg/tenant"
)

var (
	ErrEmailTaken  = errors.New("store: email already registered")
	ErrSlugTaken   = errors.New("store: organization slug or domain already taken")
	ErrInvalidData = errors.New("store: invalid data")
)

// Project is a tenant-owned project.
type Project struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organizationId"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewUser holds the fields for creating a user.
type NewUser struct {
	OrganizationID int64
	Email          string
	Name           string
	Role           string
	PasswordHash   []byte
}

// Store is implemented by every backend.
type Store interface {
	tenant.Store
	tenant.UsageStore
	tenant.UserStore
	auth.CredentialStore

	// CreateOrganization inserts org and sets its ID and CreatedAt.
	CreateOrganization(ctx context.Context, org *tenant.Organization) error
	SetOrganizationStatus(ctx context.Context, organizationID int64, status tenant.OrganizationStatus) error
	// CreateSubscription inserts sub and sets its ID and CreatedAt.
	CreateSubscription(ctx context.Context, sub *tenant.Subscription) error
	// SavePlan inserts or replaces a catalog plan.
	SavePlan(ctx context.Context, plan tenant.Plan) error
	// Plans lists public plans ordered by price.
	Plans(ctx context.Context) ([]tenant.Plan, error)

	CreateUser(ctx context.Context, user NewUser) (*auth.User, error)
	DeleteUser(ctx context.Context, userID int64) error
	CreateProject(ctx context.Context, organizationID int64, name string) (*Project, error)
	// RecordStorageUsage adds gb to the organization's storage usage. Negative values release storage.
	RecordStorageUsage(ctx context.Context, organizationID int64, gb float64) error

	Ping(ctx context.Context) error
	Close() error
}

// SubscriptionFromPlan builds a subscription carrying the plan's caps and features.
func SubscriptionFromPlan(organizationID int64, plan tenant.Plan, status tenant.SubscriptionStatus) *tenant.Subscription {
	return &tenant.Subscription{
		OrganizationID: organizationID,
		PlanID:         plan.ID,
		PlanName:       plan.Name,
		Status:         status,
		Features:       slices.Clone(plan.Features),
		MaxUsers:       plan.MaxUsers,
		MaxProjects:    plan.MaxProjects,
		MaxStorageGB:   plan.MaxStorageGB,
	}
}
