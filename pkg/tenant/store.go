package tenant

import "context"

// OrganizationStore looks up organizations.
// Every method returns ErrOrganizationNotFound when nothing matches.
type OrganizationStore interface {
	OrganizationByID(ctx context.Context, id int64) (*Organization, error)
	OrganizationBySlug(ctx context.Context, slug string) (*Organization, error)
	// OrganizationByDomain matches a custom domain and returns active organizations only.
	OrganizationByDomain(ctx context.Context, domain string) (*Organization, error)
}

// SubscriptionStore loads the current subscription of an organization:
// the most recently created one with status active or trial.
// Returns ErrSubscriptionNotFound when there is none.
type SubscriptionStore interface {
	CurrentSubscription(ctx context.Context, organizationID int64) (*Subscription, error)
}

// UsageStore counts users and projects and returns the latest recorded storage figure.
type UsageStore interface {
	Usage(ctx context.Context, organizationID int64) (Usage, error)
}

// UserStore reads a user's stored organization.
type UserStore interface {
	// UserOrganizationID returns the user's current organization id.
	// Returns ErrUserNotFound if the user no longer exists.
	UserOrganizationID(ctx context.Context, userID int64) (int64, error)
}

// Store is what the tenant middleware needs to resolve and load a tenant.
type Store interface {
	OrganizationStore
	SubscriptionStore
}
