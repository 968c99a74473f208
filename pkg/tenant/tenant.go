package tenant

import "time"

// OrganizationStatus is the lifecycle state of an organization.
type OrganizationStatus string

const (
	StatusActive    OrganizationStatus = "active"
	StatusTrial     OrganizationStatus = "trial"
	StatusSuspended OrganizationStatus = "suspended"
	StatusCancelled OrganizationStatus = "cancelled"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s OrganizationStatus) Valid() bool {
	switch s {
	case StatusActive, StatusTrial, StatusSuspended, StatusCancelled:
		return true
	}
	return false
}

// Organization is a tenant. It is owned by the signup flow and read-only here.
type Organization struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	Domain      string             `json:"domain,omitempty"`
	Status      OrganizationStatus `json:"status"`
	TrialEndsAt *time.Time         `json:"trialEndsAt,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// TrialExpired reports whether the trial ended strictly before now.
// Organizations without a trial end date never expire.
func (o *Organization) TrialExpired(now time.Time) bool {
	return o.Status == StatusTrial && o.TrialEndsAt != nil && o.TrialEndsAt.Before(now)
}

// SubscriptionStatus is the billing state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionTrial     SubscriptionStatus = "trial"
	SubscriptionPastDue   SubscriptionStatus = "past_due"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// Unlimited disables a plan cap.
const Unlimited int64 = -1

// Subscription binds an organization to a plan.
// Caps are copied from the plan when the subscription is loaded.
type Subscription struct {
	ID             int64              `json:"id"`
	OrganizationID int64              `json:"organizationId"`
	PlanID         string             `json:"planId"`
	PlanName       string             `json:"planName"`
	Status         SubscriptionStatus `json:"status"`
	Features       []string           `json:"features"`
	MaxUsers       int64              `json:"maxUsers"`
	MaxProjects    int64              `json:"maxProjects"`
	MaxStorageGB   int64              `json:"maxStorageGb"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// IsCurrent reports whether the subscription can be the organization's current one.
func (s *Subscription) IsCurrent() bool {
	return s != nil && (s.Status == SubscriptionActive || s.Status == SubscriptionTrial)
}

// Cap returns the subscription's cap for a resource.
func (s *Subscription) Cap(res Resource) int64 {
	switch res {
	case ResourceUsers:
		return s.MaxUsers
	case ResourceProjects:
		return s.MaxProjects
	case ResourceStorage:
		return s.MaxStorageGB
	}
	return 0
}

// Plan is an entry of the public plan catalog.
type Plan struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Features     []string `json:"features"`
	MaxUsers     int64    `json:"maxUsers"`
	MaxProjects  int64    `json:"maxProjects"`
	MaxStorageGB int64    `json:"maxStorageGb"`
	PriceCents   int64    `json:"priceCents"`
	Public       bool     `json:"public"`
}

// Resource is a countable tenant resource guarded by a plan cap.
type Resource string

const (
	ResourceUsers    Resource = "users"
	ResourceProjects Resource = "projects"
	ResourceStorage  Resource = "storage" // measured in GB
)

// Valid reports whether the resource is known.
func (r Resource) Valid() bool {
	switch r {
	case ResourceUsers, ResourceProjects, ResourceStorage:
		return true
	}
	return false
}

// Usage holds current consumption for an organization.
type Usage struct {
	Users     int64   `json:"users"`
	Projects  int64   `json:"projects"`
	StorageGB float64 `json:"storageGb"`
}

// Of returns the usage figure for a resource.
func (u Usage) Of(res Resource) float64 {
	switch res {
	case ResourceUsers:
		return float64(u.Users)
	case ResourceProjects:
		return float64(u.Projects)
	case ResourceStorage:
		return u.StorageGB
	}
	return 0
}
