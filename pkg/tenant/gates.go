package tenant

import (
	"time"

	"github.com/dmitrymomot/studiodesk/pkg/auth"
)

// CheckStatus decides whether requests for the organization may proceed.
// Only active organizations and unexpired trials pass; unknown statuses are
// rejected as suspended.
func CheckStatus(org *Organization, now time.Time) error {
	switch org.Status {
	case StatusActive:
		return nil
	case StatusTrial:
		if org.TrialExpired(now) {
			return ErrTrialExpired
		}
		return nil
	case StatusCancelled:
		return ErrTenantCancelled
	default:
		return ErrTenantSuspended
	}
}

// CheckSubscription requires an active or trial subscription.
func CheckSubscription(sub *Subscription) error {
	if !sub.IsCurrent() {
		return ErrSubscriptionRequired
	}
	return nil
}

// CheckFeature requires a current subscription that grants feature.
func CheckFeature(tc *Context, feature string) error {
	if err := CheckSubscription(tc.Subscription); err != nil {
		return err
	}
	if !tc.HasFeature(feature) {
		return ErrFeatureUnavailable
	}
	return nil
}

// CheckLimit decides whether one more unit of res fits into the subscription's cap.
// It is a read-only pre-check: concurrent callers may both pass it.
func CheckLimit(sub *Subscription, usage Usage, res Resource) error {
	if err := CheckSubscription(sub); err != nil {
		return err
	}
	limit := sub.Cap(res)
	if limit == Unlimited {
		return nil
	}
	if usage.Of(res) >= float64(limit) {
		return limitError(res).With(limit)
	}
	return nil
}

// CheckAccess verifies that the user belongs to the tenant's organization.
func CheckAccess(tc *Context, user *auth.User) error {
	if tc == nil || user == nil {
		return ErrAuthRequired
	}
	if user.OrganizationID != tc.OrganizationID {
		return ErrOrganizationAccessDenied
	}
	return nil
}
