package tenant

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/studiodesk/pkg/apierr"
)

// Store errors.
var (
	ErrOrganizationNotFound = errors.New("tenant: organization not found")
	ErrSubscriptionNotFound = errors.New("tenant: subscription not found")
	ErrUserNotFound         = errors.New("tenant: user not found")
	ErrNoTenantInContext    = errors.New("tenant: no tenant in context")
)

// Resolution failures.
var (
	ErrTenantRequired = apierr.New(http.StatusBadRequest, "TENANT_REQUIRED", "Organization identifier is required")
	ErrTenantNotFound = apierr.New(http.StatusNotFound, "TENANT_NOT_FOUND", "Organization not found")
)

// Lifecycle failures.
var (
	ErrTenantSuspended = apierr.New(http.StatusForbidden, "TENANT_SUSPENDED", "Organization account is suspended")
	ErrTenantCancelled = apierr.New(http.StatusForbidden, "TENANT_CANCELLED", "Organization account is cancelled")
	ErrTrialExpired    = apierr.New(http.StatusPaymentRequired, "TRIAL_EXPIRED", "Trial period has expired")
)

// Quota failures. Limit errors take the cap as their only message argument.
var (
	ErrSubscriptionRequired = apierr.New(http.StatusPaymentRequired, "SUBSCRIPTION_REQUIRED", "Active subscription required")
	ErrFeatureUnavailable   = apierr.New(http.StatusForbidden, "FEATURE_NOT_AVAILABLE", "Feature is not included in your plan")
	ErrUserLimitReached     = apierr.New(http.StatusPaymentRequired, "USER_LIMIT_REACHED", "User limit reached (%d users)")
	ErrProjectLimitReached  = apierr.New(http.StatusPaymentRequired, "PROJECT_LIMIT_REACHED", "Project limit reached (%d projects)")
	ErrStorageLimitReached  = apierr.New(http.StatusPaymentRequired, "STORAGE_LIMIT_REACHED", "Storage limit reached (%d GB)")
)

// Authorization failures.
var (
	ErrAuthRequired             = apierr.New(http.StatusUnauthorized, "AUTH_REQUIRED", "Authentication required")
	ErrOrganizationAccessDenied = apierr.New(http.StatusForbidden, "ORGANIZATION_ACCESS_DENIED", "Access denied for this organization")
)

// Infrastructure failures, one code per middleware.
var (
	ErrTenantLookup = apierr.New(http.StatusInternalServerError, "TENANT_ERROR", "Failed to resolve organization")
	ErrLimitsCheck  = apierr.New(http.StatusInternalServerError, "LIMITS_CHECK_ERROR", "Failed to check plan limits")
	ErrAccessCheck  = apierr.New(http.StatusInternalServerError, "ACCESS_CHECK_ERROR", "Failed to check organization access")
)

func limitError(res Resource) *apierr.Error {
	switch res {
	case ResourceUsers:
		return ErrUserLimitReached
	case ResourceProjects:
		return ErrProjectLimitReached
	default:
		return ErrStorageLimitReached
	}
}
