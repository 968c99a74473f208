package rbac

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/studiodesk/pkg/apierr"
)

var (
	// ErrInvalidRole is returned when a role does not exist.
	ErrInvalidRole = errors.New("rbac: invalid role")

	// ErrInsufficientPermissions is returned when a role lacks a capability.
	ErrInsufficientPermissions = errors.New("rbac: insufficient permissions")

	// ErrCircularInheritance is returned when roles inherit from each other in a loop.
	ErrCircularInheritance = errors.New("rbac: circular inheritance")
)

// ErrForbidden is the API error for denied capability checks.
var ErrForbidden = apierr.New(http.StatusForbidden, "INSUFFICIENT_PERMISSIONS", "Insufficient permissions")
