package rbac

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Authorizer answers capability checks for roles.
// Inherited capabilities are flattened once at construction, so checks are
// read-only and safe for concurrent use.
type Authorizer struct {
	granted map[string][]string
}

// NewAuthorizer loads roles from source and flattens inheritance.
// It fails on circular or excessively deep inheritance.
func NewAuthorizer(ctx context.Context, source RoleSource) (*Authorizer, error) {
	roles, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}

	granted := make(map[string][]string, len(roles))
	for name := range roles {
		perms, err := collect(name, roles, nil)
		if err != nil {
			return nil, err
		}
		slices.Sort(perms)
		granted[name] = slices.Compact(perms)
	}

	return &Authorizer{granted: granted}, nil
}

// collect gathers a role's direct and inherited capabilities.
// path holds the roles on the current inheritance chain.
func collect(name string, roles map[string]Role, path []string) ([]string, error) {
	if slices.Contains(path, name) {
		return nil, errors.Join(ErrCircularInheritance,
			fmt.Errorf("circular inheritance detected: %s -> %s", path[len(path)-1], name))
	}
	if len(path) > MaxInheritanceDepth {
		return nil, errors.Join(ErrCircularInheritance,
			fmt.Errorf("inheritance depth exceeds maximum allowed depth of %d", MaxInheritanceDepth))
	}

	role, ok := roles[name]
	if !ok {
		return nil, nil
	}

	perms := slices.Clone(role.Permissions)
	path = append(path, name)
	for _, parent := range role.Inherits {
		inherited, err := collect(parent, roles, path)
		if err != nil {
			return nil, err
		}
		perms = append(perms, inherited...)
	}
	return perms, nil
}

// Can returns nil if the role holds every listed capability.
func (a *Authorizer) Can(role string, capabilities ...string) error {
	granted, ok := a.granted[role]
	if !ok {
		return ErrInvalidRole
	}
	for _, capability := range capabilities {
		if !hasCapability(granted, capability) {
			return ErrInsufficientPermissions
		}
	}
	return nil
}

// CanAny returns nil if the role holds at least one listed capability.
func (a *Authorizer) CanAny(role string, capabilities ...string) error {
	if len(capabilities) == 0 {
		return nil
	}
	granted, ok := a.granted[role]
	if !ok {
		return ErrInvalidRole
	}
	if slices.ContainsFunc(capabilities, func(c string) bool { return hasCapability(granted, c) }) {
		return nil
	}
	return ErrInsufficientPermissions
}

// Roles returns the known role names in sorted order.
func (a *Authorizer) Roles() []string {
	names := make([]string, 0, len(a.granted))
	for name := range a.granted {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
