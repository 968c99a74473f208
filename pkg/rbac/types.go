package rbac

import "strings"

// MaxInheritanceDepth bounds role inheritance chains.
const MaxInheritanceDepth = 10

// Built-in roles.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleEmployee   = "employee"
)

// Capabilities checked by the back-office routes.
const (
	ProjectsRead       = "projects.read"
	ProjectsWrite      = "projects.write"
	UsersManage        = "users.manage"
	InvoicesManage     = "invoices.manage"
	ExpensesManage     = "expenses.manage"
	EmployeesManage    = "employees.manage"
	OrganizationManage = "organization.manage"
	PlatformAdmin      = "platform.admin"
)

// Role is a named set of capabilities with optional inheritance.
type Role struct {
	Permissions []string `yaml:"permissions"`
	Inherits    []string `yaml:"inherits"`
}

const (
	wildcard  = "*"
	delimiter = "."
)

// matches reports whether a granted pattern covers the capability.
// "*" covers everything and "invoices.*" covers every "invoices." capability.
func matches(capability, pattern string) bool {
	if capability == "" {
		return false
	}
	if capability == pattern || pattern == wildcard {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, wildcard); ok && strings.HasSuffix(prefix, delimiter) {
		return strings.HasPrefix(capability, prefix)
	}
	return false
}

func hasCapability(granted []string, capability string) bool {
	for _, pattern := range granted {
		if matches(capability, pattern) {
			return true
		}
	}
	return false
}
