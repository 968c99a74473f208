package rbac

import (
	"context"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// RoleSource provides role definitions.
type RoleSource interface {
	Load(ctx context.Context) (map[string]Role, error)
}

type memorySource struct {
	roles map[string]Role
}

// NewMemorySource creates a role source backed by a copy of roles.
func NewMemorySource(roles map[string]Role) RoleSource {
	cp := make(map[string]Role, len(roles))
	for name, role := range roles {
		cp[name] = Role{
			Permissions: slices.Clone(role.Permissions),
			Inherits:    slices.Clone(role.Inherits),
		}
	}
	return &memorySource{roles: cp}
}

func (s *memorySource) Load(context.Context) (map[string]Role, error) {
	return s.roles, nil
}

// DefaultRoles returns the built-in back-office roles.
func DefaultRoles() map[string]Role {
	return map[string]Role{
		RoleEmployee: {
			Permissions: []string{ProjectsRead, ExpensesManage},
		},
		RoleManager: {
			Permissions: []string{ProjectsWrite, InvoicesManage, EmployeesManage},
			Inherits:    []string{RoleEmployee},
		},
		RoleAdmin: {
			Permissions: []string{UsersManage, OrganizationManage},
			Inherits:    []string{RoleManager},
		},
		RoleSuperAdmin: {
			Permissions: []string{wildcard},
		},
	}
}

type yamlSource struct {
	path string
}

// NewYAMLSource loads roles from a YAML file of the form:
//
//	roles:
//	  manager:
//	    permissions: [projects.write]
//	    inherits: [employee]
func NewYAMLSource(path string) RoleSource {
	return &yamlSource{path: path}
}

func (s *yamlSource) Load(context.Context) (map[string]Role, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("rbac: read roles file: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes role definitions.
func ParseYAML(data []byte) (map[string]Role, error) {
	var doc struct {
		Roles map[string]Role `yaml:"roles"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("rbac: parse roles: %w", err)
	}
	return doc.Roles, nil
}
