// Package rbac maps back-office roles to capabilities.
//
// Roles grant dot-separated capabilities such as "invoices.manage" and may
// inherit from other roles. A trailing wildcard ("invoices.*") or a bare "*"
// grants a whole namespace or everything.
//
//	authz, err := rbac.NewAuthorizer(ctx, rbac.NewMemorySource(rbac.DefaultRoles()))
//	if err != nil {
//	    return err
//	}
//	r.With(rbac.Require(authz, rbac.UsersManage)).Post("/api/users", createUser)
//
// Role definitions can also be loaded from YAML with NewYAMLSource.
package rbac
