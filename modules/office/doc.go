// Package office is the back-office HTTP API: login, plan catalog, tenant
// introspection and the tenant-gated project, user and storage endpoints.
//
//	r := office.Router(office.RouterOptions{
//	    Store:      st,
//	    Tokens:     tokens,
//	    Authorizer: authz,
//	    Logger:     log,
//	})
package office
