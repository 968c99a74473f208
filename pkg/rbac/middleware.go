package rbac

import (
	"net/http"

	"github.com/dmitrymomot/studiodesk/pkg/apierr"
	"github.com/dmitrymomot/studiodesk/pkg/auth"
	"github.com/dmitrymomot/studiodesk/pkg/tenant"
)

// Require rejects requests whose user role lacks any of the capabilities.
// Anonymous requests get AUTH_REQUIRED.
func Require(authorizer *Authorizer, capabilities ...string) func(http.Handler) http.Handler {
	return RequireWithHandler(authorizer, apierr.Write, capabilities...)
}

// RequireWithHandler is Require with a custom error handler.
func RequireWithHandler(authorizer *Authorizer, handler apierr.HandlerFunc, capabilities ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok {
				handler(w, r, tenant.ErrAuthRequired)
				return
			}
			if err := authorizer.Can(user.Role, capabilities...); err != nil {
				handler(w, r, ErrForbidden.Wrap(err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
