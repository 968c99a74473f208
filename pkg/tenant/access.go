package tenant

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/studiodesk/pkg/auth"
)

// RequireOrganizationAccess rejects users that do not belong to the resolved
// organization. With WithUserStore the user's organization is re-read from the
// store rather than taken from the token.
func RequireOrganizationAccess(opts ...Option) func(http.Handler) http.Handler {
	cfg := newConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			tc, _ := FromContext(ctx)
			user, _ := auth.UserFromContext(ctx)

			if tc != nil && user != nil && cfg.users != nil {
				orgID, err := cfg.users.UserOrganizationID(ctx, user.ID)
				switch {
				case err == nil:
					stored := *user
					stored.OrganizationID = orgID
					user = &stored
				case errors.Is(err, ErrUserNotFound):
					cfg.fail(w, r, ErrOrganizationAccessDenied)
					return
				default:
					cfg.fail(w, r, ErrAccessCheck.Wrap(err))
					return
				}
			}

			if err := CheckAccess(tc, user); err != nil {
				cfg.fail(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
