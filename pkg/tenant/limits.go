package tenant

import (
	"fmt"
	"net/http"
)

// RequireLimit rejects requests that would add one unit of res beyond the
// tenant subscription's cap. Requests without a tenant context pass through.
//
// It panics if res is not a known resource or usage is nil.
func RequireLimit(res Resource, usage UsageStore, opts ...Option) func(http.Handler) http.Handler {
	if !res.Valid() {
		panic(fmt.Sprintf("tenant: unknown resource %q", res))
	}
	if usage == nil {
		panic("tenant: usage store is required")
	}
	cfg := newConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc, ok := FromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			if err := CheckSubscription(tc.Subscription); err != nil {
				cfg.fail(w, r, err)
				return
			}

			current, err := usage.Usage(r.Context(), tc.OrganizationID)
			if err != nil {
				cfg.fail(w, r, ErrLimitsCheck.Wrap(err))
				return
			}

			if err := CheckLimit(tc.Subscription, current, res); err != nil {
				cfg.fail(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireFeature rejects requests whose tenant subscription does not grant
// feature. Requests without a tenant context pass through.
func RequireFeature(feature string, opts ...Option) func(http.Handler) http.Handler {
	if feature == "" {
		panic("tenant: feature is required")
	}
	cfg := newConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tc, ok := FromContext(r.Context()); ok {
				if err := CheckFeature(tc, feature); err != nil {
					cfg.fail(w, r, err)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
