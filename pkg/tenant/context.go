package tenant

import (
	"context"
	"log/slog"
	"slices"

	"github.com/dmitrymomot/studiodesk/pkg/auth"
	"github.com/dmitrymomot/studiodesk/pkg/logger"
)

// Context is the request-scoped tenant view handed to route handlers.
// It is built once per request and must not be modified.
type Context struct {
	OrganizationID   int64         `json:"organizationId"`
	OrganizationSlug string        `json:"organizationSlug"`
	Subscription     *Subscription `json:"subscription"`
	User             *auth.User    `json:"user"`
	Features         []string      `json:"features"`
}

// HasFeature reports whether the tenant's subscription grants a feature.
func (c *Context) HasFeature(feature string) bool {
	return c != nil && slices.Contains(c.Features, feature)
}

type contextKey struct{}

// WithContext attaches a tenant context to ctx.
func WithContext(ctx context.Context, tc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext returns the tenant context, if the request was resolved to one.
func FromContext(ctx context.Context) (*Context, bool) {
	tc, ok := ctx.Value(contextKey{}).(*Context)
	if !ok || tc == nil {
		return nil, false
	}
	return tc, true
}

// OrganizationIDFromContext returns the resolved organization id.
func OrganizationIDFromContext(ctx context.Context) (int64, bool) {
	tc, ok := FromContext(ctx)
	if !ok {
		return 0, false
	}
	return tc.OrganizationID, true
}

// MustFromContext returns the tenant context or panics.
// Use only behind a middleware configured with WithRequired(true).
func MustFromContext(ctx context.Context) *Context {
	tc, ok := FromContext(ctx)
	if !ok {
		panic(ErrNoTenantInContext)
	}
	return tc
}

// LoggerExtractor returns a logger context extractor adding the organization id.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := OrganizationIDFromContext(ctx); ok {
			return logger.OrganizationID(id), true
		}
		return slog.Attr{}, false
	}
}
