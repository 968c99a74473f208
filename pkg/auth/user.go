package auth

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/studiodesk/pkg/logger"
)

// User is the authenticated principal attached to a request.
type User struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name,omitempty"`
	OrganizationID int64  `json:"organizationId,omitempty"` // 0 when the user has no home organization
	Role           string `json:"role"`
}

// HasOrganization reports whether the user has a stored organization.
func (u *User) HasOrganization() bool {
	return u != nil && u.OrganizationID > 0
}

type userCtxKey struct{}

// WithUser stores the user in the context.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userCtxKey{}).(*User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// LoggerExtractor returns a logger context extractor adding the user id.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if user, ok := UserFromContext(ctx); ok {
			return logger.UserID(user.ID), true
		}
		return slog.Attr{}, false
	}
}
