package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/studiodesk/pkg/logger"
)

// Credentials is a stored user together with its password hash.
type Credentials struct {
	User         User
	PasswordHash []byte
}

// CredentialStore loads credentials for password logins.
type CredentialStore interface {
	// CredentialsByEmail returns ErrUserNotFound when no user has the email.
	CredentialsByEmail(ctx context.Context, email string) (*Credentials, error)
}

// Authenticator verifies email and password pairs.
type Authenticator struct {
	store  CredentialStore
	logger *slog.Logger
}

// NewAuthenticator creates a password authenticator.
func NewAuthenticator(store CredentialStore, logger *slog.Logger) *Authenticator {
	if store == nil {
		panic("auth: credential store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{store: store, logger: logger}
}

// Authenticate returns the user when the password matches.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	creds, err := a.store.CredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Equalize timing with the wrong-password path.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(creds.PasswordHash, []byte(password)); err != nil {
		a.logger.InfoContext(ctx, "failed login attempt", logger.UserID(creds.User.ID))
		return nil, ErrInvalidCredentials
	}

	user := creds.User
	return &user, nil
}

// HashPassword hashes a password with bcrypt's default cost.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("studiodesk-dummy"), bcrypt.DefaultCost)
