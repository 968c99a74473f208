package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/studiodesk/pkg/auth"
)

type credentialStore map[string]*auth.Credentials

func (s credentialStore) CredentialsByEmail(_ context.Context, email string) (*auth.Credentials, error) {
	if email == "broken@acme.test" {
		return nil, errors.New("db down")
	}
	creds, ok := s[email]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return creds, nil
}

func TestAuthenticator(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)

	store := credentialStore{
		"lena@acme.test": {
			User:         auth.User{ID: 1, Email: "lena@acme.test", OrganizationID: 42, Role: "admin"},
			PasswordHash: hash,
		},
	}
	authenticator := auth.NewAuthenticator(store, nil)
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()

		user, err := authenticator.Authenticate(ctx, "  Lena@Acme.test ", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, int64(42), user.OrganizationID)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		_, err := authenticator.Authenticate(ctx, "lena@acme.test", "battery staple")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()

		_, err := authenticator.Authenticate(ctx, "nobody@acme.test", "correct horse")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("store failure is not masked", func(t *testing.T) {
		t.Parallel()

		_, err := authenticator.Authenticate(ctx, "broken@acme.test", "x")
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}
