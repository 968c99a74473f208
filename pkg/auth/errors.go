package auth

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/studiodesk/pkg/apierr"
)

var (
	ErrMissingSigningKey = errors.New("auth: missing signing key")
	ErrMalformedToken    = errors.New("auth: malformed token")
	ErrInvalidSignature  = errors.New("auth: invalid token signature")
	ErrUnexpectedAlg     = errors.New("auth: unexpected signing algorithm")
	ErrTokenExpired      = errors.New("auth: token is expired")
	ErrNoToken           = errors.New("auth: no token in request")
	ErrUserNotFound      = errors.New("auth: user not found")
)

// API errors returned to clients.
var (
	ErrInvalidCredentials = apierr.New(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
)
