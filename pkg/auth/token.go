package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const tokenAlgorithm = "HS256"

type tokenHeader struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// Claims is the token payload.
type Claims struct {
	Subject        string `json:"sub"`
	Email          string `json:"email"`
	Name           string `json:"name,omitempty"`
	OrganizationID int64  `json:"org,omitempty"`
	Role           string `json:"role"`
	IssuedAt       int64  `json:"iat"`
	ExpiresAt      int64  `json:"exp"`
}

// User converts claims into a request principal.
func (c Claims) User() (*User, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, errors.Join(ErrMalformedToken, fmt.Errorf("invalid subject %q", c.Subject))
	}
	return &User{
		ID:             id,
		Email:          c.Email,
		Name:           c.Name,
		OrganizationID: c.OrganizationID,
		Role:           c.Role,
	}, nil
}

// TokenService signs and verifies HS256 access tokens.
type TokenService struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenService creates a token service. A zero ttl defaults to 24 hours.
func NewTokenService(signingKey string, ttl time.Duration) (*TokenService, error) {
	if signingKey == "" {
		return nil, ErrMissingSigningKey
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{key: []byte(signingKey), ttl: ttl, now: time.Now}, nil
}

// WithClock returns a copy of the service that reads the current time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

// Issue creates a signed token for the user.
func (s *TokenService) Issue(user *User) (string, error) {
	now := s.now().UTC()
	claims := Claims{
		Subject:        strconv.FormatInt(user.ID, 10),
		Email:          user.Email,
		Name:           user.Name,
		OrganizationID: user.OrganizationID,
		Role:           user.Role,
		IssuedAt:       now.Unix(),
		ExpiresAt:      now.Add(s.ttl).Unix(),
	}

	header, err := json.Marshal(tokenHeader{Type: "JWT", Algorithm: tokenAlgorithm})
	if err != nil {
		return "", fmt.Errorf("marshal token header: %w", err)
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal token claims: %w", err)
	}

	signed := encodeSegment(header) + "." + encodeSegment(payload)
	return signed + "." + s.sign(signed), nil
}

// Verify checks the token signature and expiry and returns its user.
func (s *TokenService) Verify(token string) (*User, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrMalformedToken
	}

	signed := parts[0] + "." + parts[1]
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(s.sign(signed))) != 1 {
		return nil, ErrInvalidSignature
	}

	var header tokenHeader
	if err := decodeSegment(parts[0], &header); err != nil {
		return nil, err
	}
	if header.Algorithm != tokenAlgorithm {
		return nil, ErrUnexpectedAlg
	}

	var claims Claims
	if err := decodeSegment(parts[1], &claims); err != nil {
		return nil, err
	}
	if claims.ExpiresAt > 0 && s.now().Unix() > claims.ExpiresAt {
		return nil, ErrTokenExpired
	}

	return claims.User()
}

func (s *TokenService) sign(payload string) string {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func encodeSegment(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeSegment(seg string, v any) error {
	raw, err := base64.RawURLEncoding.DecodeString(seg)
	if err != nil {
		return errors.Join(ErrMalformedToken, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Join(ErrMalformedToken, err)
	}
	return nil
}
