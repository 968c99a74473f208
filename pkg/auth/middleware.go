package auth

import (
	"net/http"
	"strings"
)

// TokenCookie is the cookie name checked when no Authorization header is present.
const TokenCookie = "token"

// TokenExtractorFunc extracts a raw token from the request.
type TokenExtractorFunc func(r *http.Request) (string, error)

// Middleware authenticates requests carrying a bearer token or token cookie.
// Requests without a valid token continue anonymously, so authorization is left
// to the gates behind it. A token cookie that fails verification is expired.
func Middleware(tokens *TokenService) func(http.Handler) http.Handler {
	return MiddlewareWithExtractor(tokens, DefaultTokenExtractor)
}

// MiddlewareWithExtractor is Middleware with a custom token extractor.
func MiddlewareWithExtractor(tokens *TokenService, extract TokenExtractorFunc) func(http.Handler) http.Handler {
	if tokens == nil {
		panic("auth: token service is required")
	}
	if extract == nil {
		extract = DefaultTokenExtractor
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := extract(r)
			if err != nil || raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := tokens.Verify(raw)
			if err != nil {
				if c, cerr := r.Cookie(TokenCookie); cerr == nil && c.Value == raw {
					ClearTokenCookie(w, r)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// DefaultTokenExtractor reads "Authorization: Bearer <token>" and falls back to the token cookie.
func DefaultTokenExtractor(r *http.Request) (string, error) {
	if token, err := BearerTokenExtractor(r); err == nil {
		return token, nil
	}
	cookie, err := r.Cookie(TokenCookie)
	if err != nil || cookie.Value == "" {
		return "", ErrNoToken
	}
	return cookie.Value, nil
}

// BearerTokenExtractor reads the token from the Authorization header.
func BearerTokenExtractor(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", ErrNoToken
	}
	return strings.TrimSpace(token), nil
}

// SetTokenCookie stores token in the HttpOnly token cookie.
func SetTokenCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, tokenCookie(r, token, 0))
}

// ClearTokenCookie tells the client to drop the token cookie.
func ClearTokenCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, tokenCookie(r, "", -1))
}

func tokenCookie(r *http.Request, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     TokenCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
}
