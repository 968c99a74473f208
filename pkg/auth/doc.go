// Package auth authenticates studiodesk users and attaches them to the request
// context for downstream middlewares.
//
// Tokens are compact HS256 JWTs carrying the user id, email, stored
// organization id and role. The Middleware accepts them from the
// Authorization header or the "token" cookie; requests without a token pass
// through anonymously so that public endpoints keep working.
//
//	tokens, _ := auth.NewTokenService(secret, 24*time.Hour)
//	r.Use(auth.Middleware(tokens))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		user, ok := auth.UserFromContext(r.Context())
//		...
//	}
//
// Password logins are handled by Authenticator, which verifies bcrypt hashes
// loaded through a CredentialStore.
package auth
