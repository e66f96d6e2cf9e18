// Package auth authenticates external integrations by API key.
//
// # Tokens
//
// Tokens are opaque strings of the form pm_<48 hex chars>. Only the lowercase
// hex SHA-256 digest is persisted, alongside the first eight characters for
// display:
//
//	token, _ := auth.GenerateToken()
//	hash := auth.HashToken(token)
//
// KeyService issues, revokes, and lists keys. Issue returns the plaintext
// exactly once.
//
// # Verification
//
// Verifier.Authenticate accepts an Authorization header value of the form
// "Bearer <token>", hashes the token, and looks up a non-revoked key. Any
// failure yields ErrUnauthenticated. On success it returns the key's user and
// organization and updates last_used_at on a background goroutine that is
// detached from the request and bounded by a timeout. Close waits for those
// updates to finish.
//
// # HTTP
//
// Middleware wraps a handler so it only runs for authenticated requests; the
// Principal is available via FromContext. Failures get:
//
//	401 {"error":"Invalid or missing API key"}
package auth
