// ABOUTME: HTTP authentication middleware for API key bearer tokens
// ABOUTME: Rejects with a fixed 401 JSON body and attaches the Principal on success

package auth

import (
	"net/http"
)

// unauthorizedBody is the exact response for any authentication failure.
const unauthorizedBody = `{"error":"Invalid or missing API key"}`

// WriteUnauthorized writes the standard 401 response.
func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(unauthorizedBody))
}

// Middleware authenticates each request and stores the Principal in its context.
func Middleware(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := v.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				WriteUnauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
