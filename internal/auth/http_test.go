// ABOUTME: Tests for HTTP authentication middleware
// ABOUTME: Covers the 401 body and principal propagation

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddleware_ValidToken(t *testing.T) {
	v := newTestVerifier(t, seedKey(t, "pm_valid"), nil)

	var got Principal
	var ok bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer pm_valid")
	rec := httptest.NewRecorder()

	Middleware(v)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if !ok {
		t.Fatal("expected principal in handler context")
	}
	if got.OrganizationID != "org-1" || got.UserID != "user-1" {
		t.Errorf("unexpected principal %+v", got)
	}
}

func TestMiddleware_Rejects(t *testing.T) {
	v := newTestVerifier(t, seedKey(t, "pm_valid"), nil)

	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Token pm_valid"},
		{"unknown token", "Bearer pm_nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/mcp/stream", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			Middleware(v)(handler).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON content type, got %q", ct)
			}
			if body := rec.Body.String(); body != `{"error":"Invalid or missing API key"}` {
				t.Errorf("unexpected body %q", body)
			}
		})
	}

	if called {
		t.Error("handler must not run for unauthenticated requests")
	}
}
