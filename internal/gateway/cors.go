// ABOUTME: Cross-origin handling for browser-based MCP clients
// ABOUTME: Preflights pass through so the MCP server answers them with "ok"

package gateway

import (
	"io"
	"net/http"

	"github.com/rs/cors"
)

var corsAllowedHeaders = []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"}

// withCORS adds CORS support to the gateway handler. OPTIONS from an origin
// outside allowedOrigins still gets 200 "ok", but without any CORS headers,
// so the MCP server's permissive fallback never applies to it.
func withCORS(allowedOrigins []string, h http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:     allowedOrigins,
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:     corsAllowedHeaders,
		OptionsPassthrough: true,
	})

	return c.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions && r.Header.Get("Origin") != "" && !c.OriginAllowed(r) {
			w.WriteHeader(http.StatusOK)
			_, _ = io.WriteString(w, "ok")
			return
		}
		h.ServeHTTP(w, r)
	}))
}
