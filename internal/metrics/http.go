// ABOUTME: HTTP middleware recording request counts and latency
// ABOUTME: Paths and methods outside the known sets share one label

package metrics

import (
	"net/http"
	"strconv"
	"time"
)

// otherPath labels requests for paths the gateway does not serve.
const otherPath = "other"

// otherMethod labels requests using any method the gateway does not route.
const otherMethod = "OTHER"

var knownMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodOptions: {},
}

// Middleware records HTTP request metrics. Only paths listed in routes are
// used as labels.
func (m *Metrics) Middleware(routes ...string) func(http.Handler) http.Handler {
	known := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		known[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(ww, r)

			path := r.URL.Path
			if _, ok := known[path]; !ok {
				path = otherPath
			}

			method := r.Method
			if _, ok := knownMethods[method]; !ok {
				method = otherMethod
			}

			m.httpRequests.WithLabelValues(method, path, strconv.Itoa(ww.status)).Inc()
			m.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer, which
// the event stream needs for flushing.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
