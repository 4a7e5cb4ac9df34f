package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPMetricsMiddleware records request counts and latencies per route.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		ObserveHTTPRequest(r.Method, routeLabel(r.URL.Path), strconv.Itoa(rec.status), time.Since(start))
	})
}

// routeLabel collapses profile IDs out of the path so the metric label set
// stays bounded.
func routeLabel(path string) string {
	const prefix = "/api/profiles/"
	rest, ok := strings.CutPrefix(path, prefix)
	if !ok || rest == "" || rest == "generate" {
		return path
	}
	if _, sub, found := strings.Cut(rest, "/"); found {
		return prefix + "{id}/" + sub
	}
	return prefix + "{id}"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
