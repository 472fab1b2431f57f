package providers

import (
	"net/http"
	"time"
)

// apiEndpoints bounds the endpoint label set to the availability API;
// anything else (typos, scanners) is folded into one label.
var apiEndpoints = map[string]struct{}{
	"/availability": {},
	"/coverage":     {},
	"/recommend":    {},
	"/users":        {},
}

func endpointLabel(path string) string {
	if _, ok := apiEndpoints[path]; ok {
		return path
	}
	return "other"
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func MetricsMiddleware(metrics MetricsProviderInterface, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		duration := time.Since(start)
		endpoint := endpointLabel(r.URL.Path)
		metrics.IncRequestsTotal(endpoint, sw.status)
		metrics.ObserveRequestDuration(endpoint, duration)
	})
}
