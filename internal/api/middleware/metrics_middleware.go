package middleware

import (
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/infra/metrics"
	"github.com/go-chi/chi/v5"
)

// MetricsMiddleware labels by chi route pattern, never by raw path, to keep label cardinality bounded.
func MetricsMiddleware(recorder metrics.IRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recoder := &StatusRecoder{ResponseWriter: w}
			next.ServeHTTP(recoder, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			recorder.ObserveHTTP(r.Method, route, recoder.Status(), time.Since(start))
		})
	}
}
