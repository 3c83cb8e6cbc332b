package middleware

import (
	"net"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/infra/ratelimit"
	"github.com/RoyceAzure/lab/storefront/internal/util"
)

// RateLimitMiddleware keys authenticated callers by user id and anonymous ones by client ip.
func RateLimitMiddleware(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(r.Context(), rateLimitKey(r)) {
				w.Header().Set("Retry-After", "1")
				response.ErrorJSON(w, int(apperr.TooManyRequestsCode), "Request was throttled.", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request) string {
	if id := util.GetUserIDFromContext(r.Context()); id != 0 {
		return "user:" + strconv.FormatUint(uint64(id), 10)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
