package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
)

const maxSessionIDLen = 100

// SessionIDMiddleware puts the guest X-Session-Id into the context, overly long values are ignored.
func SessionIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimSpace(r.Header.Get(string(constants.SessionIDHeaderKey)))
		if sessionID == "" || len(sessionID) > maxSessionIDLen {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), constants.SessionIDKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
