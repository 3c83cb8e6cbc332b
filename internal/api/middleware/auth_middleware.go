package middleware

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/util"
)

// AuthMiddleware requires AuthPayloadMiddleware to have found a valid access token.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if util.GetTokenPayloadFromContext(r.Context()) == nil {
			response.ErrorJSON(w, int(apperr.UnauthenticatedCode), "Authentication credentials were not provided.", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
