package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/apperr"
	"github.com/rs/zerolog"
)

// RecoverMiddleware turns a panic into a 500 and logs it with the stack.
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				zerolog.Ctx(r.Context()).Error().
					Str("panic", fmt.Sprintf("%v", rec)).
					Bytes("stack", debug.Stack()).
					Msg("recovered from panic")
				response.ErrorJSON(w, int(apperr.InternalErrorCode), apperr.ErrStrMap[apperr.InternalErrorCode], nil)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
