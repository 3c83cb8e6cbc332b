package middleware

import (
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/util"
	"github.com/rs/zerolog"
)

type StatusRecoder struct {
	http.ResponseWriter
	status int
}

func (w *StatusRecoder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Status defaults to 200 when the handler never called WriteHeader.
func (w *StatusRecoder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *StatusRecoder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

/*
LoggerMiddleware binds a request scoped logger carrying request_id to the context,
so services can log through zerolog.Ctx, then records one line per request.
Must run after RequestIdMiddleware and AuthPayloadMiddleware.
*/
func LoggerMiddleware(logger *zerolog.Logger) func(next http.Handler) http.Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()
			reqLogger := logger.With().Str("request_id", util.GetRequestIDFromContext(ctx)).Logger()

			recoder := &StatusRecoder{ResponseWriter: w}
			next.ServeHTTP(recoder, r.WithContext(reqLogger.WithContext(ctx)))

			status := recoder.Status()
			event := reqLogger.Info()
			if status >= http.StatusInternalServerError {
				event = reqLogger.Error()
			}
			event.
				Uint("user_id", util.GetUserIDFromContext(ctx)).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Str("remote_addr", r.RemoteAddr).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Msg("request completed")
		})
	}
}
