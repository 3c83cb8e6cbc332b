package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/rs/zerolog"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports 503 as soon as one dependency does not answer its ping.
type HealthHandler struct {
	deps    map[string]Pinger
	timeout time.Duration
}

func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps, timeout: 2 * time.Second}
}

// @Summary health check
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=map[string]string} "every dependency answered"
// @Failure 503 {object} response.ResponseError "a dependency is down"
// @Router /healthz [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.deps))
	for name := range h.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	status := map[string]string{"status": "ok"}
	for _, name := range names {
		if err := h.deps[name].Ping(ctx); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("dependency", name).Msg("health check failed")
			response.ErrorJSON(w, http.StatusServiceUnavailable, name+" unavailable", nil)
			return
		}
		status[name] = "ok"
	}
	response.SuccessJSON(w, status)
}
