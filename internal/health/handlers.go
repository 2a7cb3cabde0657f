package health

import (
	"context"
	"net/http"
	"time"

	"github.com/noah-isme/backend-kasir/internal/common"
)

// Checker probes one dependency.
type Checker func(ctx context.Context) error

// Handler answers liveness and readiness probes.
type Handler struct {
	Checks  map[string]Checker
	Timeout time.Duration
}

func (h Handler) Live(w http.ResponseWriter, r *http.Request) {
	common.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready runs every dependency check and reports per dependency status. Any
// failing check turns the response into a 503.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.Checks))
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	body := map[string]any{"status": "ok", "deps": deps}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	common.JSON(w, status, body)
}
