package handlers

import (
	"context"
	"net/http"
	"time"

	"sweetmap/middleware"
)

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	catalog Catalog
	checks  map[string]HealthCheck
}

func NewHealthHandler(catalog Catalog, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{catalog: catalog, checks: checks}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	body := map[string]any{
		"status": "ok",
		"ready":  h.catalog.Ready(),
		"checks": results,
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	middleware.WriteJSON(w, status, body)
}
