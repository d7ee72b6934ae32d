// Package health contiene el controller para health checks.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dropDatabas3/tokensmith/internal/observability/logger"
	"github.com/dropDatabas3/tokensmith/internal/store/core"
)

// HealthController maneja GET /readyz.
type HealthController struct {
	repo core.Repository
}

// NewHealthController crea un nuevo controller de health check.
func NewHealthController(repo core.Repository) *HealthController {
	return &HealthController{repo: repo}
}

type readyzResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// Readyz maneja GET /readyz. Responde 200 cuando el store contesta el ping,
// 503 en caso contrario.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("health.readyz"))

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	resp := readyzResponse{Status: "ready", Store: "ok"}
	status := http.StatusOK
	if err := c.repo.Ping(pingCtx); err != nil {
		log.Warn("store ping failed", logger.Err(err))
		resp = readyzResponse{Status: "unavailable", Store: "down"}
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
