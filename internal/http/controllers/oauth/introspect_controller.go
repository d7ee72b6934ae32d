package oauth

import (
	"encoding/json"
	"net/http"
	"strings"

	svc "github.com/dropDatabas3/tokensmith/internal/http/services/oauth"
	"github.com/dropDatabas3/tokensmith/internal/observability/logger"
	"go.uber.org/zap"
)

// IntrospectController handles POST /oauth/introspect.
type IntrospectController struct {
	service svc.IntrospectService
}

// NewIntrospectController creates a new introspect controller.
func NewIntrospectController(service svc.IntrospectService) *IntrospectController {
	return &IntrospectController{service: service}
}

// Introspect reports whether a presented token is active (RFC 7662 shape).
// Always returns 200 OK; verification failures surface only as active=false.
func (c *IntrospectController) Introspect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("oauth.introspect"))

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_request"})
		return
	}

	if err := r.ParseForm(); err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_request"})
		return
	}

	token := strings.TrimSpace(r.PostForm.Get("token"))
	resp := c.service.Introspect(ctx, token)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)

	log.Debug("introspection completed", zap.Bool("active", resp.Active))
}
