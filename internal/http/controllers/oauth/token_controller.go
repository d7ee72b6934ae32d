// Package oauth - TokenController handles POST /oauth/token
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/tokensmith/internal/metrics"
	"github.com/dropDatabas3/tokensmith/internal/observability/logger"
	"github.com/dropDatabas3/tokensmith/internal/validation"

	svc "github.com/dropDatabas3/tokensmith/internal/http/services/oauth"
)

// TokenController dispatches the single token endpoint to the per-grant
// service methods. All protocol errors serialize as {"error": "<kind>"} with
// status 400; only unexpected failures surface as server_error / 500.
type TokenController struct {
	service svc.TokenService
}

// NewTokenController creates the controller.
func NewTokenController(s svc.TokenService) *TokenController {
	return &TokenController{service: s}
}

// Token handles POST /oauth/token
// Implements: authorization_code, client_credentials, refresh_token,
// password and demo grants.
func (c *TokenController) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("oauth.token"))
	start := time.Now()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		c.writeOAuthError(w, http.StatusMethodNotAllowed, "invalid_request")
		return
	}

	// The endpoint accepts only form bodies.
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "application/x-www-form-urlencoded" {
		log.Warn("unsupported content type", logger.String("content_type", r.Header.Get("Content-Type")))
		c.writeOAuthError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	// Limit body size (64KB for OAuth forms)
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	if err := r.ParseForm(); err != nil {
		log.Warn("failed to parse form", logger.Err(err))
		c.writeOAuthError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	grantType := strings.TrimSpace(r.PostForm.Get("grant_type"))
	log = log.With(logger.GrantType(grantType))

	var resp *svc.TokenResponse

	switch grantType {
	case "authorization_code":
		resp, err = c.handleAuthorizationCode(ctx, r)

	case "client_credentials":
		resp, err = c.handleClientCredentials(ctx, r)

	case "refresh_token":
		resp, err = c.handleRefreshToken(ctx, r)

	case "password":
		resp, err = c.handlePassword(ctx, r)

	case "demo":
		resp, err = c.handleDemoLogin(ctx, r)

	default:
		metrics.TokenGrants.WithLabelValues(grantType, "unsupported_grant_type").Inc()
		c.writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type")
		return
	}

	metrics.TokenIssueLatency.Observe(float64(time.Since(start).Milliseconds()))

	if err != nil {
		metrics.TokenGrants.WithLabelValues(grantType, errorKind(err)).Inc()
		c.handleServiceError(w, err, ctx)
		return
	}

	metrics.TokenGrants.WithLabelValues(grantType, "ok").Inc()
	c.writeTokenResponse(w, resp)
}

// scopeParam normaliza el parámetro scope y rechaza nombres malformados
// antes de llegar al service.
func scopeParam(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	for _, tok := range strings.Fields(s) {
		if !validation.ValidScopeName(tok) {
			return "", svc.ErrTokenInvalidRequest
		}
	}
	return s, nil
}

func (c *TokenController) handleAuthorizationCode(ctx context.Context, r *http.Request) (*svc.TokenResponse, error) {
	params, err := validation.Params(r.PostForm, "client_id", "code", "redirect_uri", "scope")
	if err != nil {
		return nil, svc.ErrTokenInvalidRequest
	}
	scope, err := scopeParam(params["scope"])
	if err != nil {
		return nil, err
	}
	req := svc.AuthCodeRequest{
		ClientID:    strings.TrimSpace(params["client_id"]),
		Code:        strings.TrimSpace(params["code"]),
		RedirectURI: strings.TrimSpace(params["redirect_uri"]),
		Scope:       scope,
		Referer:     r.Header.Get("Referer"),
	}
	return c.service.ExchangeAuthorizationCode(ctx, req)
}

func (c *TokenController) handleClientCredentials(ctx context.Context, r *http.Request) (*svc.TokenResponse, error) {
	params, err := validation.Params(r.PostForm, "scope")
	if err != nil {
		return nil, svc.ErrTokenInvalidRequest
	}
	scope, err := scopeParam(params["scope"])
	if err != nil {
		return nil, err
	}
	req := svc.ClientCredentialsRequest{
		Authorization: r.Header.Get("Authorization"),
		Scope:         scope,
	}
	return c.service.ExchangeClientCredentials(ctx, req)
}

func (c *TokenController) handleRefreshToken(ctx context.Context, r *http.Request) (*svc.TokenResponse, error) {
	params, err := validation.Params(r.PostForm, "refresh_token")
	if err != nil {
		return nil, svc.ErrTokenInvalidRequest
	}
	req := svc.RefreshTokenRequest{
		RefreshToken: strings.TrimSpace(params["refresh_token"]),
	}
	return c.service.ExchangeRefreshToken(ctx, req)
}

func (c *TokenController) handlePassword(ctx context.Context, r *http.Request) (*svc.TokenResponse, error) {
	params, err := validation.Params(r.PostForm, "client_id", "username", "password", "scope")
	if err != nil {
		return nil, svc.ErrTokenInvalidRequest
	}
	scope, err := scopeParam(params["scope"])
	if err != nil {
		return nil, err
	}
	req := svc.PasswordRequest{
		ClientID: strings.TrimSpace(params["client_id"]),
		Username: strings.TrimSpace(params["username"]),
		Password: params["password"], // passwords keep their whitespace
		Scope:    scope,
	}
	return c.service.ExchangePassword(ctx, req)
}

func (c *TokenController) handleDemoLogin(ctx context.Context, r *http.Request) (*svc.TokenResponse, error) {
	params, err := validation.Params(r.PostForm, "client_id", "member_id", "role", "scope")
	if err != nil {
		return nil, svc.ErrTokenInvalidRequest
	}
	scope, err := scopeParam(params["scope"])
	if err != nil {
		return nil, err
	}
	req := svc.DemoLoginRequest{
		ClientID: strings.TrimSpace(params["client_id"]),
		MemberID: strings.TrimSpace(params["member_id"]),
		Role:     strings.TrimSpace(params["role"]),
		Scope:    scope,
	}
	return c.service.ExchangeDemoLogin(ctx, req)
}

// errorKind maps a service error to its wire name, for metrics labels and for
// the response body.
func errorKind(err error) string {
	switch {
	case errors.Is(err, svc.ErrTokenInvalidRequest):
		return "invalid_request"
	case errors.Is(err, svc.ErrTokenInvalidClient):
		return "invalid_client"
	case errors.Is(err, svc.ErrTokenInvalidGrant):
		return "invalid_grant"
	case errors.Is(err, svc.ErrTokenInvalidScope):
		return "invalid_scope"
	case errors.Is(err, svc.ErrTokenUnsupportedGrantType):
		return "unsupported_grant_type"
	default:
		return "server_error"
	}
}

func (c *TokenController) handleServiceError(w http.ResponseWriter, err error, ctx context.Context) {
	kind := errorKind(err)
	if kind == "server_error" {
		logger.From(ctx).Error("token endpoint error", logger.Err(err))
		c.writeOAuthError(w, http.StatusInternalServerError, kind)
		return
	}
	// every taxonomy error is a flat 400
	c.writeOAuthError(w, http.StatusBadRequest, kind)
}

func (c *TokenController) writeOAuthError(w http.ResponseWriter, status int, errorCode string) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": errorCode})
}

func (c *TokenController) writeTokenResponse(w http.ResponseWriter, resp *svc.TokenResponse) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
