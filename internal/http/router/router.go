// Package router contains the route aggregator.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	healthctrl "github.com/dropDatabas3/tokensmith/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/tokensmith/internal/http/controllers/oauth"
	mw "github.com/dropDatabas3/tokensmith/internal/http/middlewares"
	"github.com/dropDatabas3/tokensmith/internal/rate"
)

// Deps contains all dependencies for the router.
type Deps struct {
	OAuth  *oauthctrl.Controllers
	Health *healthctrl.HealthController

	// RateLimiter protege /oauth/token. Nil desactiva el rate limiting.
	RateLimiter rate.Limiter
}

// New builds the HTTP handler tree with the middleware chains applied.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	tokenChain := func(hf http.HandlerFunc) http.Handler {
		return mw.ChainFunc(hf,
			mw.WithRecover(),
			mw.WithRequestID(),
			mw.WithLogging(),
			mw.WithRateLimit(mw.RateLimitConfig{Limiter: deps.RateLimiter}),
			mw.WithNoStore(),
		)
	}

	baseChain := func(hf http.HandlerFunc) http.Handler {
		return mw.ChainFunc(hf,
			mw.WithRecover(),
			mw.WithRequestID(),
			mw.WithLogging(),
		)
	}

	r.Method(http.MethodPost, "/oauth/token", tokenChain(deps.OAuth.Token.Token))
	r.Method(http.MethodPost, "/oauth/introspect", tokenChain(deps.OAuth.Introspect.Introspect))

	// /readyz es público, sin logging pesado ni rate limiting.
	r.Method(http.MethodGet, "/readyz", mw.ChainFunc(deps.Health.Readyz,
		mw.WithRecover(),
		mw.WithRequestID(),
	))

	r.Method(http.MethodGet, "/metrics", baseChain(promhttp.Handler().ServeHTTP))

	return r
}
