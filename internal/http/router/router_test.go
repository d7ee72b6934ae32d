package router

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	healthctrl "github.com/dropDatabas3/tokensmith/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/tokensmith/internal/http/controllers/oauth"
	svc "github.com/dropDatabas3/tokensmith/internal/http/services/oauth"
	jwtx "github.com/dropDatabas3/tokensmith/internal/jwt"
	"github.com/dropDatabas3/tokensmith/internal/rate"
	"github.com/dropDatabas3/tokensmith/internal/store/memory"
)

func newHandler(t *testing.T, limiter rate.Limiter) *httptest.Server {
	t.Helper()
	repo := memory.New()
	issuer := jwtx.NewIssuer("https://auth.test", []byte("test-secret"))
	services := svc.NewServices(svc.Deps{Repo: repo, Issuer: issuer})

	h := New(Deps{
		OAuth:       oauthctrl.NewControllers(services),
		Health:      healthctrl.NewHealthController(repo),
		RateLimiter: limiter,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter_Readyz(t *testing.T) {
	srv := newHandler(t, nil)

	resp, err := srv.Client().Get(srv.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRouter_TokenEndpointWired(t *testing.T) {
	srv := newHandler(t, nil)

	resp, err := srv.Client().PostForm(srv.URL+"/oauth/token", url.Values{
		"grant_type": {"carrier_pigeon"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}

func TestRouter_TokenRateLimited(t *testing.T) {
	srv := newHandler(t, rate.NewMemoryLimiter(1, time.Hour))

	post := func() int {
		resp, err := srv.Client().Post(srv.URL+"/oauth/token",
			"application/x-www-form-urlencoded",
			strings.NewReader("grant_type=refresh_token&refresh_token=x"))
		require.NoError(t, err)
		defer resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, 400, post()) // consumed the window's single slot
	assert.Equal(t, 429, post())
}

func TestRouter_MetricsExposed(t *testing.T) {
	srv := newHandler(t, nil)

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
}
