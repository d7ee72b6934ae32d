package oauth

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svc "github.com/dropDatabas3/tokensmith/internal/http/services/oauth"
	jwtx "github.com/dropDatabas3/tokensmith/internal/jwt"
)

func TestIntrospect_ActiveAndInactive(t *testing.T) {
	issuer := jwtx.NewIssuer("https://auth.test", []byte("test-secret"))
	c := NewIntrospectController(svc.NewIntrospectService(issuer))

	minted, err := issuer.Mint("acct-1", jwtx.MintOptions{Audience: "app:1", Scope: "openid"})
	require.NoError(t, err)

	post := func(token string) *httptest.ResponseRecorder {
		form := url.Values{"token": {token}}
		req := httptest.NewRequest("POST", "/oauth/introspect", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		c.Introspect(rec, req)
		return rec
	}

	rec := post(minted.AccessToken)
	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"active":true`)
	assert.Contains(t, body, `"sub":"acct-1"`)
	assert.Contains(t, body, `"scope":"openid"`)

	// garbage stays a 200, only active flips
	rec = post("not-a-token")
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "{\"active\":false}\n", rec.Body.String())

	rec = post("")
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"active":false`)
}
