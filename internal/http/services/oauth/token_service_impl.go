package oauth

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	jwtx "github.com/dropDatabas3/tokensmith/internal/jwt"
	"github.com/dropDatabas3/tokensmith/internal/observability/logger"
	"github.com/dropDatabas3/tokensmith/internal/security/password"
	"github.com/dropDatabas3/tokensmith/internal/store/core"
	"github.com/dropDatabas3/tokensmith/internal/validation"
)

// TokenDeps contains dependencies for the token service.
type TokenDeps struct {
	Repo   core.Repository
	Issuer *jwtx.Issuer
}

type tokenService struct {
	repo   core.Repository
	issuer *jwtx.Issuer
}

// NewTokenService creates a new TokenService.
func NewTokenService(d TokenDeps) TokenService {
	return &tokenService{repo: d.Repo, issuer: d.Issuer}
}

// appClientIDRe matches end-user client ids: "app:<numeric-id>".
var appClientIDRe = regexp.MustCompile(`^app:(\d+)$`)

func parseAppClientID(clientID string) (int64, error) {
	m := appClientIDRe.FindStringSubmatch(clientID)
	if m == nil {
		return 0, fmt.Errorf("client_id %q is not app-shaped", clientID)
	}
	return strconv.ParseInt(m[1], 10, 64)
}

// sameOrigin compares scheme+host+port of two parsed URLs. A URL without a
// scheme or host counts as unparseable.
func sameOrigin(a, b *url.URL) bool {
	if a.Scheme == "" || a.Host == "" || b.Scheme == "" || b.Host == "" {
		return false
	}
	return a.Scheme == b.Scheme && a.Host == b.Host
}

// ExchangeAuthorizationCode consumes a one-time code and mints tokens for the
// account it resolves to. The code is destroyed on lookup, win or lose: a
// request that fails after the take has still consumed the code.
func (s *tokenService) ExchangeAuthorizationCode(ctx context.Context, req AuthCodeRequest) (*TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.token.authcode"))

	if req.Code == "" || req.RedirectURI == "" || req.ClientID == "" {
		return nil, ErrTokenInvalidRequest
	}

	// Origin binding: the request must come from where the redirect URI
	// points. Defends against a caller replaying a code from another origin.
	refURL, err := url.Parse(req.Referer)
	if err != nil {
		return nil, ErrTokenInvalidRequest
	}
	redirURL, err := url.Parse(req.RedirectURI)
	if err != nil {
		return nil, ErrTokenInvalidRequest
	}
	if !sameOrigin(refURL, redirURL) {
		log.Warn("referer/redirect_uri origin mismatch",
			logger.String("referer", req.Referer),
			logger.String("redirect_uri", req.RedirectURI))
		return nil, ErrTokenInvalidRequest
	}

	appID, err := parseAppClientID(req.ClientID)
	if err != nil {
		return nil, ErrTokenInvalidClient
	}

	// Atomic take: lookup and delete in one store operation. A code issued
	// for another app or redirect URI is invisible here.
	code, err := s.repo.AuthCodes().Take(ctx, req.Code, appID, req.RedirectURI)
	if err != nil {
		log.Warn("authorization code not found", logger.AppID(appID))
		return nil, ErrTokenInvalidClient
	}

	if code.Expired(time.Now()) {
		log.Warn("authorization code expired", logger.AppID(appID))
		return nil, ErrTokenInvalidGrant
	}
	if !validation.HasScope(code.Scope, req.Scope) {
		log.Warn("requested scope exceeds code grant",
			logger.Scope(req.Scope), logger.String("granted", code.Scope))
		return nil, ErrTokenInvalidScope
	}

	log.Info("authorization_code exchanged",
		logger.AppID(appID), logger.AccountID(code.AccountID))

	return s.mint(grant{
		subject:      code.AccountID,
		audience:     req.ClientID,
		scope:        req.Scope,
		issueRefresh: true,
	})
}

// ExchangeClientCredentials authenticates a machine client via HTTP Basic
// material. Unknown id and bad secret collapse into the same error so callers
// cannot enumerate client ids.
func (s *tokenService) ExchangeClientCredentials(ctx context.Context, req ClientCredentialsRequest) (*TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.token.clientcreds"))

	id, secret, err := parseBasicAuth(req.Authorization)
	if err != nil {
		return nil, ErrTokenInvalidClient
	}

	key, err := s.repo.APIKeys().GetByID(ctx, id)
	if err != nil {
		log.Warn("api key not found")
		return nil, ErrTokenInvalidClient
	}
	if !password.Verify(secret, key.SecretHash) {
		log.Warn("api key secret mismatch", logger.ClientID(id))
		return nil, ErrTokenInvalidClient
	}
	if key.Expired(time.Now()) {
		log.Warn("api key expired", logger.ClientID(id))
		return nil, ErrTokenInvalidGrant
	}
	if !validation.HasScope(key.Scope, req.Scope) {
		log.Warn("requested scope exceeds api key grant",
			logger.ClientID(id), logger.Scope(req.Scope))
		return nil, ErrTokenInvalidScope
	}

	log.Info("client_credentials token issued", logger.ClientID(id))

	// Machine sessions are short-lived: no refresh token.
	return s.mint(grant{
		subject:      key.AccountID,
		audience:     key.ID,
		scope:        req.Scope,
		issueRefresh: false,
	})
}

// ExchangeRefreshToken redeems a refresh token previously minted by this
// engine. Claims carry over unchanged; a new refresh token rolls the session
// forward.
func (s *tokenService) ExchangeRefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.token.refresh"))

	if req.RefreshToken == "" {
		return nil, ErrTokenInvalidRequest
	}

	claims, err := s.issuer.Verify(req.RefreshToken)
	if err != nil {
		// never leak which part of verification failed
		log.Warn("refresh token rejected")
		return nil, ErrTokenInvalidGrant
	}

	log.Info("refresh_token exchanged", logger.AccountID(claims.Sub))

	return s.mint(grant{
		subject:      claims.Sub,
		audience:     claims.Aud,
		scope:        claims.Scope,
		issueRefresh: true,
	})
}

// ExchangePassword resolves an account by app + email and verifies the
// password hash. No scope-subset check is applied to this grant: human
// end-users are not scope-limited the way machine clients are.
func (s *tokenService) ExchangePassword(ctx context.Context, req PasswordRequest) (*TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.token.password"))

	if req.Username == "" || req.Password == "" {
		return nil, ErrTokenInvalidRequest
	}
	appID, err := parseAppClientID(req.ClientID)
	if err != nil {
		return nil, ErrTokenInvalidClient
	}

	acct, err := s.repo.Accounts().GetByAppAndEmail(ctx, appID, req.Username)
	if err != nil {
		log.Warn("account not found", logger.AppID(appID))
		return nil, ErrTokenInvalidClient
	}
	if acct.PasswordHash == nil || !password.Verify(req.Password, *acct.PasswordHash) {
		log.Warn("password mismatch", logger.AppID(appID))
		return nil, ErrTokenInvalidClient
	}

	log.Info("password grant exchanged",
		logger.AppID(appID), logger.AccountID(acct.ID))

	return s.mint(grant{
		subject:      acct.ID,
		audience:     req.ClientID,
		scope:        req.Scope,
		issueRefresh: true,
	})
}

// ExchangeDemoLogin mints a disposable principal for apps operating in demo
// mode. A supplied member id is trusted as-is: it was previously issued by
// this same engine.
func (s *tokenService) ExchangeDemoLogin(ctx context.Context, req DemoLoginRequest) (*TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.token.demo"))

	appID, err := parseAppClientID(req.ClientID)
	if err != nil {
		return nil, ErrTokenInvalidClient
	}
	app, err := s.repo.Apps().GetByID(ctx, appID)
	if err != nil || !app.DemoMode {
		log.Warn("app missing or not in demo mode", logger.AppID(appID))
		return nil, ErrTokenInvalidClient
	}

	subject := req.MemberID
	if subject == "" {
		role, err := resolveDemoRole(app, req.Role)
		if err != nil {
			log.Warn("no demo role resolvable", logger.AppID(appID))
			return nil, ErrTokenInvalidRequest
		}

		acct := newDemoAccount(appID, role)
		if err := s.repo.Accounts().Create(ctx, acct); err != nil {
			return nil, err
		}
		subject = acct.ID

		log.Info("demo account created",
			logger.AppID(appID), logger.AccountID(acct.ID), logger.String("role", role))
	}

	return s.mint(grant{
		subject:      subject,
		audience:     req.ClientID,
		scope:        req.Scope,
		issueRefresh: true,
	})
}

// resolveDemoRole picks the role for a fresh demo principal: the requested
// role when the app declares it, else the app's default role, else the first
// declared role.
func resolveDemoRole(app *core.App, requested string) (string, error) {
	if requested != "" {
		for _, r := range app.Roles {
			if r == requested {
				return requested, nil
			}
		}
		return "", fmt.Errorf("role %q not declared by app", requested)
	}
	if app.DefaultRole != "" {
		return app.DefaultRole, nil
	}
	if len(app.Roles) > 0 {
		return app.Roles[0], nil
	}
	return "", fmt.Errorf("app declares no roles")
}

func newDemoAccount(appID int64, role string) *core.Account {
	id := uuid.NewString()
	short := strings.SplitN(id, "-", 2)[0]
	return &core.Account{
		ID:    id,
		AppID: appID,
		Email: fmt.Sprintf("demo-%s@app-%d.invalid", short, appID),
		Name:  "Demo " + short,
		Role:  role,
		Demo:  true,
	}
}

// parseBasicAuth extracts id and secret from a Basic Authorization header,
// splitting on the first colon.
func parseBasicAuth(header string) (id, secret string, err error) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", fmt.Errorf("authorization scheme is not Basic")
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return "", "", fmt.Errorf("authorization payload: %w", err)
	}
	id, secret, ok := strings.Cut(string(raw), ":")
	if !ok || id == "" {
		return "", "", fmt.Errorf("authorization payload has no id:secret pair")
	}
	return id, secret, nil
}

// mint turns a uniform grant tuple into the signed response.
func (s *tokenService) mint(g grant) (*TokenResponse, error) {
	minted, err := s.issuer.Mint(g.subject, jwtx.MintOptions{
		Audience:     g.audience,
		Scope:        g.scope,
		IssueRefresh: g.issueRefresh,
	})
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken:  minted.AccessToken,
		ExpiresIn:    minted.ExpiresIn,
		TokenType:    minted.TokenType,
		RefreshToken: minted.RefreshToken,
	}, nil
}
