// Package oauth contiene los services del token endpoint.
package oauth

import (
	"context"
	"errors"
)

// TokenService verifies grant material and mints signed tokens. One method
// per grant type; every method either returns a full token response or one of
// the taxonomy errors below.
type TokenService interface {
	// ExchangeAuthorizationCode handles grant_type=authorization_code.
	ExchangeAuthorizationCode(ctx context.Context, req AuthCodeRequest) (*TokenResponse, error)

	// ExchangeClientCredentials handles grant_type=client_credentials (M2M).
	ExchangeClientCredentials(ctx context.Context, req ClientCredentialsRequest) (*TokenResponse, error)

	// ExchangeRefreshToken handles grant_type=refresh_token (rolling refresh).
	ExchangeRefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error)

	// ExchangePassword handles grant_type=password (resource owner).
	ExchangePassword(ctx context.Context, req PasswordRequest) (*TokenResponse, error)

	// ExchangeDemoLogin handles grant_type=demo, minting a disposable
	// principal on first use.
	ExchangeDemoLogin(ctx context.Context, req DemoLoginRequest) (*TokenResponse, error)
}

// AuthCodeRequest contains parameters for the authorization_code grant.
type AuthCodeRequest struct {
	ClientID    string // "app:<numeric-id>"
	Code        string
	RedirectURI string
	Scope       string
	Referer     string // raw Referer header, checked against RedirectURI's origin
}

// ClientCredentialsRequest contains parameters for the client_credentials grant.
type ClientCredentialsRequest struct {
	Authorization string // raw Authorization header, expected "Basic base64(id:secret)"
	Scope         string
}

// RefreshTokenRequest contains parameters for the refresh_token grant.
type RefreshTokenRequest struct {
	RefreshToken string
}

// PasswordRequest contains parameters for the password grant.
type PasswordRequest struct {
	ClientID string
	Username string
	Password string
	Scope    string
}

// DemoLoginRequest contains parameters for the demo grant.
type DemoLoginRequest struct {
	ClientID string
	MemberID string // existing demo principal, trusted when supplied
	Role     string
	Scope    string
}

// TokenResponse is the standard OAuth2 token response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Token endpoint errors: the closed taxonomy. Callers branch on these
// programmatically; anything outside the set propagates as a server error.
var (
	ErrTokenInvalidRequest       = errors.New("invalid_request")
	ErrTokenInvalidClient        = errors.New("invalid_client")
	ErrTokenInvalidGrant         = errors.New("invalid_grant")
	ErrTokenInvalidScope         = errors.New("invalid_scope")
	ErrTokenUnsupportedGrantType = errors.New("unsupported_grant_type")
)

// grant is the uniform result every handler reduces to before minting.
type grant struct {
	subject      string
	audience     string
	scope        string
	issueRefresh bool
}
