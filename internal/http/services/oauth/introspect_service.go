package oauth

import (
	"context"

	jwtx "github.com/dropDatabas3/tokensmith/internal/jwt"
	"github.com/dropDatabas3/tokensmith/internal/observability/logger"
)

// IntrospectService reports whether a token was minted by this engine and, if
// so, echoes its claims. There is no revocation list: a token is active iff
// its signature, issuer and expiry still hold.
type IntrospectService interface {
	Introspect(ctx context.Context, token string) *IntrospectResponse
}

// IntrospectResponse follows the RFC 7662 shape. Inactive responses carry
// only the active flag: no detail about why verification failed.
type IntrospectResponse struct {
	Active bool   `json:"active"`
	Sub    string `json:"sub,omitempty"`
	Aud    string `json:"aud,omitempty"`
	Iss    string `json:"iss,omitempty"`
	Scope  string `json:"scope,omitempty"`
	Iat    int64  `json:"iat,omitempty"`
	Exp    int64  `json:"exp,omitempty"`
}

type introspectService struct {
	issuer *jwtx.Issuer
}

// NewIntrospectService creates a new IntrospectService.
func NewIntrospectService(issuer *jwtx.Issuer) IntrospectService {
	return &introspectService{issuer: issuer}
}

func (s *introspectService) Introspect(ctx context.Context, token string) *IntrospectResponse {
	if token == "" {
		return &IntrospectResponse{Active: false}
	}
	claims, err := s.issuer.Verify(token)
	if err != nil {
		logger.From(ctx).Debug("introspected token inactive")
		return &IntrospectResponse{Active: false}
	}
	return &IntrospectResponse{
		Active: true,
		Sub:    claims.Sub,
		Aud:    claims.Aud,
		Iss:    claims.Iss,
		Scope:  claims.Scope,
		Iat:    claims.Iat,
		Exp:    claims.Exp,
	}
}
