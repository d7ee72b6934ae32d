// Package oauth contiene los controllers del token endpoint.
package oauth

import svc "github.com/dropDatabas3/tokensmith/internal/http/services/oauth"

// Controllers agrupa los controllers del dominio OAuth.
type Controllers struct {
	Token      *TokenController
	Introspect *IntrospectController
}

// NewControllers crea el agregador de controllers OAuth.
func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		Token:      NewTokenController(s.Token),
		Introspect: NewIntrospectController(s.Introspect),
	}
}
