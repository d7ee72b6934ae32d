package oauth

import (
	jwtx "github.com/dropDatabas3/tokensmith/internal/jwt"
	"github.com/dropDatabas3/tokensmith/internal/store/core"
)

// Deps contiene las dependencias para crear los services OAuth.
type Deps struct {
	Repo   core.Repository
	Issuer *jwtx.Issuer
}

// Services agrupa los services del dominio OAuth.
type Services struct {
	Token      TokenService
	Introspect IntrospectService
}

// NewServices crea el agregador de services OAuth.
func NewServices(d Deps) Services {
	return Services{
		Token: NewTokenService(TokenDeps{
			Repo:   d.Repo,
			Issuer: d.Issuer,
		}),
		Introspect: NewIntrospectService(d.Issuer),
	}
}
