package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Issuer signs and verifies the engine's bearer tokens with a single shared
// secret. Tokens are stateless: nothing is persisted, a token is invalidated
// only by secret rotation or natural expiry.
type Issuer struct {
	Iss        string
	Secret     []byte
	AccessTTL  time.Duration // default TTL for access tokens (1h)
	RefreshTTL time.Duration // TTL for refresh tokens (30 days)

	// Now is an injectable clock. Nil means time.Now.
	Now func() time.Time
}

// NewIssuer builds an Issuer with the default TTLs.
func NewIssuer(iss string, secret []byte) *Issuer {
	return &Issuer{
		Iss:        iss,
		Secret:     secret,
		AccessTTL:  time.Hour,
		RefreshTTL: 30 * 24 * time.Hour,
	}
}

// MintOptions controls a single mint call.
type MintOptions struct {
	// Audience defaults to the issuer itself when empty (platform-wide session).
	Audience string
	// ExpiresIn defaults to the issuer's AccessTTL when zero.
	ExpiresIn time.Duration
	// IssueRefresh also mints a long-lived refresh token with the same claim
	// shape. Refresh tokens verify against the same secret and issuer so they
	// can be redeemed later.
	IssueRefresh bool
	// Scope is carried verbatim in the "scope" claim when non-empty.
	Scope string
}

// Minted is the wire-shaped result of a mint call.
type Minted struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Claims is the canonical claim set every token this engine signs carries.
type Claims struct {
	Aud   string
	Iat   int64
	Exp   int64
	Iss   string
	Scope string
	Sub   string
}

var (
	ErrTokenInvalid = errors.New("token invalid")
)

// Mint produces a signed access token and, when requested, a refresh token.
// Pure function of its inputs, the current time and the signing secret.
func (i *Issuer) Mint(sub string, opts MintOptions) (*Minted, error) {
	now := time.Now
	if i.Now != nil {
		now = i.Now
	}
	iat := now().UTC()

	aud := opts.Audience
	if aud == "" {
		aud = i.Iss
	}
	expiresIn := opts.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = i.AccessTTL
	}

	access, err := i.sign(sub, aud, opts.Scope, iat, iat.Add(expiresIn))
	if err != nil {
		return nil, err
	}

	out := &Minted{
		AccessToken: access,
		ExpiresIn:   int64(expiresIn.Seconds()),
		TokenType:   "bearer",
	}

	if opts.IssueRefresh {
		refresh, err := i.sign(sub, aud, opts.Scope, iat, iat.Add(i.RefreshTTL))
		if err != nil {
			return nil, err
		}
		out.RefreshToken = refresh
	}
	return out, nil
}

// Verify parses a token, checks the HS256 signature and the issuer, and
// returns its claims. Every failure collapses into ErrTokenInvalid so the
// caller cannot distinguish which part failed.
func (i *Issuer) Verify(token string) (*Claims, error) {
	parsed, err := jwtv5.Parse(token,
		func(t *jwtv5.Token) (any, error) {
			if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
				return nil, ErrTokenInvalid
			}
			return i.Secret, nil
		},
		jwtv5.WithIssuer(i.Iss),
		jwtv5.WithValidMethods([]string{"HS256"}),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	mc, ok := parsed.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	c := &Claims{}
	c.Sub, _ = mc["sub"].(string)
	c.Aud, _ = mc["aud"].(string)
	c.Iss, _ = mc["iss"].(string)
	c.Scope, _ = mc["scope"].(string)
	if v, ok := mc["iat"].(float64); ok {
		c.Iat = int64(v)
	}
	if v, ok := mc["exp"].(float64); ok {
		c.Exp = int64(v)
	}
	if c.Sub == "" {
		return nil, ErrTokenInvalid
	}
	return c, nil
}

func (i *Issuer) sign(sub, aud, scope string, iat, exp time.Time) (string, error) {
	claims := jwtv5.MapClaims{
		"aud": aud,
		"iat": iat.Unix(),
		"exp": exp.Unix(),
		"iss": i.Iss,
		"sub": sub,
	}
	if scope != "" {
		claims["scope"] = scope
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"
	return tk.SignedString(i.Secret)
}
