package core

import "time"

// App is a registered application. Tokens minted on its behalf carry
// aud = "app:<id>".
type App struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	DemoMode    bool     `json:"demo_mode"`
	DefaultRole string   `json:"default_role,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	CreatedAt   time.Time
}

// Account is a principal scoped to one app. Demo accounts are disposable
// principals minted by the demo-login flow.
type Account struct {
	ID           string `json:"id"`
	AppID        int64  `json:"app_id"`
	Email        string `json:"email"`
	Name         string `json:"name,omitempty"`
	PasswordHash *string
	Role         string `json:"role,omitempty"`
	Demo         bool   `json:"demo"`
	CreatedAt    time.Time
}

// AuthCode is a one-time exchange voucher. It is created by the interactive
// authorization step, consumed exactly once by the token endpoint, and never
// updated.
type AuthCode struct {
	Code        string
	AppID       int64
	RedirectURI string
	Scope       string
	AccountID   string
	ExpiresAt   time.Time
}

// Expired reports whether the code's expiry has passed at t.
func (c *AuthCode) Expired(t time.Time) bool {
	return t.After(c.ExpiresAt)
}

// APIKey is a non-human API client credential. The secret is stored as a
// salted argon2id hash, never in the clear.
type APIKey struct {
	ID          string
	SecretHash  string
	Description string
	Scope       string
	AccountID   string
	ExpiresAt   *time.Time
	CreatedAt   time.Time
}

// Expired reports whether an expiry is set and has passed at t. An expired
// key still resolves on lookup but grants must be refused.
func (k *APIKey) Expired(t time.Time) bool {
	return k.ExpiresAt != nil && t.After(*k.ExpiresAt)
}
