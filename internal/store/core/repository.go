package core

import "context"

// Repository aggregates the persistent collections the token engine reads.
// The engine is stateless between requests; correctness of the single-use
// authorization code guarantee rests on the store's native atomicity, not on
// in-process locks.
type Repository interface {
	Ping(ctx context.Context) error
	Close()

	Apps() AppRepository
	Accounts() AccountRepository
	AuthCodes() AuthCodeRepository
	APIKeys() APIKeyRepository
}

type AppRepository interface {
	GetByID(ctx context.Context, id int64) (*App, error)
	Create(ctx context.Context, a *App) error
}

type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*Account, error)
	// GetByAppAndEmail matches the email case-insensitively.
	GetByAppAndEmail(ctx context.Context, appID int64, email string) (*Account, error)
	Create(ctx context.Context, a *Account) error
}

type AuthCodeRepository interface {
	Create(ctx context.Context, c *AuthCode) error

	// Take atomically finds and deletes the code matching all three of
	// (code, appID, redirectURI). When two concurrent requests present the
	// same code, at most one observes it; the other gets ErrNotFound.
	// A taken code is consumed even if the grant later fails.
	Take(ctx context.Context, code string, appID int64, redirectURI string) (*AuthCode, error)
}

type APIKeyRepository interface {
	GetByID(ctx context.Context, id string) (*APIKey, error)
	Create(ctx context.Context, k *APIKey) error
}
