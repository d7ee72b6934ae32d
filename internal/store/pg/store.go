package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/tokensmith/internal/store/core"
)

// Store implementa core.Repository sobre un pool pgx.
type Store struct{ pool *pgxpool.Pool }

// Config tunes the underlying pool.
type Config struct {
	MaxOpenConns    int
	MinIdleConns    int
	ConnMaxLifetime string
}

func New(ctx context.Context, dsn string, cfg Config) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MinIdleConns > 0 {
		pcfg.MinConns = int32(cfg.MinIdleConns)
	}
	if cfg.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
			pcfg.MaxConnLifetime = d
			pcfg.MaxConnIdleTime = d
		}
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 10
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Migrate applies the given schema statements (see migrations/postgres).
func (s *Store) Migrate(ctx context.Context, schema string) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

func (s *Store) Apps() core.AppRepository         { return &appRepo{pool: s.pool} }
func (s *Store) Accounts() core.AccountRepository { return &accountRepo{pool: s.pool} }
func (s *Store) AuthCodes() core.AuthCodeRepository {
	return &authCodeRepo{pool: s.pool}
}
func (s *Store) APIKeys() core.APIKeyRepository { return &apiKeyRepo{pool: s.pool} }

// ---- apps ----

type appRepo struct{ pool *pgxpool.Pool }

func (r *appRepo) GetByID(ctx context.Context, id int64) (*core.App, error) {
	a := &core.App{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, demo_mode, COALESCE(default_role, ''), COALESCE(roles, '{}'), created_at
		FROM apps WHERE id = $1`, id).
		Scan(&a.ID, &a.Name, &a.DemoMode, &a.DefaultRole, &a.Roles, &a.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (r *appRepo) Create(ctx context.Context, a *core.App) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO apps (name, demo_mode, default_role, roles)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		RETURNING id, created_at`,
		a.Name, a.DemoMode, a.DefaultRole, a.Roles).
		Scan(&a.ID, &a.CreatedAt)
	return mapErr(err)
}

// ---- accounts ----

type accountRepo struct{ pool *pgxpool.Pool }

const accountCols = `id, app_id, email, COALESCE(name, ''), password_hash, COALESCE(role, ''), demo, created_at`

func (r *accountRepo) GetByID(ctx context.Context, id string) (*core.Account, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE id = $1`, id))
}

func (r *accountRepo) GetByAppAndEmail(ctx context.Context, appID int64, email string) (*core.Account, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE app_id = $1 AND LOWER(email) = LOWER($2)`,
		appID, strings.TrimSpace(email)))
}

func (r *accountRepo) Create(ctx context.Context, a *core.Account) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, app_id, email, name, password_hash, role, demo)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7)
		RETURNING created_at`,
		a.ID, a.AppID, a.Email, a.Name, a.PasswordHash, a.Role, a.Demo).
		Scan(&a.CreatedAt)
	return mapErr(err)
}

func (r *accountRepo) scanOne(row pgx.Row) (*core.Account, error) {
	a := &core.Account{}
	err := row.Scan(&a.ID, &a.AppID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.Demo, &a.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

// ---- auth codes ----

type authCodeRepo struct{ pool *pgxpool.Pool }

func (r *authCodeRepo) Create(ctx context.Context, c *core.AuthCode) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO auth_codes (code, app_id, redirect_uri, scope, account_id, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.Code, c.AppID, c.RedirectURI, c.Scope, c.AccountID, c.ExpiresAt)
	return mapErr(err)
}

// Take consume el código en una sola sentencia: DELETE ... RETURNING es
// atómico a nivel de fila, por lo que dos requests concurrentes con el mismo
// código ven exactamente un hit y un ErrNotFound.
func (r *authCodeRepo) Take(ctx context.Context, code string, appID int64, redirectURI string) (*core.AuthCode, error) {
	c := &core.AuthCode{}
	err := r.pool.QueryRow(ctx, `
		DELETE FROM auth_codes
		WHERE code = $1 AND app_id = $2 AND redirect_uri = $3
		RETURNING code, app_id, redirect_uri, COALESCE(scope, ''), account_id, expires_at`,
		code, appID, redirectURI).
		Scan(&c.Code, &c.AppID, &c.RedirectURI, &c.Scope, &c.AccountID, &c.ExpiresAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

// ---- api keys ----

type apiKeyRepo struct{ pool *pgxpool.Pool }

func (r *apiKeyRepo) GetByID(ctx context.Context, id string) (*core.APIKey, error) {
	k := &core.APIKey{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, secret_hash, COALESCE(description, ''), COALESCE(scope, ''), account_id, expires_at, created_at
		FROM api_keys WHERE id = $1`, id).
		Scan(&k.ID, &k.SecretHash, &k.Description, &k.Scope, &k.AccountID, &k.ExpiresAt, &k.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return k, nil
}

func (r *apiKeyRepo) Create(ctx context.Context, k *core.APIKey) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO api_keys (id, secret_hash, description, scope, account_id, expires_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)
		RETURNING created_at`,
		k.ID, k.SecretHash, k.Description, k.Scope, k.AccountID, k.ExpiresAt).
		Scan(&k.CreatedAt)
	return mapErr(err)
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}
