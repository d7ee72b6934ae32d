package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dropDatabas3/tokensmith/internal/store/core"
)

// Store is an in-memory core.Repository for development and tests.
// The auth-code take happens under a single lock so the single-use guarantee
// matches the DELETE..RETURNING semantics of the postgres adapter.
type Store struct {
	mu        sync.Mutex
	nextAppID int64
	apps      map[int64]*core.App
	accounts  map[string]*core.Account
	codes     map[string]*core.AuthCode
	keys      map[string]*core.APIKey
}

func New() *Store {
	return &Store{
		nextAppID: 1,
		apps:      make(map[int64]*core.App),
		accounts:  make(map[string]*core.Account),
		codes:     make(map[string]*core.AuthCode),
		keys:      make(map[string]*core.APIKey),
	}
}

func (s *Store) Ping(ctx context.Context) error { return nil }
func (s *Store) Close()                         {}

func (s *Store) Apps() core.AppRepository         { return (*appRepo)(s) }
func (s *Store) Accounts() core.AccountRepository { return (*accountRepo)(s) }
func (s *Store) AuthCodes() core.AuthCodeRepository {
	return (*authCodeRepo)(s)
}
func (s *Store) APIKeys() core.APIKeyRepository { return (*apiKeyRepo)(s) }

type appRepo Store

func (r *appRepo) GetByID(ctx context.Context, id int64) (*core.App, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *appRepo) Create(ctx context.Context, a *core.App) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == 0 {
		a.ID = r.nextAppID
		r.nextAppID++
	} else if _, exists := r.apps[a.ID]; exists {
		return core.ErrConflict
	} else if a.ID >= r.nextAppID {
		r.nextAppID = a.ID + 1
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	cp := *a
	r.apps[a.ID] = &cp
	return nil
}

type accountRepo Store

func (r *accountRepo) GetByID(ctx context.Context, id string) (*core.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *accountRepo) GetByAppAndEmail(ctx context.Context, appID int64, email string) (*core.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := strings.ToLower(strings.TrimSpace(email))
	for _, a := range r.accounts {
		if a.AppID == appID && strings.ToLower(a.Email) == want {
			cp := *a
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (r *accountRepo) Create(ctx context.Context, a *core.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[a.ID]; exists {
		return core.ErrConflict
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

type authCodeRepo Store

func (r *authCodeRepo) Create(ctx context.Context, c *core.AuthCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.codes[c.Code]; exists {
		return core.ErrConflict
	}
	cp := *c
	r.codes[c.Code] = &cp
	return nil
}

func (r *authCodeRepo) Take(ctx context.Context, code string, appID int64, redirectURI string) (*core.AuthCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[code]
	if !ok || c.AppID != appID || c.RedirectURI != redirectURI {
		return nil, core.ErrNotFound
	}
	delete(r.codes, code)
	cp := *c
	return &cp, nil
}

type apiKeyRepo Store

func (r *apiKeyRepo) GetByID(ctx context.Context, id string) (*core.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *k
	return &cp, nil
}

func (r *apiKeyRepo) Create(ctx context.Context, k *core.APIKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.keys[k.ID]; exists {
		return core.ErrConflict
	}
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now().UTC()
	}
	cp := *k
	r.keys[k.ID] = &cp
	return nil
}
