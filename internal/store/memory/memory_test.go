package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dropDatabas3/tokensmith/internal/store/core"
)

func TestAuthCodes_TakeIsSingleUse(t *testing.T) {
	s := New()
	ctx := context.Background()

	code := &core.AuthCode{
		Code:        "abc",
		AppID:       42,
		RedirectURI: "https://x.test/cb",
		Scope:       "openid email",
		AccountID:   "acct-1",
		ExpiresAt:   time.Now().Add(time.Minute),
	}
	if err := s.AuthCodes().Create(ctx, code); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.AuthCodes().Take(ctx, "abc", 42, "https://x.test/cb")
	if err != nil {
		t.Fatalf("first take: %v", err)
	}
	if got.AccountID != "acct-1" {
		t.Fatalf("unexpected account: %s", got.AccountID)
	}

	if _, err := s.AuthCodes().Take(ctx, "abc", 42, "https://x.test/cb"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second take must be ErrNotFound, got %v", err)
	}
}

func TestAuthCodes_TakeMatchesAllThreeFields(t *testing.T) {
	s := New()
	ctx := context.Background()

	code := &core.AuthCode{
		Code:        "abc",
		AppID:       42,
		RedirectURI: "https://x.test/cb",
		AccountID:   "acct-1",
		ExpiresAt:   time.Now().Add(time.Minute),
	}
	if err := s.AuthCodes().Create(ctx, code); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.AuthCodes().Take(ctx, "abc", 99, "https://x.test/cb"); !errors.Is(err, core.ErrNotFound) {
		t.Fatal("code bound to another app must not be takeable")
	}
	if _, err := s.AuthCodes().Take(ctx, "abc", 42, "https://evil.test/cb"); !errors.Is(err, core.ErrNotFound) {
		t.Fatal("code bound to another redirect uri must not be takeable")
	}

	// still present for the correct tuple
	if _, err := s.AuthCodes().Take(ctx, "abc", 42, "https://x.test/cb"); err != nil {
		t.Fatalf("correct tuple must still succeed: %v", err)
	}
}

func TestAuthCodes_ConcurrentTake(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.AuthCodes().Create(ctx, &core.AuthCode{
		Code:        "race",
		AppID:       1,
		RedirectURI: "https://x.test/cb",
		AccountID:   "acct-1",
		ExpiresAt:   time.Now().Add(time.Minute),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	const n = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.AuthCodes().Take(ctx, "race", 1, "https://x.test/cb"); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	var count int
	for range wins {
		count++
	}
	if count != 1 {
		t.Fatalf("exactly one concurrent take must win, got %d", count)
	}
}

func TestAccounts_EmailLookupCaseInsensitive(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Accounts().Create(ctx, &core.Account{
		ID:    "acct-1",
		AppID: 7,
		Email: "User@Example.COM",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	a, err := s.Accounts().GetByAppAndEmail(ctx, 7, "user@example.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if a.ID != "acct-1" {
		t.Fatalf("unexpected account: %s", a.ID)
	}

	if _, err := s.Accounts().GetByAppAndEmail(ctx, 8, "user@example.com"); !errors.Is(err, core.ErrNotFound) {
		t.Fatal("email match must be scoped to the app")
	}
}

func TestAPIKeys_DuplicateCreateConflicts(t *testing.T) {
	s := New()
	ctx := context.Background()

	k := &core.APIKey{ID: "c1", SecretHash: "x", AccountID: "acct-1"}
	if err := s.APIKeys().Create(ctx, k); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.APIKeys().Create(ctx, k); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
