package jwt

import (
	"testing"
	"time"
)

func testIssuer() *Issuer {
	i := NewIssuer("https://auth.test", []byte("test-secret"))
	return i
}

func TestMint_AccessClaims(t *testing.T) {
	i := testIssuer()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	i.Now = func() time.Time { return fixed }

	m, err := i.Mint("acct-1", MintOptions{Audience: "app:42", Scope: "openid email"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if m.TokenType != "bearer" {
		t.Fatalf("token_type = %q, want bearer", m.TokenType)
	}
	if m.ExpiresIn != 3600 {
		t.Fatalf("expires_in = %d, want 3600", m.ExpiresIn)
	}
	if m.RefreshToken != "" {
		t.Fatal("refresh token minted without IssueRefresh")
	}

	c, err := i.Verify(m.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if c.Sub != "acct-1" || c.Aud != "app:42" || c.Iss != "https://auth.test" {
		t.Fatalf("unexpected claims: %+v", c)
	}
	if c.Scope != "openid email" {
		t.Fatalf("scope = %q", c.Scope)
	}
	if c.Iat != fixed.Unix() {
		t.Fatalf("iat = %d, want %d", c.Iat, fixed.Unix())
	}
	if c.Exp != fixed.Add(time.Hour).Unix() {
		t.Fatalf("exp = %d, want iat+1h", c.Exp)
	}
}

func TestMint_DefaultAudienceIsIssuer(t *testing.T) {
	i := testIssuer()
	m, err := i.Mint("acct-1", MintOptions{})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	c, err := i.Verify(m.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if c.Aud != "https://auth.test" {
		t.Fatalf("aud = %q, want issuer", c.Aud)
	}
}

func TestMint_RefreshTokenLongLived(t *testing.T) {
	i := testIssuer()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	i.Now = func() time.Time { return fixed }

	m, err := i.Mint("acct-1", MintOptions{Audience: "app:7", IssueRefresh: true, Scope: "read"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if m.RefreshToken == "" {
		t.Fatal("expected refresh token")
	}

	c, err := i.Verify(m.RefreshToken)
	if err != nil {
		t.Fatalf("refresh token must verify with the same secret+issuer: %v", err)
	}
	if c.Exp != fixed.Add(30*24*time.Hour).Unix() {
		t.Fatalf("refresh exp = %d, want iat+30d", c.Exp)
	}
	if c.Sub != "acct-1" || c.Aud != "app:7" || c.Scope != "read" {
		t.Fatalf("refresh claims must mirror access claims: %+v", c)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	a := testIssuer()
	b := NewIssuer("https://auth.test", []byte("other-secret"))

	m, err := a.Mint("acct-1", MintOptions{})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := b.Verify(m.AccessToken); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestVerify_WrongIssuer(t *testing.T) {
	a := testIssuer()
	b := NewIssuer("https://other.test", []byte("test-secret"))

	m, err := a.Mint("acct-1", MintOptions{})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := b.Verify(m.AccessToken); err == nil {
		t.Fatal("expected verification failure with wrong issuer")
	}
}

func TestVerify_Expired(t *testing.T) {
	i := testIssuer()
	i.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	m, err := i.Mint("acct-1", MintOptions{})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	i.Now = nil
	if _, err := i.Verify(m.AccessToken); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestVerify_Garbage(t *testing.T) {
	i := testIssuer()
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := i.Verify(tok); err == nil {
			t.Fatalf("expected failure for %q", tok)
		}
	}
}
