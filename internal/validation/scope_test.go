package validation

import "testing"

func TestHasScope_Subset(t *testing.T) {
	cases := []struct {
		granted, requested string
		want               bool
	}{
		{"openid email", "openid", true},
		{"openid email", "email openid", true},
		{"openid email", "openid email profile", false},
		{"openid", "email", false},
		{"", "", true},
		{"", "openid", false},
		{"openid email", "", true},
		{"read", "read read", true}, // duplicates collapse to set membership
		{"read write admin", "write", true},
	}
	for _, c := range cases {
		if got := HasScope(c.granted, c.requested); got != c.want {
			t.Fatalf("HasScope(%q, %q) = %v, want %v", c.granted, c.requested, got, c.want)
		}
	}
}

func TestHasScope_WhitespaceTolerant(t *testing.T) {
	if !HasScope("  openid \t email\n", " email ") {
		t.Fatal("expected tolerant splitting of whitespace")
	}
}

func TestValidScopeName_Valid(t *testing.T) {
	valids := []string{
		"a",
		"ab",
		"openid",
		"profile:read",
		"email:read:e2e123",
		"a_b-c.d:scope2",
	}
	for _, v := range valids {
		if !ValidScopeName(v) {
			t.Fatalf("expected valid: %q", v)
		}
	}
}

func TestValidScopeName_Invalid(t *testing.T) {
	invalids := []string{
		"",
		":lead",
		"trail:",
		"bad space",
		"UPPER",
		"semicolon;hack",
	}
	for _, v := range invalids {
		if ValidScopeName(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}
