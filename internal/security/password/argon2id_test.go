package password

import (
	"strings"
	"testing"
)

// Small params keep the tests fast; production uses Default.
var fast = Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func TestHashVerify_RoundTrip(t *testing.T) {
	phc, err := Hash(fast, "hunter2!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(phc, "$argon2id$v=19$") {
		t.Fatalf("unexpected PHC prefix: %s", phc)
	}
	if !Verify("hunter2!", phc) {
		t.Fatal("expected match")
	}
	if Verify("hunter3!", phc) {
		t.Fatal("expected mismatch")
	}
}

func TestHash_RejectsEmpty(t *testing.T) {
	if _, err := Hash(fast, ""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerify_MalformedPHC(t *testing.T) {
	for _, phc := range []string{
		"",
		"plaintext",
		"$argon2id$v=18$m=8192,t=1,p=1$AAAA$BBBB",
		"$argon2id$v=19$m=oops$AAAA$BBBB",
		"$argon2id$v=19$m=8192,t=1,p=1$!badb64$BBBB",
	} {
		if Verify("whatever", phc) {
			t.Fatalf("malformed PHC must not verify: %q", phc)
		}
	}
}
