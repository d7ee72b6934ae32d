package validation

import (
	"regexp"
	"strings"
)

// Scope name rules:
// - Lowercase only.
// - Start and end with [a-z0-9].
// - Middle chars may include [a-z0-9:_.-].
// - Length 1..64.
// - Excludes semicolon and whitespace explicitly.
//
// Examples valid: openid, profile:read, email:read:e2e123, a, a_b-c.d:scope2
// Examples invalid: ;hack, BAD, bad space, :leader, trailer:, "", 65+ chars.
var scopeNameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9:_\.-]{0,62}[a-z0-9])?$`)

// ValidScopeName returns true if the provided scope name matches the allowed pattern.
func ValidScopeName(name string) bool {
	return scopeNameRe.MatchString(name)
}

// HasScope reports whether requested is a subset of granted.
//
// Both strings are whitespace-delimited sets of scope tokens. An empty
// requested set is trivially satisfied; an empty granted set only satisfies
// an empty requested set.
func HasScope(granted, requested string) bool {
	req := strings.Fields(requested)
	if len(req) == 0 {
		return true
	}
	have := make(map[string]struct{})
	for _, s := range strings.Fields(granted) {
		have[s] = struct{}{}
	}
	for _, s := range req {
		if _, ok := have[s]; !ok {
			return false
		}
	}
	return true
}
