package validation

import (
	"fmt"
	"net/url"
)

// Params flattens a parsed form body into a scalar map, enforcing an
// allow-list of parameter names for the current grant type.
//
// Two shapes are rejected outright:
//   - a parameter name outside the allow-list (smuggling an alternate field
//     through later logic)
//   - a parameter that appears more than once (parameter pollution: only the
//     first value would be read downstream, the duplicate could confuse
//     intermediaries)
//
// grant_type itself is always tolerated since the dispatcher consumed it
// before delegating.
func Params(form url.Values, allowed ...string) (map[string]string, error) {
	ok := make(map[string]struct{}, len(allowed)+1)
	ok["grant_type"] = struct{}{}
	for _, name := range allowed {
		ok[name] = struct{}{}
	}

	out := make(map[string]string, len(form))
	for name, vals := range form {
		if _, known := ok[name]; !known {
			return nil, fmt.Errorf("unexpected parameter %q", name)
		}
		if len(vals) > 1 {
			return nil, fmt.Errorf("repeated parameter %q", name)
		}
		if len(vals) == 1 {
			out[name] = vals[0]
		}
	}
	return out, nil
}
