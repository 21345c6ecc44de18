// Package sanitize validates candidate domains before they may appear
// in a subprocess argument list.
package sanitize

import (
	"errors"
	"strings"
)

// Rejection causes returned by Domain.
var (
	ErrEmpty        = errors.New("empty domain")
	ErrBadCharacter = errors.New("domain contains disallowed character")
)

// Domain trims and lowercases raw and verifies every remaining
// character is in [a-z0-9.-]. This is an allow-list, not a denylist:
// the returned string carries no shell metacharacters and no path
// separators, so it is safe as a literal argument to an external
// command. Anything else is rejected with a typed cause so callers can
// drop the single entry and keep going.
func Domain(raw string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(raw))
	if d == "" {
		return "", ErrEmpty
	}
	for _, r := range d {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '-':
		default:
			return "", ErrBadCharacter
		}
	}
	return d, nil
}
