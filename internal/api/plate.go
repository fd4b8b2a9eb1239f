package api

import (
	"regexp"
	"strings"
)

// platePattern accepts the old Brazilian format (ABC1234) and Mercosul (ABC1D23).
var platePattern = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z0-9][0-9]{2}$`)

// SanitizePlate drops every character that is not an ASCII letter or digit and
// uppercases the rest.
func SanitizePlate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidPlate reports whether s, once sanitized, is a well-formed plate.
func ValidPlate(s string) bool {
	return platePattern.MatchString(SanitizePlate(s))
}
