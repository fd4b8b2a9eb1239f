package validation

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	MaxNameLength  = 255
	MaxEmailLength = 320 // RFC 5321
	MinModelYear   = 1900
)

// ValidateName checks a user or model name. Empty is allowed.
func ValidateName(name string) error {
	if length := utf8.RuneCountInString(name); length > MaxNameLength {
		return fmt.Errorf("name exceeds maximum length of %d characters (got %d)", MaxNameLength, length)
	}
	return nil
}

// ValidateEmail checks length and format. Empty is allowed.
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	if length := utf8.RuneCountInString(email); length > MaxEmailLength {
		return fmt.Errorf("email exceeds maximum length of %d characters (got %d)", MaxEmailLength, length)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	if addr.Address != email {
		return fmt.Errorf("invalid email format: %q is not a bare address", email)
	}
	return nil
}

// ValidateModelYear accepts 0 (unset) or a year between MinModelYear and
// the year after current.
func ValidateModelYear(year, current int) error {
	if year == 0 {
		return nil
	}
	if year < MinModelYear || year > current+1 {
		return fmt.Errorf("invalid year %d: must be between %d and %d", year, MinModelYear, current+1)
	}
	return nil
}

// ParsePositiveInt parses a string as a positive integer ID.
func ParsePositiveInt(s string, fieldName string) (int, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	id64, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", fieldName, s)
	}
	if id64 <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", fieldName)
	}
	return int(id64), nil
}
