// Package normalize canonicalises free-form identifying fields so that
// records from different sources can be compared. Every function is total:
// invalid or empty input yields nil rather than an error.
package normalize

import (
	"strings"
	"unicode"

	"github.com/ajitpratap0/strata/pkg/models"
)

const (
	// CountryPrefix is prepended to every normalized phone number
	CountryPrefix = "+62"

	minPhoneDigits = 9
	maxPhoneDigits = 12
)

// Phone normalizes an Indonesian phone number to +62XXXXXXXXX.
//
// Whitespace and punctuation are removed, then one leading "+62", "62" or
// "0" is stripped. The remainder must be 9 to 12 digits.
func Phone(v interface{}) interface{} {
	if models.IsNull(v) {
		return nil
	}
	raw := strings.TrimSpace(models.Stringify(v))
	if raw == "" {
		return nil
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r == '+' || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case strings.HasPrefix(digits, "+62"):
		digits = digits[3:]
	case strings.HasPrefix(digits, "62"):
		digits = digits[2:]
	case strings.HasPrefix(digits, "0"):
		digits = digits[1:]
	}

	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return nil
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return nil
		}
	}
	return CountryPrefix + digits
}

// Email lowercases and trims an address. It requires an "@" followed later
// by a ".".
func Email(v interface{}) interface{} {
	if models.IsNull(v) {
		return nil
	}
	s := strings.ToLower(strings.TrimSpace(models.Stringify(v)))
	if s == "" {
		return nil
	}
	at := strings.Index(s, "@")
	if at < 0 || !strings.Contains(s[at+1:], ".") {
		return nil
	}
	return s
}

// Trim strips surrounding whitespace from text values. Blank text becomes nil.
func Trim(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

// Lower lowercases text values.
func Lower(v interface{}) interface{} {
	if s, ok := v.(string); ok {
		return strings.ToLower(s)
	}
	return v
}

// Upper uppercases text values.
func Upper(v interface{}) interface{} {
	if s, ok := v.(string); ok {
		return strings.ToUpper(s)
	}
	return v
}
