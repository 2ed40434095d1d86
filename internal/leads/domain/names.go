package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"papex_backend/platform/phone"
)

// Capitalize upper-cases the first letter and lower-cases the rest,
// so "jEAN-pierre" becomes "Jean-pierre".
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToTitle(r)) + strings.ToLower(s[size:])
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizePhone formats a French or international number to E.164 when it
// parses, otherwise returns it trimmed.
func NormalizePhone(s string) string {
	return phone.NormalizeE164(s)
}
