package sms

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength is the size of a single GSM 7-bit message.
const MaxLength = 160

var typographic = strings.NewReplacer(
	"«", `"`, "»", `"`,
	"“", `"`, "”", `"`, "„", `"`,
	"‘", "'", "’", "'",
	"–", "-", "—", "-",
	"€", "EUR",
	"œ", "oe", "Œ", "OE",
	"æ", "ae", "Æ", "AE",
)

// Normalize reduces text to plain ASCII so it fits the GSM alphabet:
// typographic signs are substituted, accents stripped and anything else dropped.
func Normalize(text string) string {
	t := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
	out, _, err := transform.String(t, typographic.Replace(text))
	if err != nil {
		return ""
	}
	return out
}
