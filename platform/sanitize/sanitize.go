// Package sanitize strips markup from free text typed into public and staff forms.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Text removes HTML tags, decodes entities and trims the result. Tags hidden
// behind entities (&lt;b&gt;) are removed on the second pass.
func Text(s string) string {
	out := tagPattern.ReplaceAllString(s, "")
	out = html.UnescapeString(out)
	out = tagPattern.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// TextPtr sanitizes an optional field, keeping nil as nil.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	out := Text(*s)
	return &out
}
