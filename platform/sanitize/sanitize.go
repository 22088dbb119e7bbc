// Package sanitize cleans free-text input before storage. Recensement
// and dossier notes are rendered in the conservateur dashboard, so tags
// are stripped server-side rather than trusting every consumer to
// escape them.
package sanitize

import (
	"regexp"
	"strings"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
)

// Text strips HTML tags and trims the result. Entities are decoded
// once and the output re-stripped so encoded tags cannot survive.
func Text(s string) string {
	out := htmlTagRegex.ReplaceAllString(s, "")
	out = entityReplacer.Replace(out)
	out = htmlTagRegex.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// TextPtr applies Text to an optional field, preserving nil.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	out := Text(*s)
	return &out
}
