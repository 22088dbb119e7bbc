package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SlugFor derives the stable slug used to identify an edifice within a
// commune when it has no catalogue reference. Accents are folded and
// anything non-alphanumeric collapses to a single hyphen, so
// "Église Saint-Jean" and "eglise saint jean" share one slug.
func SlugFor(nom string) string {
	folded, _, err := transform.String(deaccent, nom)
	if err != nil {
		folded = nom
	}

	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
