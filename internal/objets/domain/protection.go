// Package domain holds the catalogue-facing rules for objets and
// edifices: protection scope and edifice slug derivation.
package domain

import "strings"

// misDeCote lists the PROT values marking an objet as withdrawn from
// protection. Rows carrying them are outside the synchronization scope.
var misDeCote = []string{
	"déclassé au titre objet",
	"désinscrit",
	"non protégé",
	"sans protection",
}

// OutOfScopeProtection reports whether a PROT value excludes the row
// from synchronization.
func OutOfScopeProtection(prot string) bool {
	p := strings.ToLower(strings.TrimSpace(prot))
	for _, marker := range misDeCote {
		if strings.Contains(p, marker) {
			return true
		}
	}
	return false
}
