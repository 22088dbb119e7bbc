package domain

import "testing"

func TestOutOfScopeProtection(t *testing.T) {
	tests := []struct {
		prot string
		want bool
	}{
		{"classé au titre objet", false},
		{"inscrit au titre objet", false},
		{"classé au titre objet ; inscrit au titre objet", false},
		{"déclassé au titre objet", true},
		{"désinscrit", true},
		{"objet non protégé", true},
		{"sans protection", true},
		{"  Sans Protection  ", true},
		{"", false},
	}
	for _, tt := range tests {
		if got := OutOfScopeProtection(tt.prot); got != tt.want {
			t.Errorf("OutOfScopeProtection(%q) = %v, want %v", tt.prot, got, tt.want)
		}
	}
}

func TestSlugFor(t *testing.T) {
	tests := []struct {
		nom  string
		want string
	}{
		{"Église Saint-Jean", "eglise-saint-jean"},
		{"eglise saint jean", "eglise-saint-jean"},
		{"Chapelle Notre-Dame de l'Assomption", "chapelle-notre-dame-de-l-assomption"},
		{"  Mairie  ", "mairie"},
		{"", ""},
		{"---", ""},
		{"Château d'Eau N°2", "chateau-d-eau-n-2"},
	}
	for _, tt := range tests {
		if got := SlugFor(tt.nom); got != tt.want {
			t.Errorf("SlugFor(%q) = %q, want %q", tt.nom, got, tt.want)
		}
	}
}
