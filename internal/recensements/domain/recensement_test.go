package domain

import (
	"strings"
	"testing"

	"patrimoine_backend/platform/apperr"
)

func TestPrioritaire(t *testing.T) {
	tests := []struct {
		name         string
		etat         EtatSanitaire
		localisation Localisation
		want         bool
	}{
		{"bon etat in place", EtatBon, LocalisationEdificeInitial, false},
		{"moyen etat moved", EtatMoyen, LocalisationAutreEdifice, false},
		{"mauvais etat is not yet prioritaire", EtatMauvais, LocalisationEdificeInitial, false},
		{"peril", EtatPeril, LocalisationEdificeInitial, true},
		{"disparu", EtatDisparu, LocalisationEdificeInitial, true},
		{"absent from expected edifice", EtatBon, LocalisationAbsent, true},
		{"peril and absent", EtatPeril, LocalisationAbsent, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Prioritaire(tt.etat, tt.localisation); got != tt.want {
				t.Errorf("Prioritaire(%s, %s) = %v, want %v", tt.etat, tt.localisation, got, tt.want)
			}
		})
	}
}

// The SQL predicate must mention exactly the values the Go classification
// treats as prioritaire so the two paths cannot diverge silently.
func TestPrioritaireSQLMatchesGoClassification(t *testing.T) {
	for _, etat := range []EtatSanitaire{EtatBon, EtatMoyen, EtatMauvais, EtatPeril, EtatDisparu} {
		mentioned := strings.Contains(PrioritaireSQL, "'"+string(etat)+"'")
		prioritaire := Prioritaire(etat, LocalisationEdificeInitial)
		if mentioned != prioritaire {
			t.Errorf("etat %s: SQL predicate mentions it = %v, Go classifies prioritaire = %v", etat, mentioned, prioritaire)
		}
	}
	if !strings.Contains(PrioritaireSQL, "'"+string(LocalisationAbsent)+"'") {
		t.Error("SQL predicate does not cover localisation absent")
	}
}

// Every prioritaire recensement must land in at least one dashboard
// counter, and the counters never flag a non-prioritaire one.
func TestDisparuAndEnPerilCoverPrioritaire(t *testing.T) {
	etats := []EtatSanitaire{EtatBon, EtatMoyen, EtatMauvais, EtatPeril, EtatDisparu}
	localisations := []Localisation{
		LocalisationEdificeInitial, LocalisationAutreEdifice,
		LocalisationDeplaceTemporaire, LocalisationAutreCommune,
		LocalisationAbsent,
	}
	for _, etat := range etats {
		for _, localisation := range localisations {
			counted := Disparu(etat, localisation) || EnPeril(etat)
			if counted != Prioritaire(etat, localisation) {
				t.Errorf("(%s, %s): counted = %v, prioritaire = %v", etat, localisation, counted, Prioritaire(etat, localisation))
			}
		}
	}
}

func TestCountsSQL(t *testing.T) {
	sql := CountsSQL("c")
	for _, want := range []string{
		"c.dossier_id",
		"r.deleted_at IS NULL",
		DisparuSQL,
		EnPerilSQL,
		"AS disparus_count",
		"AS en_peril_count",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("counters SQL is missing %q", want)
		}
	}
}

func TestComplete(t *testing.T) {
	got, err := Complete(StatusInProgress)
	if err != nil {
		t.Fatalf("Complete(in_progress) returned error: %v", err)
	}
	if got != StatusCompleted {
		t.Errorf("Complete(in_progress) = %s, want %s", got, StatusCompleted)
	}

	if _, err := Complete(StatusCompleted); apperr.GetKind(err) != apperr.KindInvalidTransition {
		t.Errorf("Complete(completed) kind = %v, want KindInvalidTransition", apperr.GetKind(err))
	}
}

func TestValidateEdit(t *testing.T) {
	tests := []struct {
		name     string
		archived bool
		changes  FieldChanges
		wantErr  bool
	}{
		{"open dossier allows everything", false, FieldChanges{Observation: true, Analysis: true, Lifecycle: true}, false},
		{"archived allows pure analysis edit", true, FieldChanges{Analysis: true}, false},
		{"archived rejects observation edit", true, FieldChanges{Observation: true}, true},
		{"archived rejects lifecycle edit", true, FieldChanges{Lifecycle: true}, true},
		{"archived rejects mixed edit", true, FieldChanges{Observation: true, Analysis: true}, true},
		{"archived no-op edit passes", true, FieldChanges{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEdit(tt.archived, tt.changes)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEdit(%v, %+v) error = %v, wantErr %v", tt.archived, tt.changes, err, tt.wantErr)
			}
			if err != nil && apperr.GetKind(err) != apperr.KindValidation {
				t.Errorf("kind = %v, want KindValidation", apperr.GetKind(err))
			}
		})
	}
}

func TestStatusValidation(t *testing.T) {
	for _, s := range []Status{StatusInProgress, StatusCompleted} {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("draft").IsValid() {
		t.Error("draft should not be a valid status")
	}
	if EtatSanitaire("ruine").IsValid() {
		t.Error("ruine should not be a valid etat sanitaire")
	}
	if Localisation("perdu").IsValid() {
		t.Error("perdu should not be a valid localisation")
	}
}
