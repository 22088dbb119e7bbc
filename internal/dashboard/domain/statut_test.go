package domain

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"testing"

	communes "patrimoine_backend/internal/communes/domain"
)

func TestComputeStatutGlobal(t *testing.T) {
	submitted := CommuneFacts{
		CommuneStatus: communes.CommuneCompleted,
		DossierStatus: communes.DossierSubmitted,
		HasDossier:    true,
	}

	tests := []struct {
		name         string
		facts        CommuneFacts
		recensements []RecensementFacts
		want         StatutGlobal
	}{
		{
			"inactive commune with nothing",
			CommuneFacts{CommuneStatus: communes.CommuneInactive},
			nil,
			StatutNonRecense,
		},
		{
			"started commune mid-recensement",
			CommuneFacts{CommuneStatus: communes.CommuneStarted, DossierStatus: communes.DossierConstruction, HasDossier: true},
			[]RecensementFacts{{}},
			StatutEnCoursDeRecensement,
		},
		{
			"completed commune awaiting review",
			submitted,
			[]RecensementFacts{{}},
			StatutEnCoursDeRecensement,
		},
		{
			"pending prioritaire outranks everything",
			CommuneFacts{CommuneStatus: communes.CommuneCompleted, DossierStatus: communes.DossierAccepted, HasDossier: true},
			[]RecensementFacts{{Prioritaire: true}, {Analysed: true}},
			StatutAExaminer,
		},
		{
			"analysed prioritaire no longer urgent",
			submitted,
			[]RecensementFacts{{Prioritaire: true, Analysed: true}},
			StatutEnCoursDExamen,
		},
		{
			"deleted prioritaire does not count",
			submitted,
			[]RecensementFacts{{Prioritaire: true, Deleted: true}},
			StatutEnCoursDeRecensement,
		},
		{
			"analysis in progress",
			submitted,
			[]RecensementFacts{{Analysed: true}, {}},
			StatutEnCoursDExamen,
		},
		{
			"automatic reply sent",
			CommuneFacts{
				CommuneStatus: communes.CommuneCompleted, DossierStatus: communes.DossierSubmitted,
				HasDossier: true, RepliedAutomatically: true,
			},
			nil,
			StatutReponseAutomatique,
		},
		{
			"accepted dossier is examined",
			CommuneFacts{CommuneStatus: communes.CommuneCompleted, DossierStatus: communes.DossierAccepted, HasDossier: true},
			[]RecensementFacts{{Analysed: true}},
			StatutExamine,
		},
		{
			"acceptance beats automatic reply",
			CommuneFacts{
				CommuneStatus: communes.CommuneCompleted, DossierStatus: communes.DossierAccepted,
				HasDossier: true, RepliedAutomatically: true,
			},
			nil,
			StatutExamine,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeStatutGlobal(tt.facts, tt.recensements); got != tt.want {
				t.Errorf("ComputeStatutGlobal() = %d (%s), want %d (%s)", got, got, tt.want, tt.want)
			}
		})
	}
}

// Exhaustive sweep over every commune/dossier/recensement combination:
// exactly one ordinal comes out, always in 1..6, and adding a pending
// prioritaire recensement never increases the ordinal.
func TestComputeStatutGlobalExhaustive(t *testing.T) {
	communeStatuses := []communes.CommuneStatus{
		communes.CommuneInactive, communes.CommuneStarted, communes.CommuneCompleted,
	}
	dossierStatuses := []communes.DossierStatus{
		communes.DossierConstruction, communes.DossierSubmitted,
		communes.DossierAccepted, communes.DossierArchived,
	}
	recensementSets := [][]RecensementFacts{
		nil,
		{{}},
		{{Prioritaire: true}},
		{{Analysed: true}},
		{{Prioritaire: true, Analysed: true}},
		{{Prioritaire: true, Deleted: true}},
		{{Prioritaire: true}, {Analysed: true}},
		{{Analysed: true, Deleted: true}},
	}

	for _, cs := range communeStatuses {
		for _, hasDossier := range []bool{false, true} {
			for _, ds := range dossierStatuses {
				if !hasDossier && ds != communes.DossierConstruction {
					continue
				}
				for _, replied := range []bool{false, true} {
					for _, recs := range recensementSets {
						facts := CommuneFacts{
							CommuneStatus: cs, DossierStatus: ds,
							HasDossier: hasDossier, RepliedAutomatically: replied,
						}
						got := ComputeStatutGlobal(facts, recs)
						if got < StatutAExaminer || got > StatutNonRecense {
							t.Fatalf("out-of-range ordinal %d for %+v recs=%+v", got, facts, recs)
						}

						withUrgent := append([]RecensementFacts{{Prioritaire: true}}, recs...)
						if urgent := ComputeStatutGlobal(facts, withUrgent); urgent > got {
							t.Errorf("adding pending prioritaire raised ordinal %d -> %d for %+v", got, urgent, facts)
						}
					}
				}
			}
		}
	}
}

// The SQL aggregate in the dashboard repository must encode the same
// ranking. This check guards against one side drifting: every ordinal
// the Go function can return has to appear as a THEN/ELSE arm, and the
// status literals the Go rules test have to appear as quoted literals.
func TestStatutGlobalSQLParity(t *testing.T) {
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to resolve current file path")
	}
	sqlPath := filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", "repository", "repository.go"))
	content, err := os.ReadFile(sqlPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", sqlPath, err)
	}
	sql := string(content)

	for _, arm := range []string{"THEN 1", "THEN 2", "THEN 3", "THEN 4", "THEN 5", "ELSE 6"} {
		if !regexp.MustCompile(regexp.QuoteMeta(arm)).MatchString(sql) {
			t.Errorf("SQL aggregate is missing arm %q", arm)
		}
	}
	for _, literal := range []string{"'accepted'", "'submitted'", "'started'", "'completed'"} {
		if !regexp.MustCompile(regexp.QuoteMeta(literal)).MatchString(sql) {
			t.Errorf("SQL aggregate does not reference status literal %s", literal)
		}
	}
	for _, predicate := range []string{"replied_automatically_at IS NOT NULL", "analysed_at IS NULL", "deleted_at IS NULL"} {
		if !regexp.MustCompile(regexp.QuoteMeta(predicate)).MatchString(sql) {
			t.Errorf("SQL aggregate does not test %q", predicate)
		}
	}
}
