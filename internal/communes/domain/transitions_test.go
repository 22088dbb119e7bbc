package domain

import (
	"testing"

	"patrimoine_backend/platform/apperr"
)

func TestStart(t *testing.T) {
	cases := []struct {
		name       string
		commune    CommuneStatus
		hasDossier bool
		wantErr    bool
	}{
		{"inactive without dossier", CommuneInactive, false, false},
		{"inactive with existing dossier", CommuneInactive, true, true},
		{"already started", CommuneStarted, false, true},
		{"completed", CommuneCompleted, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pair, err := Start(tc.commune, tc.hasDossier)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Start(%s, %v) expected error, got %+v", tc.commune, tc.hasDossier, pair)
				}
				if !apperr.Is(err, apperr.KindInvalidTransition) {
					t.Errorf("Start error kind = %v, want KindInvalidTransition", apperr.GetKind(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("Start(%s, %v) unexpected error: %v", tc.commune, tc.hasDossier, err)
			}
			if pair.Commune != CommuneStarted || pair.Dossier != DossierConstruction {
				t.Errorf("Start = %+v, want started/construction", pair)
			}
		})
	}
}

func TestComplete(t *testing.T) {
	cases := []struct {
		name    string
		commune CommuneStatus
		dossier DossierStatus
		want    StatePair
		wantErr bool
	}{
		{"started with construction dossier", CommuneStarted, DossierConstruction,
			StatePair{CommuneCompleted, DossierSubmitted}, false},
		{"started but dossier already submitted", CommuneStarted, DossierSubmitted, StatePair{}, true},
		{"inactive commune", CommuneInactive, DossierConstruction, StatePair{}, true},
		{"already completed", CommuneCompleted, DossierConstruction, StatePair{}, true},
		{"archived dossier", CommuneStarted, DossierArchived, StatePair{}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pair, err := Complete(tc.commune, tc.dossier)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Complete(%s, %s) expected error", tc.commune, tc.dossier)
				}
				return
			}
			if err != nil {
				t.Fatalf("Complete(%s, %s) unexpected error: %v", tc.commune, tc.dossier, err)
			}
			if pair != tc.want {
				t.Errorf("Complete = %+v, want %+v", pair, tc.want)
			}
		})
	}
}

// A failing dossier leg must fail the whole coupled transition: the
// caller gets an error and no partial target state.
func TestCompleteDossierLegFailureIsAtomic(t *testing.T) {
	pair, err := Complete(CommuneStarted, DossierAccepted)
	if err == nil {
		t.Fatal("expected error when dossier cannot be submitted")
	}
	if pair != (StatePair{}) {
		t.Errorf("partial state pair returned: %+v", pair)
	}
}

func TestReturnToStarted(t *testing.T) {
	pair, err := ReturnToStarted(CommuneCompleted, DossierSubmitted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.Commune != CommuneStarted || pair.Dossier != DossierConstruction {
		t.Errorf("ReturnToStarted = %+v, want started/construction", pair)
	}

	if _, err := ReturnToStarted(CommuneStarted, DossierSubmitted); err == nil {
		t.Error("expected error for non-completed commune")
	}
	if _, err := ReturnToStarted(CommuneCompleted, DossierAccepted); err == nil {
		t.Error("expected error when dossier is not submitted")
	}
}

func TestDossierEdges(t *testing.T) {
	t.Run("submit", func(t *testing.T) {
		if got, err := SubmitDossier(DossierConstruction); err != nil || got != DossierSubmitted {
			t.Errorf("SubmitDossier(construction) = %v, %v", got, err)
		}
		for _, from := range []DossierStatus{DossierSubmitted, DossierAccepted, DossierArchived} {
			if _, err := SubmitDossier(from); err == nil {
				t.Errorf("SubmitDossier(%s) expected error", from)
			}
		}
	})

	t.Run("accept", func(t *testing.T) {
		if got, err := AcceptDossier(DossierSubmitted); err != nil || got != DossierAccepted {
			t.Errorf("AcceptDossier(submitted) = %v, %v", got, err)
		}
		for _, from := range []DossierStatus{DossierConstruction, DossierAccepted, DossierArchived} {
			if _, err := AcceptDossier(from); err == nil {
				t.Errorf("AcceptDossier(%s) expected error", from)
			}
		}
	})

	t.Run("return_to_construction", func(t *testing.T) {
		if got, err := ReturnDossierToConstruction(DossierSubmitted); err != nil || got != DossierConstruction {
			t.Errorf("ReturnDossierToConstruction(submitted) = %v, %v", got, err)
		}
		for _, from := range []DossierStatus{DossierConstruction, DossierAccepted, DossierArchived} {
			if _, err := ReturnDossierToConstruction(from); err == nil {
				t.Errorf("ReturnDossierToConstruction(%s) expected error", from)
			}
		}
	})

	t.Run("archive", func(t *testing.T) {
		for _, from := range []DossierStatus{DossierConstruction, DossierSubmitted, DossierAccepted} {
			if got, err := ArchiveDossier(from); err != nil || got != DossierArchived {
				t.Errorf("ArchiveDossier(%s) = %v, %v", from, got, err)
			}
		}
		if _, err := ArchiveDossier(DossierArchived); err == nil {
			t.Error("ArchiveDossier(archived) expected error")
		}
	})
}
