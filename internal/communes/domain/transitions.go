package domain

import (
	"fmt"

	"patrimoine_backend/platform/apperr"
)

// StatePair is the coupled target state of a commune and its current
// dossier after a workflow transition.
type StatePair struct {
	Commune CommuneStatus
	Dossier DossierStatus
}

func invalidTransition(entity string, from fmt.Stringer, event string) *apperr.Error {
	return apperr.InvalidTransition(
		fmt.Sprintf("cannot %s %s from status %s", event, entity, from))
}

func (s CommuneStatus) String() string { return string(s) }
func (s DossierStatus) String() string { return string(s) }

// Start validates the opening of an inventory cycle. A commune may only
// start from inactive and must not already own a current dossier; the
// new dossier begins in construction.
func Start(commune CommuneStatus, hasCurrentDossier bool) (StatePair, error) {
	if commune != CommuneInactive {
		return StatePair{}, invalidTransition("commune", commune, "start")
	}
	if hasCurrentDossier {
		return StatePair{}, apperr.InvalidTransition(
			"cannot start commune: a current dossier already exists")
	}
	return StatePair{Commune: CommuneStarted, Dossier: DossierConstruction}, nil
}

// Complete validates the end of the recensement phase. The commune must
// be started and the cascade submits its dossier, which is only legal
// from construction.
func Complete(commune CommuneStatus, dossier DossierStatus) (StatePair, error) {
	if commune != CommuneStarted {
		return StatePair{}, invalidTransition("commune", commune, "complete")
	}
	target, err := SubmitDossier(dossier)
	if err != nil {
		return StatePair{}, err
	}
	return StatePair{Commune: CommuneCompleted, Dossier: target}, nil
}

// ReturnToStarted validates reopening a completed commune. The cascade
// returns its dossier to construction, which is only legal from submitted.
func ReturnToStarted(commune CommuneStatus, dossier DossierStatus) (StatePair, error) {
	if commune != CommuneCompleted {
		return StatePair{}, invalidTransition("commune", commune, "return_to_started")
	}
	target, err := ReturnDossierToConstruction(dossier)
	if err != nil {
		return StatePair{}, err
	}
	return StatePair{Commune: CommuneStarted, Dossier: target}, nil
}

// SubmitDossier validates construction → submitted.
func SubmitDossier(dossier DossierStatus) (DossierStatus, error) {
	if dossier != DossierConstruction {
		return "", invalidTransition("dossier", dossier, "submit")
	}
	return DossierSubmitted, nil
}

// AcceptDossier validates submitted → accepted.
func AcceptDossier(dossier DossierStatus) (DossierStatus, error) {
	if dossier != DossierSubmitted {
		return "", invalidTransition("dossier", dossier, "accept")
	}
	return DossierAccepted, nil
}

// ReturnDossierToConstruction validates submitted → construction. This is
// also exposed as a standalone administrative correction.
func ReturnDossierToConstruction(dossier DossierStatus) (DossierStatus, error) {
	if dossier != DossierSubmitted {
		return "", invalidTransition("dossier", dossier, "return_to_construction")
	}
	return DossierConstruction, nil
}

// ArchiveDossier validates the archive edge, legal from any non-archived
// status. Archiving closes the cycle for good.
func ArchiveDossier(dossier DossierStatus) (DossierStatus, error) {
	if dossier == DossierArchived {
		return "", invalidTransition("dossier", dossier, "archive")
	}
	return DossierArchived, nil
}
