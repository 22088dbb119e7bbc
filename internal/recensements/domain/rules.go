package domain

import (
	"fmt"

	"patrimoine_backend/platform/apperr"
)

// FieldChanges describes which groups of fields an update touches. The
// repository computes it by diffing the incoming payload against the
// stored row before deciding whether the edit is allowed.
type FieldChanges struct {
	// Observation covers the commune-facing fields: etat_sanitaire,
	// localisation, notes_commune, photos.
	Observation bool
	// Analysis covers the conservateur-facing fields: analysed_at,
	// analysed_by, analyse_notes.
	Analysis bool
	// Lifecycle covers status and deleted_at.
	Lifecycle bool
}

// ValidateEdit enforces the archive freeze: once the parent dossier is
// archived the recensement is read-only except for analysis fields.
func ValidateEdit(dossierArchived bool, changes FieldChanges) error {
	if !dossierArchived {
		return nil
	}
	if changes.Observation || changes.Lifecycle {
		return apperr.Validation("recensement is frozen: its dossier is archived and only analysis fields may change")
	}
	return nil
}

// Complete returns the status after completing an in-progress recensement.
func Complete(current Status) (Status, error) {
	if current != StatusInProgress {
		return current, apperr.InvalidTransition(
			fmt.Sprintf("cannot complete recensement from status %s", current))
	}
	return StatusCompleted, nil
}
