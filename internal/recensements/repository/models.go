package repository

import (
	"time"

	"github.com/google/uuid"

	"patrimoine_backend/internal/recensements/domain"
)

// Recensement is the persisted model of a single objet inventory report.
type Recensement struct {
	ID            uuid.UUID
	ObjetID       uuid.UUID
	DossierID     uuid.UUID
	Status        domain.Status
	EtatSanitaire domain.EtatSanitaire
	Localisation  domain.Localisation
	EdificeNom    *string
	NotesCommune  *string
	Photos        []string
	AnalyseNotes  *string
	AnalysedAt    *time.Time
	AnalysedBy    *uuid.UUID
	DeletedAt     *time.Time
	DeletedReason *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Deleted reports whether the recensement has been soft-deleted.
func (r Recensement) Deleted() bool { return r.DeletedAt != nil }

// Analysed reports whether a conservateur has reviewed the recensement.
func (r Recensement) Analysed() bool { return r.AnalysedAt != nil }

// CreateParams holds the fields required to open a recensement.
type CreateParams struct {
	ObjetID       uuid.UUID
	DossierID     uuid.UUID
	EtatSanitaire domain.EtatSanitaire
	Localisation  domain.Localisation
	EdificeNom    *string
	NotesCommune  *string
	Photos        []string
}

// UpdateParams carries the commune-editable observation fields. Nil
// pointers leave the stored value untouched.
type UpdateParams struct {
	EtatSanitaire *domain.EtatSanitaire
	Localisation  *domain.Localisation
	EdificeNom    *string
	NotesCommune  *string
	Photos        []string
}

// AnalyseParams carries the conservateur analysis fields.
type AnalyseParams struct {
	ConservateurID uuid.UUID
	AnalyseNotes   *string
}
