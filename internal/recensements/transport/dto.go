// Package transport defines the HTTP request/response shapes for
// recensements.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateRecensementRequest opens a recensement for an objet.
type CreateRecensementRequest struct {
	ObjetID       uuid.UUID `json:"objet_id" binding:"required"`
	DossierID     uuid.UUID `json:"dossier_id" binding:"required"`
	EtatSanitaire string    `json:"etat_sanitaire" binding:"required"`
	Localisation  string    `json:"localisation" binding:"required"`
	EdificeNom    *string   `json:"edifice_nom"`
	NotesCommune  *string   `json:"notes_commune"`
	Photos        []string  `json:"photos"`
}

// UpdateRecensementRequest edits the observation fields. Absent fields
// keep their stored value.
type UpdateRecensementRequest struct {
	EtatSanitaire *string  `json:"etat_sanitaire"`
	Localisation  *string  `json:"localisation"`
	EdificeNom    *string  `json:"edifice_nom"`
	NotesCommune  *string  `json:"notes_commune"`
	Photos        []string `json:"photos"`
}

// AnalyseRecensementRequest records the conservateur review.
type AnalyseRecensementRequest struct {
	AnalyseNotes *string `json:"analyse_notes"`
}

// DeleteRecensementRequest soft-deletes with a reason.
type DeleteRecensementRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RecensementResponse is the API shape of a recensement.
type RecensementResponse struct {
	ID            uuid.UUID  `json:"id"`
	ObjetID       uuid.UUID  `json:"objet_id"`
	DossierID     uuid.UUID  `json:"dossier_id"`
	Status        string     `json:"status"`
	EtatSanitaire string     `json:"etat_sanitaire"`
	Localisation  string     `json:"localisation"`
	EdificeNom    *string    `json:"edifice_nom,omitempty"`
	NotesCommune  *string    `json:"notes_commune,omitempty"`
	Photos        []string   `json:"photos,omitempty"`
	Prioritaire   bool       `json:"prioritaire"`
	AnalyseNotes  *string    `json:"analyse_notes,omitempty"`
	AnalysedAt    *time.Time `json:"analysed_at,omitempty"`
	AnalysedBy    *uuid.UUID `json:"analysed_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
