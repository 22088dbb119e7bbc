// Package transport defines the HTTP shapes for objets and sync reports.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// ObjetResponse is the API shape of an objet.
type ObjetResponse struct {
	ID               uuid.UUID  `json:"id"`
	PalissyRef       string     `json:"palissy_ref"`
	Nom              string     `json:"nom"`
	Categorie        *string    `json:"categorie,omitempty"`
	Protection       *string    `json:"protection,omitempty"`
	CraftedAt        *string    `json:"crafted_at,omitempty"`
	Materiaux        []string   `json:"materiaux,omitempty"`
	CommuneNom       *string    `json:"commune_nom,omitempty"`
	CommuneCodeInsee *string    `json:"commune_code_insee,omitempty"`
	DepartementCode  *string    `json:"departement_code,omitempty"`
	EdificeID        *uuid.UUID `json:"edifice_id,omitempty"`
	EdificeNom       *string    `json:"edifice_nom,omitempty"`
	Emplacement      *string    `json:"emplacement,omitempty"`
	Photos           []string   `json:"photos,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// SyncReportResponse is the API shape of a batch reconciliation summary.
type SyncReportResponse struct {
	ID         uuid.UUID      `json:"id"`
	StartedAt  time.Time      `json:"started_at"`
	DurationMS int64          `json:"duration_ms"`
	Counters   map[string]int `json:"counters"`
	Failures   int            `json:"failures"`
	Total      int            `json:"total"`
}
