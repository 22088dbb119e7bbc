// Package transport defines the HTTP shapes of the curator dashboard.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// CommuneRowResponse is one dashboard listing entry.
type CommuneRowResponse struct {
	ID                uuid.UUID  `json:"id"`
	CodeInsee         string     `json:"code_insee"`
	Nom               string     `json:"nom"`
	Status            string     `json:"status"`
	StatutGlobal      int        `json:"statut_global"`
	StatutGlobalLabel string     `json:"statut_global_label"`
	ObjetsCount       int        `json:"objets_count"`
	DisparusCount     int        `json:"disparus_count"`
	EnPerilCount      int        `json:"en_peril_count"`
	DossierID         *uuid.UUID `json:"dossier_id,omitempty"`
	DossierStatus     *string    `json:"dossier_status,omitempty"`
	SubmittedAt       *time.Time `json:"submitted_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

// ListResponse is one page of the dashboard listing.
type ListResponse struct {
	Communes []CommuneRowResponse `json:"communes"`
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	PerPage  int                  `json:"per_page"`
}

// CommuneDetailResponse is the single-commune dashboard view.
type CommuneDetailResponse struct {
	CommuneRowResponse
	RecensementsTotal       int `json:"recensements_total"`
	RecensementsPrioritaire int `json:"recensements_prioritaires"`
	RecensementsAnalysed    int `json:"recensements_analysed"`
}
