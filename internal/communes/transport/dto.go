// Package transport defines the request/response DTOs for communes.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// CommuneResponse is the API representation of a commune.
type CommuneResponse struct {
	ID              uuid.UUID  `json:"id"`
	CodeInsee       string     `json:"codeInsee"`
	Nom             string     `json:"nom"`
	DepartementCode string     `json:"departementCode"`
	PhoneNumber     string     `json:"phoneNumber,omitempty"`
	Status          string     `json:"status"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	DossierID       *uuid.UUID `json:"dossierId,omitempty"`
	ObjetsCount     int        `json:"objetsCount"`
	DisparusCount   int        `json:"disparusCount"`
	EnPerilCount    int        `json:"enPerilCount"`
}

// UpdateContactRequest changes the mairie contact details.
type UpdateContactRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

// DossierResponse is the API representation of a dossier.
type DossierResponse struct {
	ID                     uuid.UUID  `json:"id"`
	CommuneID              uuid.UUID  `json:"communeId"`
	Status                 string     `json:"status"`
	SubmittedAt            *time.Time `json:"submittedAt,omitempty"`
	RepliedAutomaticallyAt *time.Time `json:"repliedAutomaticallyAt,omitempty"`
	AcceptedAt             *time.Time `json:"acceptedAt,omitempty"`
	ConservateurID         *uuid.UUID `json:"conservateurId,omitempty"`
	NotesCommune           *string    `json:"notesCommune,omitempty"`
	NotesConservateur      *string    `json:"notesConservateur,omitempty"`
}

// WorkflowResponse bundles the commune and dossier after a coupled transition.
type WorkflowResponse struct {
	Commune CommuneResponse `json:"commune"`
	Dossier DossierResponse `json:"dossier"`
}
