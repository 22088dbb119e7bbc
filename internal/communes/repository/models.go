package repository

import (
	"time"

	"github.com/google/uuid"

	"patrimoine_backend/internal/communes/domain"
)

// Commune is a municipality participating in the inventory.
// Counters are denormalized from objets and recensements.
type Commune struct {
	ID              uuid.UUID
	CodeInsee       string
	Nom             string
	DepartementCode string
	PhoneNumber     string
	Status          domain.CommuneStatus
	CompletedAt     *time.Time
	DossierID       *uuid.UUID
	ObjetsCount     int
	DisparusCount   int
	EnPerilCount    int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Dossier is one inventory administrative cycle for a commune.
type Dossier struct {
	ID                     uuid.UUID
	CommuneID              uuid.UUID
	Status                 domain.DossierStatus
	SubmittedAt            *time.Time
	RepliedAutomaticallyAt *time.Time
	AcceptedAt             *time.Time
	ConservateurID         *uuid.UUID
	NotesCommune           *string
	NotesConservateur      *string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// CommuneDossier bundles a commune with its current dossier after a
// coupled workflow transition.
type CommuneDossier struct {
	Commune Commune
	Dossier Dossier
}
