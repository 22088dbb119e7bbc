package repository

import (
	"time"

	"github.com/google/uuid"

	"patrimoine_backend/internal/campaigns/domain"
)

// Campaign is one outreach cycle for a departement.
type Campaign struct {
	ID              uuid.UUID
	DepartementCode string
	Status          domain.Status
	Dates           domain.Dates
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Recipient is one commune attached to a campaign, with its outreach
// progress.
type Recipient struct {
	ID           uuid.UUID
	CampaignID   uuid.UUID
	CommuneID    uuid.UUID
	CommuneNom   string
	CodeInsee    string
	CurrentStep  *domain.Step
	Unsubscribed bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EligibleCommune is a commune matching the default-recipient criteria.
type EligibleCommune struct {
	ID        uuid.UUID
	CodeInsee string
	Nom       string
}

// CreateParams holds the fields of a new draft campaign.
type CreateParams struct {
	DepartementCode string
	Dates           domain.Dates
}
