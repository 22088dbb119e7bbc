// Package events defines the domain events exchanged between modules.
package events

import (
	"github.com/google/uuid"
)

// =============================================================================
// Commune / Dossier Workflow Events
// =============================================================================

// CommuneStarted is published after a commune opens its inventory cycle.
// The new dossier id is carried so collaborators can schedule follow-ups.
type CommuneStarted struct {
	BaseEvent
	CommuneID uuid.UUID `json:"communeId"`
	CodeInsee string    `json:"codeInsee"`
	DossierID uuid.UUID `json:"dossierId"`
}

func (e CommuneStarted) EventName() string { return "communes.commune.started" }

// CommuneCompleted is published after a commune finishes its inventory
// and the dossier is submitted for review.
type CommuneCompleted struct {
	BaseEvent
	CommuneID uuid.UUID `json:"communeId"`
	CodeInsee string    `json:"codeInsee"`
	DossierID uuid.UUID `json:"dossierId"`
}

func (e CommuneCompleted) EventName() string { return "communes.commune.completed" }

// CommuneReturnedToStarted is published when a completed commune reopens
// its inventory, typically after a conservateur requests corrections.
type CommuneReturnedToStarted struct {
	BaseEvent
	CommuneID uuid.UUID `json:"communeId"`
	CodeInsee string    `json:"codeInsee"`
	DossierID uuid.UUID `json:"dossierId"`
}

func (e CommuneReturnedToStarted) EventName() string { return "communes.commune.returned_to_started" }

// DossierAccepted is published when a conservateur accepts a submitted dossier.
type DossierAccepted struct {
	BaseEvent
	DossierID      uuid.UUID `json:"dossierId"`
	CommuneID      uuid.UUID `json:"communeId"`
	ConservateurID uuid.UUID `json:"conservateurId"`
}

func (e DossierAccepted) EventName() string { return "dossiers.dossier.accepted" }

// DossierArchived is published when a dossier leaves the active cycle.
type DossierArchived struct {
	BaseEvent
	DossierID uuid.UUID `json:"dossierId"`
	CommuneID uuid.UUID `json:"communeId"`
}

func (e DossierArchived) EventName() string { return "dossiers.dossier.archived" }

// =============================================================================
// Recensement Events
// =============================================================================

// RecensementAnalysed is published when a conservateur records an analysis.
type RecensementAnalysed struct {
	BaseEvent
	RecensementID  uuid.UUID `json:"recensementId"`
	DossierID      uuid.UUID `json:"dossierId"`
	ConservateurID uuid.UUID `json:"conservateurId"`
}

func (e RecensementAnalysed) EventName() string { return "recensements.recensement.analysed" }

// =============================================================================
// Campaign Events
// =============================================================================

// CampaignPlanned is published when a draft campaign is planned.
type CampaignPlanned struct {
	BaseEvent
	CampaignID      uuid.UUID `json:"campaignId"`
	DepartementCode string    `json:"departementCode"`
}

func (e CampaignPlanned) EventName() string { return "campaigns.campaign.planned" }

// CampaignStepReached is published when an ongoing campaign advances to a
// new outreach step (lancement, relance1..3, fin).
type CampaignStepReached struct {
	BaseEvent
	CampaignID      uuid.UUID `json:"campaignId"`
	DepartementCode string    `json:"departementCode"`
	Step            string    `json:"step"`
}

func (e CampaignStepReached) EventName() string { return "campaigns.campaign.step_reached" }
