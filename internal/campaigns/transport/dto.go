// Package transport defines the campaign API DTOs.
package transport

import (
	"time"

	"github.com/google/uuid"

	"patrimoine_backend/internal/campaigns/domain"
	"patrimoine_backend/internal/campaigns/repository"
)

// CreateCampaignRequest carries the five campaign milestones.
type CreateCampaignRequest struct {
	DateLancement time.Time `json:"date_lancement" binding:"required"`
	DateRelance1  time.Time `json:"date_relance1" binding:"required"`
	DateRelance2  time.Time `json:"date_relance2" binding:"required"`
	DateRelance3  time.Time `json:"date_relance3" binding:"required"`
	DateFin       time.Time `json:"date_fin" binding:"required"`
}

// Dates converts the request into domain milestones.
func (r CreateCampaignRequest) Dates() domain.Dates {
	return domain.Dates{
		Lancement: r.DateLancement,
		Relance1:  r.DateRelance1,
		Relance2:  r.DateRelance2,
		Relance3:  r.DateRelance3,
		Fin:       r.DateFin,
	}
}

// UpdateCampaignRequest replaces the milestones of a draft campaign.
type UpdateCampaignRequest = CreateCampaignRequest

// CampaignResponse is the API shape of a campaign.
type CampaignResponse struct {
	ID              uuid.UUID `json:"id"`
	DepartementCode string    `json:"departement_code"`
	Status          string    `json:"status"`
	DateLancement   time.Time `json:"date_lancement"`
	DateRelance1    time.Time `json:"date_relance1"`
	DateRelance2    time.Time `json:"date_relance2"`
	DateRelance3    time.Time `json:"date_relance3"`
	DateFin         time.Time `json:"date_fin"`
	CreatedAt       time.Time `json:"created_at"`
}

// ToCampaignResponse maps a persisted campaign to its API shape.
func ToCampaignResponse(c repository.Campaign) CampaignResponse {
	return CampaignResponse{
		ID:              c.ID,
		DepartementCode: c.DepartementCode,
		Status:          string(c.Status),
		DateLancement:   c.Dates.Lancement,
		DateRelance1:    c.Dates.Relance1,
		DateRelance2:    c.Dates.Relance2,
		DateRelance3:    c.Dates.Relance3,
		DateFin:         c.Dates.Fin,
		CreatedAt:       c.CreatedAt,
	}
}

// ToCampaignResponses maps a campaign list.
func ToCampaignResponses(campaigns []repository.Campaign) []CampaignResponse {
	result := make([]CampaignResponse, 0, len(campaigns))
	for _, c := range campaigns {
		result = append(result, ToCampaignResponse(c))
	}
	return result
}

// RecipientResponse is the API shape of a campaign recipient.
type RecipientResponse struct {
	CommuneID    uuid.UUID `json:"commune_id"`
	CommuneNom   string    `json:"commune_nom"`
	CodeInsee    string    `json:"code_insee"`
	CurrentStep  *string   `json:"current_step"`
	Unsubscribed bool      `json:"unsubscribed"`
}

// ToRecipientResponse maps a recipient to its API shape.
func ToRecipientResponse(r repository.Recipient) RecipientResponse {
	var step *string
	if r.CurrentStep != nil {
		s := string(*r.CurrentStep)
		step = &s
	}
	return RecipientResponse{
		CommuneID:    r.CommuneID,
		CommuneNom:   r.CommuneNom,
		CodeInsee:    r.CodeInsee,
		CurrentStep:  step,
		Unsubscribed: r.Unsubscribed,
	}
}

// ToRecipientResponses maps a recipient list.
func ToRecipientResponses(recipients []repository.Recipient) []RecipientResponse {
	result := make([]RecipientResponse, 0, len(recipients))
	for _, r := range recipients {
		result = append(result, ToRecipientResponse(r))
	}
	return result
}

// AddRecipientsResponse reports how many communes were attached.
type AddRecipientsResponse struct {
	Added      int                 `json:"added"`
	Recipients []RecipientResponse `json:"recipients"`
}
