// Package service drives the campaign lifecycle: creation, planning,
// start, step advancement and finish.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"patrimoine_backend/internal/campaigns/domain"
	"patrimoine_backend/internal/campaigns/repository"
	"patrimoine_backend/internal/campaigns/transport"
	communedomain "patrimoine_backend/internal/communes/domain"
	communerepo "patrimoine_backend/internal/communes/repository"
	"patrimoine_backend/internal/events"
	"patrimoine_backend/platform/apperr"
	"patrimoine_backend/platform/logger"
)

// Service orchestrates campaigns over their repository and the commune
// workflow of the recipients.
type Service struct {
	repo     repository.Repository
	communes communerepo.Repository
	bus      events.Bus
	log      *logger.Logger
	now      func() time.Time
}

// New creates a new campaigns service.
func New(repo repository.Repository, communes communerepo.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		communes: communes,
		bus:      bus,
		log:      log,
		now:      time.Now,
	}
}

// Create validates the milestones and inserts a draft campaign for the
// departement.
func (s *Service) Create(ctx context.Context, departementCode string, dates domain.Dates) (transport.CampaignResponse, error) {
	if err := dates.Validate(domain.StatusDraft, s.now()); err != nil {
		return transport.CampaignResponse{}, err
	}
	campaign, err := s.repo.Create(ctx, repository.CreateParams{
		DepartementCode: departementCode,
		Dates:           dates,
	})
	if err != nil {
		return transport.CampaignResponse{}, err
	}
	return transport.ToCampaignResponse(campaign), nil
}

// GetByID retrieves one campaign.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.CampaignResponse, error) {
	campaign, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CampaignResponse{}, err
	}
	return transport.ToCampaignResponse(campaign), nil
}

// ListByDepartement lists the campaigns of a departement.
func (s *Service) ListByDepartement(ctx context.Context, departementCode string) ([]transport.CampaignResponse, error) {
	campaigns, err := s.repo.ListByDepartement(ctx, departementCode)
	if err != nil {
		return nil, err
	}
	return transport.ToCampaignResponses(campaigns), nil
}

// UpdateDates replaces the milestones of a draft campaign.
func (s *Service) UpdateDates(ctx context.Context, id uuid.UUID, dates domain.Dates) (transport.CampaignResponse, error) {
	campaign, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CampaignResponse{}, err
	}
	if campaign.Status != domain.StatusDraft {
		return transport.CampaignResponse{}, apperr.InvalidTransition(
			"only draft campaign dates can be changed")
	}
	if err := dates.Validate(campaign.Status, s.now()); err != nil {
		return transport.CampaignResponse{}, err
	}
	campaign, err = s.repo.UpdateDates(ctx, id, dates)
	if err != nil {
		return transport.CampaignResponse{}, err
	}
	return transport.ToCampaignResponse(campaign), nil
}

// Delete removes a draft campaign.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// AddDefaultRecipients attaches every eligible commune of the campaign's
// departement and returns the resulting recipient list.
func (s *Service) AddDefaultRecipients(ctx context.Context, id uuid.UUID) (transport.AddRecipientsResponse, error) {
	campaign, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.AddRecipientsResponse{}, err
	}
	if campaign.Status != domain.StatusDraft {
		return transport.AddRecipientsResponse{}, apperr.InvalidTransition(
			"recipients can only be added to a draft campaign")
	}

	eligible, err := s.repo.EligibleCommunes(ctx, campaign.DepartementCode)
	if err != nil {
		return transport.AddRecipientsResponse{}, err
	}
	ids := make([]uuid.UUID, 0, len(eligible))
	for _, c := range eligible {
		ids = append(ids, c.ID)
	}
	added, err := s.repo.AddRecipients(ctx, id, ids)
	if err != nil {
		return transport.AddRecipientsResponse{}, err
	}

	recipients, err := s.repo.ListRecipients(ctx, id)
	if err != nil {
		return transport.AddRecipientsResponse{}, err
	}
	return transport.AddRecipientsResponse{
		Added:      added,
		Recipients: transport.ToRecipientResponses(recipients),
	}, nil
}

// ListRecipients lists the recipients of a campaign.
func (s *Service) ListRecipients(ctx context.Context, id uuid.UUID) ([]transport.RecipientResponse, error) {
	recipients, err := s.repo.ListRecipients(ctx, id)
	if err != nil {
		return nil, err
	}
	return transport.ToRecipientResponses(recipients), nil
}

// Recipients exposes raw recipient rows for the CSV export.
func (s *Service) Recipients(ctx context.Context, id uuid.UUID) ([]repository.Recipient, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListRecipients(ctx, id)
}

// Plan transitions a draft campaign to planned. The campaign must not
// overlap another planned or ongoing campaign of the departement, its
// launch must still be in the future and every recipient commune must
// be inactive.
func (s *Service) Plan(ctx context.Context, id uuid.UUID) (transport.CampaignResponse, error) {
	campaign, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CampaignResponse{}, err
	}
	if err := campaign.Dates.Validate(domain.StatusPlanned, s.now()); err != nil {
		return transport.CampaignResponse{}, err
	}
	overlapping, err := s.repo.HasOverlapping(ctx, campaign.DepartementCode, campaign.Dates, id)
	if err != nil {
		return transport.CampaignResponse{}, err
	}
	if overlapping {
		return transport.CampaignResponse{}, apperr.Validation("campaign dates invalid",
			apperr.FieldError{
				Field:   "date_lancement",
				Message: "campaign overlaps another planned or ongoing campaign of the departement",
			})
	}

	campaign, err = s.repo.Plan(ctx, id)
	if err != nil {
		return transport.CampaignResponse{}, err
	}

	s.bus.Publish(ctx, events.CampaignPlanned{
		BaseEvent:       events.NewBaseEvent(),
		CampaignID:      campaign.ID,
		DepartementCode: campaign.DepartementCode,
	})
	return transport.ToCampaignResponse(campaign), nil
}

// Start transitions a planned campaign to ongoing. Recipient communes
// whose dossier was submitted or accepted are archived and reset to
// inactive so the new cycle can begin; communes mid-construction keep
// their dossier.
func (s *Service) Start(ctx context.Context, id uuid.UUID) (transport.CampaignResponse, error) {
	campaign, recipients, err := s.repo.Start(ctx, id)
	if err != nil {
		return transport.CampaignResponse{}, err
	}

	for _, recipient := range recipients {
		if err := s.resetRecipient(ctx, recipient); err != nil {
			s.log.Error("campaign recipient reset failed",
				"campaign_id", campaign.ID,
				"commune_id", recipient.CommuneID,
				"error", err)
		}
	}

	s.log.Info("campaign started",
		"campaign_id", campaign.ID,
		"departement", campaign.DepartementCode,
		"recipients", len(recipients))
	return transport.ToCampaignResponse(campaign), nil
}

func (s *Service) resetRecipient(ctx context.Context, recipient repository.Recipient) error {
	dossier, err := s.communes.GetCurrentDossier(ctx, recipient.CommuneID)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			return nil
		}
		return err
	}
	if dossier.Status != communedomain.DossierSubmitted && dossier.Status != communedomain.DossierAccepted {
		return nil
	}
	return s.communes.ArchiveAndReset(ctx, recipient.CommuneID)
}

// AdvanceStep moves an ongoing campaign's subscribed recipients to the
// step the campaign dates map the given date to, queuing step emails.
// A no-op before the launch date or when every recipient is already at
// the step.
func (s *Service) AdvanceStep(ctx context.Context, id uuid.UUID, date time.Time) (int, error) {
	campaign, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if campaign.Status != domain.StatusOngoing {
		return 0, apperr.InvalidTransition("only ongoing campaigns advance steps")
	}
	step, ok := campaign.Dates.StepForDate(date)
	if !ok {
		return 0, nil
	}

	moved, err := s.repo.AdvanceRecipients(ctx, id, step)
	if err != nil {
		return 0, err
	}
	if len(moved) > 0 {
		s.bus.Publish(ctx, events.CampaignStepReached{
			BaseEvent:       events.NewBaseEvent(),
			CampaignID:      campaign.ID,
			DepartementCode: campaign.DepartementCode,
			Step:            string(step),
		})
		s.log.Info("campaign step reached",
			"campaign_id", campaign.ID,
			"step", step,
			"recipients", len(moved))
	}
	return len(moved), nil
}

// Finish transitions an ongoing campaign to finished.
func (s *Service) Finish(ctx context.Context, id uuid.UUID) (transport.CampaignResponse, error) {
	campaign, err := s.repo.Finish(ctx, id)
	if err != nil {
		return transport.CampaignResponse{}, err
	}
	s.log.Info("campaign finished", "campaign_id", campaign.ID)
	return transport.ToCampaignResponse(campaign), nil
}

// RunScheduled walks every planned and ongoing campaign and applies the
// date-driven transitions: start at lancement, advance steps, finish at
// fin. The scheduler task calls it once per day.
func (s *Service) RunScheduled(ctx context.Context, date time.Time) error {
	planned, err := s.repo.ListByStatus(ctx, domain.StatusPlanned)
	if err != nil {
		return err
	}
	for _, campaign := range planned {
		if _, ok := campaign.Dates.StepForDate(date); !ok {
			continue
		}
		if _, err := s.Start(ctx, campaign.ID); err != nil {
			s.log.Error("scheduled campaign start failed",
				"campaign_id", campaign.ID, "error", err)
		}
	}

	ongoing, err := s.repo.ListByStatus(ctx, domain.StatusOngoing)
	if err != nil {
		return err
	}
	for _, campaign := range ongoing {
		if _, err := s.AdvanceStep(ctx, campaign.ID, date); err != nil {
			s.log.Error("scheduled campaign step advance failed",
				"campaign_id", campaign.ID, "error", err)
			continue
		}
		if step, ok := campaign.Dates.StepForDate(date); ok && step == domain.StepFin {
			if _, err := s.Finish(ctx, campaign.ID); err != nil {
				s.log.Error("scheduled campaign finish failed",
					"campaign_id", campaign.ID, "error", err)
			}
		}
	}
	return nil
}

// SetRecipientUnsubscribed flips the unsubscribe flag of a recipient.
func (s *Service) SetRecipientUnsubscribed(ctx context.Context, campaignID, communeID uuid.UUID, unsubscribed bool) error {
	return s.repo.SetRecipientUnsubscribed(ctx, campaignID, communeID, unsubscribed)
}
