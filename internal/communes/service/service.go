// Package service provides business logic for the commune workflow.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"patrimoine_backend/internal/communes/domain"
	"patrimoine_backend/internal/communes/repository"
	"patrimoine_backend/internal/communes/transport"
	"patrimoine_backend/internal/events"
	"patrimoine_backend/internal/notification/outbox"
	"patrimoine_backend/platform/logger"
	"patrimoine_backend/platform/phone"
)

// OutboxCanceller drops pending notifications that became moot.
type OutboxCanceller interface {
	CancelPending(ctx context.Context, kind string, payloadFilter map[string]any) error
}

// Service drives the commune and dossier workflow.
type Service struct {
	repo   repository.Repository
	outbox OutboxCanceller
	bus    events.Bus
	log    *logger.Logger
}

// New creates a new communes service.
func New(repo repository.Repository, outboxRepo OutboxCanceller, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, outbox: outboxRepo, bus: bus, log: log}
}

// GetByID retrieves a commune.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.CommuneResponse, error) {
	commune, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CommuneResponse{}, err
	}
	return toCommuneResponse(commune), nil
}

// GetByCodeInsee retrieves a commune by INSEE code.
func (s *Service) GetByCodeInsee(ctx context.Context, codeInsee string) (transport.CommuneResponse, error) {
	commune, err := s.repo.GetByCodeInsee(ctx, codeInsee)
	if err != nil {
		return transport.CommuneResponse{}, err
	}
	return toCommuneResponse(commune), nil
}

// GetCurrentDossier retrieves the commune's current dossier.
func (s *Service) GetCurrentDossier(ctx context.Context, communeID uuid.UUID) (transport.DossierResponse, error) {
	dossier, err := s.repo.GetCurrentDossier(ctx, communeID)
	if err != nil {
		return transport.DossierResponse{}, err
	}
	return toDossierResponse(dossier), nil
}

// Start opens the commune's inventory cycle.
func (s *Service) Start(ctx context.Context, communeID uuid.UUID) (transport.WorkflowResponse, error) {
	result, err := s.repo.Start(ctx, communeID)
	if err != nil {
		return transport.WorkflowResponse{}, err
	}

	s.log.Info("commune started recensement",
		"commune_id", result.Commune.ID, "code_insee", result.Commune.CodeInsee,
		"dossier_id", result.Dossier.ID)
	s.bus.Publish(ctx, events.CommuneStarted{
		BaseEvent: events.NewBaseEvent(),
		CommuneID: result.Commune.ID,
		CodeInsee: result.Commune.CodeInsee,
		DossierID: result.Dossier.ID,
	})
	return toWorkflowResponse(result), nil
}

// Complete closes the recensement phase and submits the dossier.
func (s *Service) Complete(ctx context.Context, communeID uuid.UUID) (transport.WorkflowResponse, error) {
	result, err := s.repo.Complete(ctx, communeID)
	if err != nil {
		return transport.WorkflowResponse{}, err
	}

	// The incomplete-dossier reminder no longer applies once submitted.
	if err := s.outbox.CancelPending(ctx, outbox.KindDossierIncompleteReminder,
		map[string]any{"dossier_id": result.Dossier.ID}); err != nil {
		s.log.Warn("could not cancel dossier reminder", "dossier_id", result.Dossier.ID, "error", err)
	}

	s.log.Info("commune completed recensement",
		"commune_id", result.Commune.ID, "code_insee", result.Commune.CodeInsee)
	s.bus.Publish(ctx, events.CommuneCompleted{
		BaseEvent: events.NewBaseEvent(),
		CommuneID: result.Commune.ID,
		CodeInsee: result.Commune.CodeInsee,
		DossierID: result.Dossier.ID,
	})
	return toWorkflowResponse(result), nil
}

// ReturnToStarted reopens a completed commune.
func (s *Service) ReturnToStarted(ctx context.Context, communeID uuid.UUID) (transport.WorkflowResponse, error) {
	result, err := s.repo.ReturnToStarted(ctx, communeID)
	if err != nil {
		return transport.WorkflowResponse{}, err
	}

	s.log.Info("commune returned to started",
		"commune_id", result.Commune.ID, "code_insee", result.Commune.CodeInsee)
	s.bus.Publish(ctx, events.CommuneReturnedToStarted{
		BaseEvent: events.NewBaseEvent(),
		CommuneID: result.Commune.ID,
		CodeInsee: result.Commune.CodeInsee,
		DossierID: result.Dossier.ID,
	})
	return toWorkflowResponse(result), nil
}

// AcceptDossier records the conservateur's acceptance.
func (s *Service) AcceptDossier(ctx context.Context, dossierID, conservateurID uuid.UUID) (transport.DossierResponse, error) {
	dossier, err := s.repo.AcceptDossier(ctx, dossierID, conservateurID)
	if err != nil {
		return transport.DossierResponse{}, err
	}

	s.log.Info("dossier accepted", "dossier_id", dossier.ID, "conservateur_id", conservateurID)
	s.bus.Publish(ctx, events.DossierAccepted{
		BaseEvent:      events.NewBaseEvent(),
		DossierID:      dossier.ID,
		CommuneID:      dossier.CommuneID,
		ConservateurID: conservateurID,
	})
	return toDossierResponse(dossier), nil
}

// ReturnDossierToConstruction is the standalone administrative correction.
func (s *Service) ReturnDossierToConstruction(ctx context.Context, dossierID uuid.UUID) (transport.DossierResponse, error) {
	dossier, err := s.repo.ReturnDossierToConstruction(ctx, dossierID)
	if err != nil {
		return transport.DossierResponse{}, err
	}

	s.log.Info("dossier returned to construction", "dossier_id", dossier.ID)
	return toDossierResponse(dossier), nil
}

// ArchiveDossier closes a cycle for good.
func (s *Service) ArchiveDossier(ctx context.Context, dossierID uuid.UUID) (transport.DossierResponse, error) {
	dossier, err := s.repo.ArchiveDossier(ctx, dossierID)
	if err != nil {
		return transport.DossierResponse{}, err
	}

	s.log.Info("dossier archived", "dossier_id", dossier.ID)
	s.bus.Publish(ctx, events.DossierArchived{
		BaseEvent: events.NewBaseEvent(),
		DossierID: dossier.ID,
		CommuneID: dossier.CommuneID,
	})
	return toDossierResponse(dossier), nil
}

// RunObjetsVertsCheck walks the submitted dossiers and sends the
// automatic all-green reply to every commune that qualifies on
// sendDate. Returns the number of replies issued. Failures on a single
// dossier do not stop the sweep.
func (s *Service) RunObjetsVertsCheck(ctx context.Context, sendDate time.Time) (int, error) {
	candidates, err := s.repo.ListObjetsVertsCandidates(ctx)
	if err != nil {
		return 0, err
	}

	replied := 0
	for _, candidate := range candidates {
		if !domain.ShallReceiveObjetsVerts(candidate.Input(), sendDate) {
			continue
		}
		if _, err := s.repo.MarkRepliedAutomatically(ctx, candidate.DossierID); err != nil {
			s.log.Error("objets verts reply failed",
				"dossier_id", candidate.DossierID, "error", err)
			continue
		}
		replied++
	}
	if replied > 0 {
		s.log.Info("objets verts replies sent", "count", replied)
	}
	return replied, nil
}

// UpdateContactPhone stores the mairie phone number in E.164 form.
func (s *Service) UpdateContactPhone(ctx context.Context, communeID uuid.UUID, phoneNumber string) (transport.CommuneResponse, error) {
	commune, err := s.repo.UpdateContactPhone(ctx, communeID, phone.NormalizeE164(phoneNumber))
	if err != nil {
		return transport.CommuneResponse{}, err
	}
	return toCommuneResponse(commune), nil
}

func toCommuneResponse(c repository.Commune) transport.CommuneResponse {
	return transport.CommuneResponse{
		ID:              c.ID,
		CodeInsee:       c.CodeInsee,
		Nom:             c.Nom,
		DepartementCode: c.DepartementCode,
		PhoneNumber:     c.PhoneNumber,
		Status:          string(c.Status),
		CompletedAt:     c.CompletedAt,
		DossierID:       c.DossierID,
		ObjetsCount:     c.ObjetsCount,
		DisparusCount:   c.DisparusCount,
		EnPerilCount:    c.EnPerilCount,
	}
}

func toDossierResponse(d repository.Dossier) transport.DossierResponse {
	return transport.DossierResponse{
		ID:                     d.ID,
		CommuneID:              d.CommuneID,
		Status:                 string(d.Status),
		SubmittedAt:            d.SubmittedAt,
		RepliedAutomaticallyAt: d.RepliedAutomaticallyAt,
		AcceptedAt:             d.AcceptedAt,
		ConservateurID:         d.ConservateurID,
		NotesCommune:           d.NotesCommune,
		NotesConservateur:      d.NotesConservateur,
	}
}

func toWorkflowResponse(cd repository.CommuneDossier) transport.WorkflowResponse {
	return transport.WorkflowResponse{
		Commune: toCommuneResponse(cd.Commune),
		Dossier: toDossierResponse(cd.Dossier),
	}
}
