// Package service provides business logic for recensements.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"patrimoine_backend/internal/events"
	"patrimoine_backend/internal/recensements/domain"
	"patrimoine_backend/internal/recensements/repository"
	"patrimoine_backend/internal/recensements/transport"
	"patrimoine_backend/platform/apperr"
	"patrimoine_backend/platform/logger"
	"patrimoine_backend/platform/sanitize"
)

// Service drives recensement creation, edits and analysis.
type Service struct {
	repo repository.Repository
	bus  events.Bus
	log  *logger.Logger
}

// New creates a new recensements service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// GetByID retrieves a recensement.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.RecensementResponse, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.RecensementResponse{}, err
	}
	return toResponse(rec), nil
}

// ListByDossier lists the live recensements of a dossier.
func (s *Service) ListByDossier(ctx context.Context, dossierID uuid.UUID) ([]transport.RecensementResponse, error) {
	recs, err := s.repo.ListByDossier(ctx, dossierID)
	if err != nil {
		return nil, err
	}
	result := make([]transport.RecensementResponse, 0, len(recs))
	for _, rec := range recs {
		result = append(result, toResponse(rec))
	}
	return result, nil
}

// Create opens a recensement for an objet in the commune's current dossier.
func (s *Service) Create(ctx context.Context, req transport.CreateRecensementRequest) (transport.RecensementResponse, error) {
	etat := domain.EtatSanitaire(req.EtatSanitaire)
	localisation := domain.Localisation(req.Localisation)
	if err := validateClassification(&etat, &localisation); err != nil {
		return transport.RecensementResponse{}, err
	}

	rec, err := s.repo.Create(ctx, repository.CreateParams{
		ObjetID:       req.ObjetID,
		DossierID:     req.DossierID,
		EtatSanitaire: etat,
		Localisation:  localisation,
		EdificeNom:    req.EdificeNom,
		NotesCommune:  sanitize.TextPtr(req.NotesCommune),
		Photos:        req.Photos,
	})
	if err != nil {
		return transport.RecensementResponse{}, err
	}

	s.log.Info("recensement created",
		"recensement_id", rec.ID, "objet_id", rec.ObjetID, "dossier_id", rec.DossierID,
		"prioritaire", domain.Prioritaire(rec.EtatSanitaire, rec.Localisation))
	return toResponse(rec), nil
}

// Update edits observation fields of a recensement.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateRecensementRequest) (transport.RecensementResponse, error) {
	params := repository.UpdateParams{
		EdificeNom:   req.EdificeNom,
		NotesCommune: sanitize.TextPtr(req.NotesCommune),
		Photos:       req.Photos,
	}
	if req.EtatSanitaire != nil {
		etat := domain.EtatSanitaire(*req.EtatSanitaire)
		if err := validateClassification(&etat, nil); err != nil {
			return transport.RecensementResponse{}, err
		}
		params.EtatSanitaire = &etat
	}
	if req.Localisation != nil {
		localisation := domain.Localisation(*req.Localisation)
		if err := validateClassification(nil, &localisation); err != nil {
			return transport.RecensementResponse{}, err
		}
		params.Localisation = &localisation
	}

	rec, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return transport.RecensementResponse{}, err
	}
	return toResponse(rec), nil
}

// Complete marks the recensement done.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (transport.RecensementResponse, error) {
	rec, err := s.repo.Complete(ctx, id)
	if err != nil {
		return transport.RecensementResponse{}, err
	}
	s.log.Info("recensement completed", "recensement_id", rec.ID, "objet_id", rec.ObjetID)
	return toResponse(rec), nil
}

// Analyse records the conservateur review and publishes the analysis event.
func (s *Service) Analyse(ctx context.Context, id uuid.UUID, conservateurID uuid.UUID, req transport.AnalyseRecensementRequest) (transport.RecensementResponse, error) {
	rec, err := s.repo.Analyse(ctx, id, repository.AnalyseParams{
		ConservateurID: conservateurID,
		AnalyseNotes:   sanitize.TextPtr(req.AnalyseNotes),
	})
	if err != nil {
		return transport.RecensementResponse{}, err
	}

	s.log.Info("recensement analysed",
		"recensement_id", rec.ID, "conservateur_id", conservateurID)
	s.bus.Publish(ctx, events.RecensementAnalysed{
		BaseEvent:      events.NewBaseEvent(),
		RecensementID:  rec.ID,
		DossierID:      rec.DossierID,
		ConservateurID: conservateurID,
	})
	return toResponse(rec), nil
}

// Delete soft-deletes a recensement with a reason.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, reason string) error {
	if err := s.repo.SoftDelete(ctx, id, reason); err != nil {
		return err
	}
	s.log.Info("recensement soft-deleted", "recensement_id", id, "reason", reason)
	return nil
}

func validateClassification(etat *domain.EtatSanitaire, localisation *domain.Localisation) error {
	if etat != nil && !etat.IsValid() {
		return apperr.Validation("invalid etat_sanitaire", apperr.FieldError{
			Field: "etat_sanitaire", Message: fmt.Sprintf("unknown value %q", *etat)})
	}
	if localisation != nil && !localisation.IsValid() {
		return apperr.Validation("invalid localisation", apperr.FieldError{
			Field: "localisation", Message: fmt.Sprintf("unknown value %q", *localisation)})
	}
	return nil
}

func toResponse(rec repository.Recensement) transport.RecensementResponse {
	return transport.RecensementResponse{
		ID:            rec.ID,
		ObjetID:       rec.ObjetID,
		DossierID:     rec.DossierID,
		Status:        string(rec.Status),
		EtatSanitaire: string(rec.EtatSanitaire),
		Localisation:  string(rec.Localisation),
		EdificeNom:    rec.EdificeNom,
		NotesCommune:  rec.NotesCommune,
		Photos:        rec.Photos,
		Prioritaire:   domain.Prioritaire(rec.EtatSanitaire, rec.Localisation),
		AnalyseNotes:  rec.AnalyseNotes,
		AnalysedAt:    rec.AnalysedAt,
		AnalysedBy:    rec.AnalysedBy,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}
