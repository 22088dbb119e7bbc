// Package service provides read access to objets and sync reports.
package service

import (
	"context"

	"github.com/google/uuid"

	"patrimoine_backend/internal/objets/repository"
	"patrimoine_backend/internal/objets/transport"
	"patrimoine_backend/platform/logger"
)

const defaultReportLimit = 20

// Service serves objets and the reconciliation history.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new objets service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetByID retrieves an objet.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.ObjetResponse, error) {
	objet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ObjetResponse{}, err
	}
	return toResponse(objet), nil
}

// GetByPalissyRef retrieves an objet by catalogue reference.
func (s *Service) GetByPalissyRef(ctx context.Context, ref string) (transport.ObjetResponse, error) {
	objet, err := s.repo.GetByPalissyRef(ctx, ref)
	if err != nil {
		return transport.ObjetResponse{}, err
	}
	return toResponse(objet), nil
}

// ListByCommune lists the objets located in a commune.
func (s *Service) ListByCommune(ctx context.Context, codeInsee string) ([]transport.ObjetResponse, error) {
	objets, err := s.repo.ListByCommune(ctx, codeInsee)
	if err != nil {
		return nil, err
	}
	result := make([]transport.ObjetResponse, 0, len(objets))
	for _, objet := range objets {
		result = append(result, toResponse(objet))
	}
	return result, nil
}

// ListSyncReports returns recent reconciliation summaries.
func (s *Service) ListSyncReports(ctx context.Context) ([]transport.SyncReportResponse, error) {
	reports, err := s.repo.ListSyncReports(ctx, defaultReportLimit)
	if err != nil {
		return nil, err
	}
	result := make([]transport.SyncReportResponse, 0, len(reports))
	for _, rec := range reports {
		result = append(result, transport.SyncReportResponse{
			ID:         rec.ID,
			StartedAt:  rec.StartedAt,
			DurationMS: rec.DurationMS,
			Counters:   rec.Counters,
			Failures:   rec.Failures,
			Total:      rec.Total,
		})
	}
	return result, nil
}

func toResponse(o repository.Objet) transport.ObjetResponse {
	return transport.ObjetResponse{
		ID:               o.ID,
		PalissyRef:       o.PalissyRef,
		Nom:              o.Nom,
		Categorie:        o.Categorie,
		Protection:       o.Protection,
		CraftedAt:        o.CraftedAt,
		Materiaux:        o.Materiaux,
		CommuneNom:       o.CommuneNom,
		CommuneCodeInsee: o.CommuneCodeInsee,
		DepartementCode:  o.DepartementCode,
		EdificeID:        o.EdificeID,
		EdificeNom:       o.EdificeNom,
		Emplacement:      o.Emplacement,
		Photos:           o.Photos,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}
