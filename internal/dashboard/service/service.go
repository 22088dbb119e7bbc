// Package service assembles the curator dashboard views.
package service

import (
	"context"

	"github.com/google/uuid"

	communerepo "patrimoine_backend/internal/communes/repository"
	"patrimoine_backend/internal/dashboard/domain"
	"patrimoine_backend/internal/dashboard/repository"
	"patrimoine_backend/internal/dashboard/transport"
	recdomain "patrimoine_backend/internal/recensements/domain"
	recrepo "patrimoine_backend/internal/recensements/repository"
	"patrimoine_backend/platform/apperr"
	"patrimoine_backend/platform/logger"
)

// Service serves the dashboard listing and detail views.
type Service struct {
	repo         repository.Repository
	communes     communerepo.Repository
	recensements recrepo.Repository
	log          *logger.Logger
}

// New creates a new dashboard service.
func New(repo repository.Repository, communesRepo communerepo.Repository, recensementsRepo recrepo.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, communes: communesRepo, recensements: recensementsRepo, log: log}
}

// ListCommunes pages through a departement ranked by statut_global,
// using the SQL aggregate.
func (s *Service) ListCommunes(ctx context.Context, p repository.ListParams) (transport.ListResponse, error) {
	page, err := s.repo.ListCommunes(ctx, p)
	if err != nil {
		return transport.ListResponse{}, err
	}

	rows := make([]transport.CommuneRowResponse, 0, len(page.Rows))
	for _, row := range page.Rows {
		rows = append(rows, toRowResponse(row))
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 || p.PerPage > 100 {
		p.PerPage = 25
	}
	return transport.ListResponse{Communes: rows, Total: page.Total, Page: p.Page, PerPage: p.PerPage}, nil
}

// GetCommuneDetail builds the single-commune view. The statut is
// computed in memory from the commune, its current dossier and the
// dossier's recensements; the SQL aggregate is only used for listings.
func (s *Service) GetCommuneDetail(ctx context.Context, communeID uuid.UUID) (transport.CommuneDetailResponse, error) {
	commune, err := s.communes.GetByID(ctx, communeID)
	if err != nil {
		return transport.CommuneDetailResponse{}, err
	}

	facts := domain.CommuneFacts{CommuneStatus: commune.Status}
	var (
		dossier communerepo.Dossier
		recs    []recrepo.Recensement
	)
	if commune.DossierID != nil {
		dossier, err = s.communes.GetDossierByID(ctx, *commune.DossierID)
		if err != nil && apperr.GetKind(err) != apperr.KindNotFound {
			return transport.CommuneDetailResponse{}, err
		}
		if err == nil {
			facts.HasDossier = true
			facts.DossierStatus = dossier.Status
			facts.RepliedAutomatically = dossier.RepliedAutomaticallyAt != nil

			recs, err = s.recensements.ListByDossier(ctx, dossier.ID)
			if err != nil {
				return transport.CommuneDetailResponse{}, err
			}
		}
	}

	detail := transport.CommuneDetailResponse{
		CommuneRowResponse: transport.CommuneRowResponse{
			ID:            commune.ID,
			CodeInsee:     commune.CodeInsee,
			Nom:           commune.Nom,
			Status:        string(commune.Status),
			ObjetsCount:   commune.ObjetsCount,
			DisparusCount: commune.DisparusCount,
			EnPerilCount:  commune.EnPerilCount,
			DossierID:     commune.DossierID,
			CompletedAt:   commune.CompletedAt,
		},
	}
	if facts.HasDossier {
		status := string(dossier.Status)
		detail.DossierStatus = &status
		detail.SubmittedAt = dossier.SubmittedAt
	}

	recFacts := make([]domain.RecensementFacts, 0, len(recs))
	for _, rec := range recs {
		recFacts = append(recFacts, domain.RecensementFacts{
			Deleted:     rec.Deleted(),
			Prioritaire: recdomain.Prioritaire(rec.EtatSanitaire, rec.Localisation),
			Analysed:    rec.Analysed(),
		})
		detail.RecensementsTotal++
		if recdomain.Prioritaire(rec.EtatSanitaire, rec.Localisation) {
			detail.RecensementsPrioritaire++
		}
		if rec.Analysed() {
			detail.RecensementsAnalysed++
		}
	}

	statut := domain.ComputeStatutGlobal(facts, recFacts)
	detail.StatutGlobal = int(statut)
	detail.StatutGlobalLabel = statut.String()
	return detail, nil
}

func toRowResponse(row repository.CommuneRow) transport.CommuneRowResponse {
	return transport.CommuneRowResponse{
		ID:                row.ID,
		CodeInsee:         row.CodeInsee,
		Nom:               row.Nom,
		Status:            row.Status,
		StatutGlobal:      row.StatutGlobal,
		StatutGlobalLabel: domain.StatutGlobal(row.StatutGlobal).String(),
		ObjetsCount:       row.ObjetsCount,
		DisparusCount:     row.DisparusCount,
		EnPerilCount:      row.EnPerilCount,
		DossierID:         row.DossierID,
		DossierStatus:     row.DossierStatus,
		SubmittedAt:       row.SubmittedAt,
		CompletedAt:       row.CompletedAt,
	}
}
