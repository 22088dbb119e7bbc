package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"patrimoine_backend/internal/communes/domain"
	recdomain "patrimoine_backend/internal/recensements/domain"
)

// ObjetsVertsCandidate is a submitted dossier evaluated for the
// automatic all-green reply.
type ObjetsVertsCandidate struct {
	DossierID              uuid.UUID
	CommuneID              uuid.UUID
	CommuneStatus          domain.CommuneStatus
	DossierStatus          domain.DossierStatus
	SubmittedAt            *time.Time
	RepliedAutomaticallyAt *time.Time
	HasPrioritaires        bool
	UnderExamen            bool
}

// Input converts the row to the domain eligibility input.
func (c ObjetsVertsCandidate) Input() domain.ObjetsVertsInput {
	return domain.ObjetsVertsInput{
		CommuneStatus:          c.CommuneStatus,
		DossierStatus:          c.DossierStatus,
		SubmittedAt:            c.SubmittedAt,
		RepliedAutomaticallyAt: c.RepliedAutomaticallyAt,
		HasPrioritaires:        c.HasPrioritaires,
		UnderExamen:            c.UnderExamen,
	}
}

// ListObjetsVertsCandidates returns the submitted, not yet replied
// dossiers with the facts the eligibility rule needs. The age and
// weekday checks stay in the domain rule.
func (r *Repo) ListObjetsVertsCandidates(ctx context.Context) ([]ObjetsVertsCandidate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT d.id, c.id, c.status, d.status, d.submitted_at, d.replied_automatically_at,
			EXISTS (
				SELECT 1 FROM recensements r
				WHERE r.dossier_id = d.id AND r.deleted_at IS NULL
					AND `+recdomain.PrioritaireSQL+`
			),
			EXISTS (
				SELECT 1 FROM recensements r
				WHERE r.dossier_id = d.id AND r.deleted_at IS NULL
					AND r.analysed_at IS NOT NULL
			)
		FROM dossiers d
		JOIN communes c ON c.id = d.commune_id
		WHERE d.status = 'submitted' AND d.replied_automatically_at IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("list objets verts candidates: %w", err)
	}
	defer rows.Close()

	var result []ObjetsVertsCandidate
	for rows.Next() {
		var c ObjetsVertsCandidate
		err := rows.Scan(&c.DossierID, &c.CommuneID, &c.CommuneStatus, &c.DossierStatus,
			&c.SubmittedAt, &c.RepliedAutomaticallyAt, &c.HasPrioritaires, &c.UnderExamen)
		if err != nil {
			return nil, fmt.Errorf("scan objets verts candidate: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
