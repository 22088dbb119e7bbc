package repository

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for recensements. Writes
// that depend on the state of the parent dossier or commune run inside
// a single transaction with row locks.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Recensement, error)
	ListByDossier(ctx context.Context, dossierID uuid.UUID) ([]Recensement, error)
	// CountByObjet counts every recensement of an objet, soft-deleted
	// ones included. The catalogue synchronizer uses it to decide
	// whether a commune change may be applied.
	CountByObjet(ctx context.Context, objetID uuid.UUID) (int, error)

	Create(ctx context.Context, p CreateParams) (Recensement, error)
	Update(ctx context.Context, id uuid.UUID, p UpdateParams) (Recensement, error)
	Complete(ctx context.Context, id uuid.UUID) (Recensement, error)
	Analyse(ctx context.Context, id uuid.UUID, p AnalyseParams) (Recensement, error)
	SoftDelete(ctx context.Context, id uuid.UUID, reason string) error
	// SoftDeleteByObjet cascades a soft delete over every live
	// recensement of the objet, recording the shared reason.
	SoftDeleteByObjet(ctx context.Context, objetID uuid.UUID, reason string) (int, error)
	HardDelete(ctx context.Context, id uuid.UUID) error
}
