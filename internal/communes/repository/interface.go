package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"patrimoine_backend/internal/notification/outbox"
)

// Repository is the persistence port for communes and dossiers.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Commune, error)
	GetByCodeInsee(ctx context.Context, codeInsee string) (Commune, error)
	ListByDepartement(ctx context.Context, departementCode string) ([]Commune, error)
	GetDossierByID(ctx context.Context, id uuid.UUID) (Dossier, error)
	UpdateContactPhone(ctx context.Context, communeID uuid.UUID, phoneNumber string) (Commune, error)
	GetCurrentDossier(ctx context.Context, communeID uuid.UUID) (Dossier, error)

	// Coupled workflow transitions, each one atomic transaction.
	Start(ctx context.Context, communeID uuid.UUID) (CommuneDossier, error)
	Complete(ctx context.Context, communeID uuid.UUID) (CommuneDossier, error)
	ReturnToStarted(ctx context.Context, communeID uuid.UUID) (CommuneDossier, error)

	// Standalone dossier transitions.
	AcceptDossier(ctx context.Context, dossierID uuid.UUID, conservateurID uuid.UUID) (Dossier, error)
	ReturnDossierToConstruction(ctx context.Context, dossierID uuid.UUID) (Dossier, error)
	ArchiveDossier(ctx context.Context, dossierID uuid.UUID) (Dossier, error)

	// ArchiveAndReset closes a recipient commune's reviewed cycle so a
	// new campaign can start one: archives the dossier and returns the
	// commune to inactive in the same transaction.
	ArchiveAndReset(ctx context.Context, communeID uuid.UUID) error

	// MarkRepliedAutomatically stamps the automatic reply on a submitted
	// dossier and queues the outbox mail in the same transaction.
	MarkRepliedAutomatically(ctx context.Context, dossierID uuid.UUID) (Dossier, error)

	// ListObjetsVertsCandidates returns submitted dossiers the periodic
	// objets-verts check evaluates.
	ListObjetsVertsCandidates(ctx context.Context) ([]ObjetsVertsCandidate, error)
}

// OutboxWriter is the slice of the outbox repository the workflow needs:
// inserting notification intents inside the workflow transaction.
type OutboxWriter interface {
	InsertTx(ctx context.Context, tx pgx.Tx, p outbox.InsertParams) (uuid.UUID, error)
}
