package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"patrimoine_backend/internal/campaigns/domain"
	"patrimoine_backend/internal/notification/outbox"
)

// Repository defines persistence for campaigns and their recipients.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Campaign, error)
	ListByDepartement(ctx context.Context, departementCode string) ([]Campaign, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]Campaign, error)
	Create(ctx context.Context, p CreateParams) (Campaign, error)
	UpdateDates(ctx context.Context, id uuid.UUID, dates domain.Dates) (Campaign, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// HasOverlapping reports whether another planned/ongoing campaign of
	// the departement intersects [lancement, fin].
	HasOverlapping(ctx context.Context, departementCode string, dates domain.Dates, excludeID uuid.UUID) (bool, error)

	// EligibleCommunes lists the communes of the departement with at
	// least one user, at least one objet and status inactive.
	EligibleCommunes(ctx context.Context, departementCode string) ([]EligibleCommune, error)
	AddRecipients(ctx context.Context, campaignID uuid.UUID, communeIDs []uuid.UUID) (int, error)
	ListRecipients(ctx context.Context, campaignID uuid.UUID) ([]Recipient, error)
	SetRecipientUnsubscribed(ctx context.Context, campaignID, communeID uuid.UUID, unsubscribed bool) error
	// CountRecipientsNotInactive counts recipient communes that are not
	// inactive; planning requires it to be zero.
	CountRecipientsNotInactive(ctx context.Context, campaignID uuid.UUID) (int, error)

	Plan(ctx context.Context, id uuid.UUID) (Campaign, error)
	Start(ctx context.Context, id uuid.UUID) (Campaign, []Recipient, error)
	Finish(ctx context.Context, id uuid.UUID) (Campaign, error)
	// AdvanceRecipients moves every subscribed recipient not yet at
	// step to it and queues one step email per moved recipient in the
	// same transaction. Returns the moved recipients.
	AdvanceRecipients(ctx context.Context, campaignID uuid.UUID, step domain.Step) ([]Recipient, error)
}

// OutboxWriter queues notifications inside a repository transaction.
type OutboxWriter interface {
	InsertTx(ctx context.Context, tx pgx.Tx, p outbox.InsertParams) (uuid.UUID, error)
}
