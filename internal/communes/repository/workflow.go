package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"patrimoine_backend/internal/communes/domain"
	"patrimoine_backend/internal/notification/outbox"
	"patrimoine_backend/platform/apperr"
)

// Reminder sent to communes whose dossier is still in construction.
const dossierIncompleteReminderDelay = 14 * 24 * time.Hour

// reminderPayload is the outbox payload for dossier follow-ups.
type reminderPayload struct {
	DossierID uuid.UUID `json:"dossier_id"`
	CommuneID uuid.UUID `json:"commune_id"`
	CodeInsee string    `json:"code_insee"`
}

func prefixColumns(prefix, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = prefix + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// lockCommune loads the commune row under FOR UPDATE so concurrent
// transitions on the same commune serialize at the store.
func lockCommune(ctx context.Context, tx pgx.Tx, communeID uuid.UUID) (Commune, error) {
	query := `SELECT ` + communeColumns + ` FROM communes WHERE id = $1 FOR UPDATE`
	commune, err := scanCommune(tx.QueryRow(ctx, query, communeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Commune{}, apperr.NotFound(communeNotFoundMessage)
		}
		return Commune{}, fmt.Errorf("lock commune: %w", err)
	}
	return commune, nil
}

func lockDossier(ctx context.Context, tx pgx.Tx, dossierID uuid.UUID) (Dossier, error) {
	query := `SELECT ` + dossierColumns + ` FROM dossiers WHERE id = $1 FOR UPDATE`
	dossier, err := scanDossier(tx.QueryRow(ctx, query, dossierID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Dossier{}, apperr.NotFound(dossierNotFoundMessage)
		}
		return Dossier{}, fmt.Errorf("lock dossier: %w", err)
	}
	return dossier, nil
}

func lockCurrentDossier(ctx context.Context, tx pgx.Tx, commune Commune) (Dossier, error) {
	if commune.DossierID == nil {
		return Dossier{}, apperr.NotFound(dossierNotFoundMessage)
	}
	return lockDossier(ctx, tx, *commune.DossierID)
}

// dossierCommuneID resolves the owning commune without locking the
// dossier row. commune_id never changes, so the read needs no lock.
func dossierCommuneID(ctx context.Context, tx pgx.Tx, dossierID uuid.UUID) (uuid.UUID, error) {
	var communeID uuid.UUID
	err := tx.QueryRow(ctx,
		`SELECT commune_id FROM dossiers WHERE id = $1`, dossierID).Scan(&communeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, apperr.NotFound(dossierNotFoundMessage)
		}
		return uuid.Nil, fmt.Errorf("resolve dossier commune: %w", err)
	}
	return communeID, nil
}

// Start opens a new inventory cycle: validates the transition, creates
// the dossier in construction, moves the commune to started and queues
// the incomplete-dossier reminder. One transaction; any failure leaves
// no orphan dossier and no status change.
func (r *Repo) Start(ctx context.Context, communeID uuid.UUID) (CommuneDossier, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return CommuneDossier{}, fmt.Errorf("begin start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	commune, err := lockCommune(ctx, tx, communeID)
	if err != nil {
		return CommuneDossier{}, err
	}

	target, err := domain.Start(commune.Status, commune.DossierID != nil)
	if err != nil {
		return CommuneDossier{}, err
	}

	dossier, err := scanDossier(tx.QueryRow(ctx,
		`INSERT INTO dossiers (commune_id, status)
		 VALUES ($1, $2)
		 RETURNING `+dossierColumns,
		commune.ID, target.Dossier))
	if err != nil {
		return CommuneDossier{}, fmt.Errorf("create dossier: %w", err)
	}

	commune, err = scanCommune(tx.QueryRow(ctx,
		`UPDATE communes
		 SET status = $2, dossier_id = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+communeColumns,
		commune.ID, target.Commune, dossier.ID))
	if err != nil {
		return CommuneDossier{}, fmt.Errorf("update commune status: %w", err)
	}

	_, err = r.outbox.InsertTx(ctx, tx, outbox.InsertParams{
		Kind:     outbox.KindDossierIncompleteReminder,
		Template: "relance_dossier_incomplet",
		Payload:  reminderPayload{DossierID: dossier.ID, CommuneID: commune.ID, CodeInsee: commune.CodeInsee},
		RunAt:    time.Now().UTC().Add(dossierIncompleteReminderDelay),
	})
	if err != nil {
		return CommuneDossier{}, fmt.Errorf("queue dossier reminder: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return CommuneDossier{}, fmt.Errorf("commit start: %w", err)
	}
	return CommuneDossier{Commune: commune, Dossier: dossier}, nil
}

// Complete submits the current dossier and marks the commune completed,
// atomically. A failed dossier submit leaves the commune untouched.
func (r *Repo) Complete(ctx context.Context, communeID uuid.UUID) (CommuneDossier, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return CommuneDossier{}, fmt.Errorf("begin complete transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	commune, err := lockCommune(ctx, tx, communeID)
	if err != nil {
		return CommuneDossier{}, err
	}
	dossier, err := lockCurrentDossier(ctx, tx, commune)
	if err != nil {
		return CommuneDossier{}, err
	}

	target, err := domain.Complete(commune.Status, dossier.Status)
	if err != nil {
		return CommuneDossier{}, err
	}

	dossier, err = scanDossier(tx.QueryRow(ctx,
		`UPDATE dossiers
		 SET status = $2, submitted_at = now(), updated_at = now()
		 WHERE id = $1
		 RETURNING `+dossierColumns,
		dossier.ID, target.Dossier))
	if err != nil {
		return CommuneDossier{}, fmt.Errorf("submit dossier: %w", err)
	}

	commune, err = scanCommune(tx.QueryRow(ctx,
		`UPDATE communes
		 SET status = $2, completed_at = now(), updated_at = now()
		 WHERE id = $1
		 RETURNING `+communeColumns,
		commune.ID, target.Commune))
	if err != nil {
		return CommuneDossier{}, fmt.Errorf("complete commune: %w", err)
	}

	_, err = r.outbox.InsertTx(ctx, tx, outbox.InsertParams{
		Kind:     outbox.KindDossierSubmittedNotice,
		Template: "dossier_soumis",
		Payload:  reminderPayload{DossierID: dossier.ID, CommuneID: commune.ID, CodeInsee: commune.CodeInsee},
	})
	if err != nil {
		return CommuneDossier{}, fmt.Errorf("queue submitted notice: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return CommuneDossier{}, fmt.Errorf("commit complete: %w", err)
	}
	return CommuneDossier{Commune: commune, Dossier: dossier}, nil
}

// ReturnToStarted reopens a completed commune and returns its submitted
// dossier to construction, atomically.
func (r *Repo) ReturnToStarted(ctx context.Context, communeID uuid.UUID) (CommuneDossier, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return CommuneDossier{}, fmt.Errorf("begin return transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	commune, err := lockCommune(ctx, tx, communeID)
	if err != nil {
		return CommuneDossier{}, err
	}
	dossier, err := lockCurrentDossier(ctx, tx, commune)
	if err != nil {
		return CommuneDossier{}, err
	}

	target, err := domain.ReturnToStarted(commune.Status, dossier.Status)
	if err != nil {
		return CommuneDossier{}, err
	}

	dossier, err = scanDossier(tx.QueryRow(ctx,
		`UPDATE dossiers
		 SET status = $2, submitted_at = NULL, updated_at = now()
		 WHERE id = $1
		 RETURNING `+dossierColumns,
		dossier.ID, target.Dossier))
	if err != nil {
		return CommuneDossier{}, fmt.Errorf("return dossier to construction: %w", err)
	}

	commune, err = scanCommune(tx.QueryRow(ctx,
		`UPDATE communes
		 SET status = $2, completed_at = NULL, updated_at = now()
		 WHERE id = $1
		 RETURNING `+communeColumns,
		commune.ID, target.Commune))
	if err != nil {
		return CommuneDossier{}, fmt.Errorf("reopen commune: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return CommuneDossier{}, fmt.Errorf("commit return: %w", err)
	}
	return CommuneDossier{Commune: commune, Dossier: dossier}, nil
}

// AcceptDossier records the conservateur's review on a submitted dossier.
func (r *Repo) AcceptDossier(ctx context.Context, dossierID uuid.UUID, conservateurID uuid.UUID) (Dossier, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Dossier{}, fmt.Errorf("begin accept transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	dossier, err := lockDossier(ctx, tx, dossierID)
	if err != nil {
		return Dossier{}, err
	}

	target, err := domain.AcceptDossier(dossier.Status)
	if err != nil {
		return Dossier{}, err
	}

	dossier, err = scanDossier(tx.QueryRow(ctx,
		`UPDATE dossiers
		 SET status = $2, accepted_at = now(), conservateur_id = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+dossierColumns,
		dossier.ID, target, conservateurID))
	if err != nil {
		return Dossier{}, fmt.Errorf("accept dossier: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Dossier{}, fmt.Errorf("commit accept: %w", err)
	}
	return dossier, nil
}

// ReturnDossierToConstruction is the standalone administrative correction,
// legal only from submitted. The owning commune reopens with it.
func (r *Repo) ReturnDossierToConstruction(ctx context.Context, dossierID uuid.UUID) (Dossier, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Dossier{}, fmt.Errorf("begin return transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the commune before its dossier, in the same order as the
	// commune-side transitions, so concurrent workflows on the pair
	// cannot deadlock.
	communeID, err := dossierCommuneID(ctx, tx, dossierID)
	if err != nil {
		return Dossier{}, err
	}
	commune, err := lockCommune(ctx, tx, communeID)
	if err != nil {
		return Dossier{}, err
	}
	dossier, err := lockDossier(ctx, tx, dossierID)
	if err != nil {
		return Dossier{}, err
	}

	target, err := domain.ReturnDossierToConstruction(dossier.Status)
	if err != nil {
		return Dossier{}, err
	}

	dossier, err = scanDossier(tx.QueryRow(ctx,
		`UPDATE dossiers
		 SET status = $2, submitted_at = NULL, updated_at = now()
		 WHERE id = $1
		 RETURNING `+dossierColumns,
		dossier.ID, target))
	if err != nil {
		return Dossier{}, fmt.Errorf("return dossier to construction: %w", err)
	}

	// A completed commune goes back to started alongside its dossier.
	if commune.Status == domain.CommuneCompleted {
		if _, err := tx.Exec(ctx,
			`UPDATE communes
			 SET status = $2, completed_at = NULL, updated_at = now()
			 WHERE id = $1`,
			commune.ID, domain.CommuneStarted); err != nil {
			return Dossier{}, fmt.Errorf("reopen commune: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Dossier{}, fmt.Errorf("commit return: %w", err)
	}
	return dossier, nil
}

// ArchiveDossier closes a cycle from any non-archived status and detaches
// it from the commune.
func (r *Repo) ArchiveDossier(ctx context.Context, dossierID uuid.UUID) (Dossier, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Dossier{}, fmt.Errorf("begin archive transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Same lock order as the commune-side transitions: commune first,
	// the detach UPDATE inside archiveDossierTx touches its row.
	communeID, err := dossierCommuneID(ctx, tx, dossierID)
	if err != nil {
		return Dossier{}, err
	}
	if _, err := lockCommune(ctx, tx, communeID); err != nil {
		return Dossier{}, err
	}

	dossier, err := archiveDossierTx(ctx, tx, dossierID)
	if err != nil {
		return Dossier{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Dossier{}, fmt.Errorf("commit archive: %w", err)
	}
	return dossier, nil
}

func archiveDossierTx(ctx context.Context, tx pgx.Tx, dossierID uuid.UUID) (Dossier, error) {
	dossier, err := lockDossier(ctx, tx, dossierID)
	if err != nil {
		return Dossier{}, err
	}

	target, err := domain.ArchiveDossier(dossier.Status)
	if err != nil {
		return Dossier{}, err
	}

	dossier, err = scanDossier(tx.QueryRow(ctx,
		`UPDATE dossiers
		 SET status = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+dossierColumns,
		dossier.ID, target))
	if err != nil {
		return Dossier{}, fmt.Errorf("archive dossier: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE communes SET dossier_id = NULL, updated_at = now()
		 WHERE dossier_id = $1`,
		dossier.ID); err != nil {
		return Dossier{}, fmt.Errorf("detach archived dossier: %w", err)
	}

	return dossier, nil
}

// ArchiveAndReset archives the commune's current dossier and returns the
// commune to inactive, so a new campaign can open a fresh cycle.
func (r *Repo) ArchiveAndReset(ctx context.Context, communeID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin archive transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	commune, err := lockCommune(ctx, tx, communeID)
	if err != nil {
		return err
	}
	if commune.DossierID == nil {
		return apperr.NotFound(dossierNotFoundMessage)
	}

	if _, err := archiveDossierTx(ctx, tx, *commune.DossierID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE communes
		 SET status = $2, completed_at = NULL, updated_at = now()
		 WHERE id = $1`,
		commune.ID, domain.CommuneInactive); err != nil {
		return fmt.Errorf("reset commune: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit archive and reset: %w", err)
	}
	return nil
}

// MarkRepliedAutomatically stamps the automatic reply on a submitted
// dossier and queues the objets-verts mail in the same transaction.
func (r *Repo) MarkRepliedAutomatically(ctx context.Context, dossierID uuid.UUID) (Dossier, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Dossier{}, fmt.Errorf("begin reply transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	dossier, err := lockDossier(ctx, tx, dossierID)
	if err != nil {
		return Dossier{}, err
	}
	if dossier.Status != domain.DossierSubmitted {
		return Dossier{}, apperr.InvalidTransition(
			"automatic reply requires a submitted dossier")
	}
	if dossier.RepliedAutomaticallyAt != nil {
		return Dossier{}, apperr.Conflict("dossier already replied automatically")
	}

	dossier, err = scanDossier(tx.QueryRow(ctx,
		`UPDATE dossiers
		 SET replied_automatically_at = now(), updated_at = now()
		 WHERE id = $1
		 RETURNING `+dossierColumns,
		dossier.ID))
	if err != nil {
		return Dossier{}, fmt.Errorf("mark replied automatically: %w", err)
	}

	commune, err := lockCommune(ctx, tx, dossier.CommuneID)
	if err != nil {
		return Dossier{}, err
	}

	_, err = r.outbox.InsertTx(ctx, tx, outbox.InsertParams{
		Kind:     outbox.KindObjetsVertsReply,
		Template: "objets_verts",
		Payload:  reminderPayload{DossierID: dossier.ID, CommuneID: commune.ID, CodeInsee: commune.CodeInsee},
	})
	if err != nil {
		return Dossier{}, fmt.Errorf("queue objets verts reply: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Dossier{}, fmt.Errorf("commit reply: %w", err)
	}
	return dossier, nil
}
