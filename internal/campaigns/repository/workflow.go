package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"patrimoine_backend/internal/campaigns/domain"
	"patrimoine_backend/internal/notification/outbox"
	"patrimoine_backend/platform/apperr"
)

// StepEmailPayload is the outbox payload queued for every recipient
// moved to a new campaign step.
type StepEmailPayload struct {
	CampaignID uuid.UUID   `json:"campaign_id"`
	CommuneID  uuid.UUID   `json:"commune_id"`
	CodeInsee  string      `json:"code_insee"`
	Step       domain.Step `json:"step"`
}

func (r *Repo) lockCampaign(ctx context.Context, tx pgx.Tx, id uuid.UUID) (Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1 FOR UPDATE`
	campaign, err := scanCampaign(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Campaign{}, apperr.NotFound(campaignNotFoundMessage)
		}
		return Campaign{}, fmt.Errorf("lock campaign: %w", err)
	}
	return campaign, nil
}

func (r *Repo) setStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.Status) (Campaign, error) {
	campaign, err := scanCampaign(tx.QueryRow(ctx, `
		UPDATE campaigns SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+campaignColumns, id, status))
	if err != nil {
		return Campaign{}, fmt.Errorf("set campaign status: %w", err)
	}
	return campaign, nil
}

// Plan transitions a draft campaign to planned. The transition is
// refused while any recipient commune is not inactive.
func (r *Repo) Plan(ctx context.Context, id uuid.UUID) (Campaign, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Campaign{}, fmt.Errorf("begin plan campaign: %w", err)
	}
	defer tx.Rollback(ctx)

	campaign, err := r.lockCampaign(ctx, tx, id)
	if err != nil {
		return Campaign{}, err
	}

	var active int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM campaign_recipients cr
		JOIN communes c ON c.id = cr.commune_id
		WHERE cr.campaign_id = $1 AND c.status <> 'inactive'`, id).Scan(&active)
	if err != nil {
		return Campaign{}, fmt.Errorf("count active recipients: %w", err)
	}
	if active > 0 {
		return Campaign{}, apperr.InvalidTransition(
			fmt.Sprintf("cannot plan campaign: %d recipient communes already active", active))
	}

	next, err := domain.Plan(campaign.Status)
	if err != nil {
		return Campaign{}, err
	}
	campaign, err = r.setStatus(ctx, tx, id, next)
	if err != nil {
		return Campaign{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Campaign{}, fmt.Errorf("commit plan campaign: %w", err)
	}
	return campaign, nil
}

// Start transitions a planned campaign to ongoing and returns the
// recipients so the caller can reset their dossiers.
func (r *Repo) Start(ctx context.Context, id uuid.UUID) (Campaign, []Recipient, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Campaign{}, nil, fmt.Errorf("begin start campaign: %w", err)
	}
	defer tx.Rollback(ctx)

	campaign, err := r.lockCampaign(ctx, tx, id)
	if err != nil {
		return Campaign{}, nil, err
	}
	next, err := domain.Start(campaign.Status)
	if err != nil {
		return Campaign{}, nil, err
	}
	campaign, err = r.setStatus(ctx, tx, id, next)
	if err != nil {
		return Campaign{}, nil, err
	}

	recipients, err := r.listRecipientsTx(ctx, tx, id)
	if err != nil {
		return Campaign{}, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Campaign{}, nil, fmt.Errorf("commit start campaign: %w", err)
	}
	return campaign, recipients, nil
}

// Finish transitions an ongoing campaign to finished.
func (r *Repo) Finish(ctx context.Context, id uuid.UUID) (Campaign, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Campaign{}, fmt.Errorf("begin finish campaign: %w", err)
	}
	defer tx.Rollback(ctx)

	campaign, err := r.lockCampaign(ctx, tx, id)
	if err != nil {
		return Campaign{}, err
	}
	next, err := domain.Finish(campaign.Status)
	if err != nil {
		return Campaign{}, err
	}
	campaign, err = r.setStatus(ctx, tx, id, next)
	if err != nil {
		return Campaign{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Campaign{}, fmt.Errorf("commit finish campaign: %w", err)
	}
	return campaign, nil
}

// AdvanceRecipients moves every subscribed recipient not yet at the
// step to it, queuing one step email per moved recipient in the same
// transaction. Idempotent: recipients already at the step are skipped.
func (r *Repo) AdvanceRecipients(ctx context.Context, campaignID uuid.UUID, step domain.Step) ([]Recipient, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin advance recipients: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := r.lockCampaign(ctx, tx, campaignID); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		UPDATE campaign_recipients cr
		SET current_step = $2, updated_at = now()
		FROM communes c
		WHERE c.id = cr.commune_id
			AND cr.campaign_id = $1
			AND NOT cr.unsubscribed
			AND cr.current_step IS DISTINCT FROM $2
		RETURNING `+recipientColumns,
		campaignID, step)
	if err != nil {
		return nil, fmt.Errorf("advance recipients: %w", err)
	}
	var moved []Recipient
	for rows.Next() {
		recipient, err := scanRecipient(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan advanced recipient: %w", err)
		}
		moved = append(moved, recipient)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("advance recipients: %w", err)
	}

	runAt := time.Now()
	for _, recipient := range moved {
		_, err := r.outbox.InsertTx(ctx, tx, outbox.InsertParams{
			Kind:     outbox.KindCampaignStepEmail,
			Template: "campaign_" + string(step),
			Payload: StepEmailPayload{
				CampaignID: campaignID,
				CommuneID:  recipient.CommuneID,
				CodeInsee:  recipient.CodeInsee,
				Step:       step,
			},
			RunAt: runAt,
		})
		if err != nil {
			return nil, fmt.Errorf("queue step email: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit advance recipients: %w", err)
	}
	return moved, nil
}

func (r *Repo) listRecipientsTx(ctx context.Context, tx pgx.Tx, campaignID uuid.UUID) ([]Recipient, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+recipientColumns+`
		FROM campaign_recipients cr
		JOIN communes c ON c.id = cr.commune_id
		WHERE cr.campaign_id = $1
		ORDER BY c.nom`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list campaign recipients: %w", err)
	}
	defer rows.Close()

	var result []Recipient
	for rows.Next() {
		recipient, err := scanRecipient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign recipient: %w", err)
		}
		result = append(result, recipient)
	}
	return result, rows.Err()
}
