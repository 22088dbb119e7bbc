// Package repository persists campaigns and their recipients.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"patrimoine_backend/internal/campaigns/domain"
	"patrimoine_backend/platform/apperr"
)

const (
	campaignNotFoundMessage = "campaign not found"

	campaignColumns = `id, departement_code, status, date_lancement, date_relance1,
		date_relance2, date_relance3, date_fin, created_at, updated_at`
	recipientColumns = `cr.id, cr.campaign_id, cr.commune_id, c.nom, c.code_insee,
		cr.current_step, cr.unsubscribed, cr.created_at, cr.updated_at`
)

// Repo implements the campaigns repository on Postgres.
type Repo struct {
	pool   *pgxpool.Pool
	outbox OutboxWriter
}

// New creates a new campaigns repository. The outbox writer receives
// step emails queued while advancing recipients.
func New(pool *pgxpool.Pool, outbox OutboxWriter) *Repo {
	return &Repo{pool: pool, outbox: outbox}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (Campaign, error) {
	var c Campaign
	err := row.Scan(
		&c.ID, &c.DepartementCode, &c.Status, &c.Dates.Lancement, &c.Dates.Relance1,
		&c.Dates.Relance2, &c.Dates.Relance3, &c.Dates.Fin, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func scanRecipient(row rowScanner) (Recipient, error) {
	var r Recipient
	err := row.Scan(
		&r.ID, &r.CampaignID, &r.CommuneID, &r.CommuneNom, &r.CodeInsee,
		&r.CurrentStep, &r.Unsubscribed, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// GetByID retrieves a campaign.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`
	campaign, err := scanCampaign(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Campaign{}, apperr.NotFound(campaignNotFoundMessage)
		}
		return Campaign{}, fmt.Errorf("get campaign by id: %w", err)
	}
	return campaign, nil
}

// ListByDepartement lists every campaign of a departement, newest first.
func (r *Repo) ListByDepartement(ctx context.Context, departementCode string) ([]Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns
		WHERE departement_code = $1 ORDER BY date_lancement DESC`
	return r.queryCampaigns(ctx, query, departementCode)
}

// ListByStatus lists campaigns in one status, oldest launch first. The
// scheduler uses it to find campaigns to start, advance or finish.
func (r *Repo) ListByStatus(ctx context.Context, status domain.Status) ([]Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns
		WHERE status = $1 ORDER BY date_lancement ASC`
	return r.queryCampaigns(ctx, query, status)
}

func (r *Repo) queryCampaigns(ctx context.Context, query string, args ...any) ([]Campaign, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var result []Campaign
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		result = append(result, campaign)
	}
	return result, rows.Err()
}

// Create inserts a draft campaign.
func (r *Repo) Create(ctx context.Context, p CreateParams) (Campaign, error) {
	campaign, err := scanCampaign(r.pool.QueryRow(ctx, `
		INSERT INTO campaigns (departement_code, status, date_lancement, date_relance1,
			date_relance2, date_relance3, date_fin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+campaignColumns,
		p.DepartementCode, domain.StatusDraft, p.Dates.Lancement, p.Dates.Relance1,
		p.Dates.Relance2, p.Dates.Relance3, p.Dates.Fin))
	if err != nil {
		return Campaign{}, fmt.Errorf("create campaign: %w", err)
	}
	return campaign, nil
}

// UpdateDates replaces the milestones of a campaign.
func (r *Repo) UpdateDates(ctx context.Context, id uuid.UUID, dates domain.Dates) (Campaign, error) {
	campaign, err := scanCampaign(r.pool.QueryRow(ctx, `
		UPDATE campaigns
		SET date_lancement = $2, date_relance1 = $3, date_relance2 = $4,
			date_relance3 = $5, date_fin = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+campaignColumns,
		id, dates.Lancement, dates.Relance1, dates.Relance2, dates.Relance3, dates.Fin))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Campaign{}, apperr.NotFound(campaignNotFoundMessage)
		}
		return Campaign{}, fmt.Errorf("update campaign dates: %w", err)
	}
	return campaign, nil
}

// Delete removes a draft campaign and its recipients.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM campaigns WHERE id = $1 AND status = 'draft'`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("draft campaign not found")
	}
	return nil
}

// HasOverlapping checks the departement for another planned/ongoing
// campaign intersecting [lancement, fin].
func (r *Repo) HasOverlapping(ctx context.Context, departementCode string, dates domain.Dates, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM campaigns
			WHERE departement_code = $1
				AND id <> $2
				AND status IN ('planned', 'ongoing')
				AND date_lancement <= $4
				AND date_fin >= $3
		)`,
		departementCode, excludeID, dates.Lancement, dates.Fin).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check campaign overlap: %w", err)
	}
	return exists, nil
}

// EligibleCommunes lists the default-recipient candidates of the
// departement: at least one user, at least one objet, currently
// inactive.
func (r *Repo) EligibleCommunes(ctx context.Context, departementCode string) ([]EligibleCommune, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.code_insee, c.nom
		FROM communes c
		WHERE c.departement_code = $1
			AND c.status = 'inactive'
			AND EXISTS (SELECT 1 FROM users u WHERE u.commune_id = c.id)
			AND c.objets_count >= 1
		ORDER BY c.nom`, departementCode)
	if err != nil {
		return nil, fmt.Errorf("list eligible communes: %w", err)
	}
	defer rows.Close()

	var result []EligibleCommune
	for rows.Next() {
		var c EligibleCommune
		if err := rows.Scan(&c.ID, &c.CodeInsee, &c.Nom); err != nil {
			return nil, fmt.Errorf("scan eligible commune: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// AddRecipients attaches communes to a campaign, skipping ones already
// attached. Returns the number of newly attached recipients.
func (r *Repo) AddRecipients(ctx context.Context, campaignID uuid.UUID, communeIDs []uuid.UUID) (int, error) {
	if len(communeIDs) == 0 {
		return 0, nil
	}
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO campaign_recipients (campaign_id, commune_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT (campaign_id, commune_id) DO NOTHING`,
		campaignID, communeIDs)
	if err != nil {
		return 0, fmt.Errorf("add campaign recipients: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ListRecipients lists the recipients of a campaign with their commune.
func (r *Repo) ListRecipients(ctx context.Context, campaignID uuid.UUID) ([]Recipient, error) {
	rows, err := r.pool.Query(ctx, `
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

// SetRecipientUnsubscribed flips the unsubscribe flag of one recipient.
func (r *Repo) SetRecipientUnsubscribed(ctx context.Context, campaignID, communeID uuid.UUID, unsubscribed bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE campaign_recipients SET unsubscribed = $3, updated_at = now()
		WHERE campaign_id = $1 AND commune_id = $2`,
		campaignID, communeID, unsubscribed)
	if err != nil {
		return fmt.Errorf("set recipient unsubscribed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("campaign recipient not found")
	}
	return nil
}

// CountRecipientsNotInactive counts recipient communes with a status
// other than inactive.
func (r *Repo) CountRecipientsNotInactive(ctx context.Context, campaignID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM campaign_recipients cr
		JOIN communes c ON c.id = cr.commune_id
		WHERE cr.campaign_id = $1 AND c.status <> 'inactive'`,
		campaignID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count non-inactive recipients: %w", err)
	}
	return count, nil
}
