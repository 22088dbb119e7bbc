// Package repository backs the curator dashboard with a single SQL
// aggregate over communes, dossiers and recensements.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	recensements "patrimoine_backend/internal/recensements/domain"
	"patrimoine_backend/platform/apperr"
)

// StatutGlobalSQL ranks a commune in one CASE expression so the
// dashboard listing can sort and filter across a whole departement
// without per-row computation. It must agree with the in-memory
// computation in the dashboard domain package; the parity test enforces
// the correspondence. Aliases: c = communes, d = current dossier.
const StatutGlobalSQL = `CASE
	WHEN EXISTS (
		SELECT 1 FROM recensements r
		WHERE r.dossier_id = c.dossier_id AND r.deleted_at IS NULL
			AND r.analysed_at IS NULL AND ` + recensements.PrioritaireSQL + `
	) THEN 1
	WHEN d.status <> 'accepted' AND EXISTS (
		SELECT 1 FROM recensements r
		WHERE r.dossier_id = c.dossier_id AND r.deleted_at IS NULL
			AND r.analysed_at IS NOT NULL
	) THEN 2
	WHEN d.status = 'submitted' AND d.replied_automatically_at IS NOT NULL THEN 3
	WHEN d.status = 'accepted' THEN 4
	WHEN c.status IN ('started', 'completed') THEN 5
	ELSE 6
END`

// CommuneRow is one dashboard listing entry.
type CommuneRow struct {
	ID            uuid.UUID
	CodeInsee     string
	Nom           string
	Status        string
	StatutGlobal  int
	ObjetsCount   int
	DisparusCount int
	EnPerilCount  int
	DossierID     *uuid.UUID
	DossierStatus *string
	SubmittedAt   *time.Time
	CompletedAt   *time.Time
}

// ListParams controls the departement listing.
type ListParams struct {
	DepartementCode string
	// StatutGlobal filters on one ordinal when non-zero.
	StatutGlobal int
	// SortDesc lists lowest-priority communes first.
	SortDesc bool
	Page     int
	PerPage  int
}

// Page is one page of the listing plus the total for pagination.
type Page struct {
	Rows  []CommuneRow
	Total int
}

// Repository reads the dashboard aggregates.
type Repository interface {
	ListCommunes(ctx context.Context, p ListParams) (Page, error)
	GetCommuneStatut(ctx context.Context, communeID uuid.UUID) (CommuneRow, error)
}

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new dashboard repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

var listColumns = `c.id, c.code_insee, c.nom, c.status, ` + StatutGlobalSQL + ` AS statut_global,
	c.objets_count, ` + recensements.CountsSQL("c") + `,
	d.id, d.status, d.submitted_at, c.completed_at`

const fromClause = ` FROM communes c
	LEFT JOIN dossiers d ON d.id = c.dossier_id`

// ListCommunes pages through the communes of a departement ranked by
// statut_global.
func (r *Repo) ListCommunes(ctx context.Context, p ListParams) (Page, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 || p.PerPage > 100 {
		p.PerPage = 25
	}

	where := ` WHERE c.departement_code = $1`
	args := []any{p.DepartementCode}
	if p.StatutGlobal != 0 {
		where += fmt.Sprintf(` AND (`+StatutGlobalSQL+`) = $%d`, len(args)+1)
		args = append(args, p.StatutGlobal)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+fromClause+where, args...).Scan(&total); err != nil {
		return Page{}, fmt.Errorf("count dashboard communes: %w", err)
	}

	order := ` ORDER BY statut_global ASC, c.nom ASC`
	if p.SortDesc {
		order = ` ORDER BY statut_global DESC, c.nom ASC`
	}
	query := fmt.Sprintf(`SELECT `+listColumns+fromClause+where+order+` LIMIT $%d OFFSET $%d`,
		len(args)+1, len(args)+2)
	args = append(args, p.PerPage, (p.Page-1)*p.PerPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return Page{}, fmt.Errorf("list dashboard communes: %w", err)
	}
	defer rows.Close()

	var result []CommuneRow
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return Page{}, fmt.Errorf("scan dashboard commune: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}
	return Page{Rows: result, Total: total}, nil
}

// GetCommuneStatut computes the aggregate for one commune.
func (r *Repo) GetCommuneStatut(ctx context.Context, communeID uuid.UUID) (CommuneRow, error) {
	row, err := scanRow(r.pool.QueryRow(ctx,
		`SELECT `+listColumns+fromClause+` WHERE c.id = $1`, communeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CommuneRow{}, apperr.NotFound("commune not found")
		}
		return CommuneRow{}, fmt.Errorf("get commune statut: %w", err)
	}
	return row, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(s rowScanner) (CommuneRow, error) {
	var row CommuneRow
	err := s.Scan(
		&row.ID, &row.CodeInsee, &row.Nom, &row.Status, &row.StatutGlobal,
		&row.ObjetsCount, &row.DisparusCount, &row.EnPerilCount,
		&row.DossierID, &row.DossierStatus, &row.SubmittedAt, &row.CompletedAt,
	)
	return row, err
}
