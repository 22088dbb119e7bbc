package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	recdomain "patrimoine_backend/internal/recensements/domain"
	"patrimoine_backend/platform/apperr"
)

const (
	communeNotFoundMessage = "commune not found"
	dossierNotFoundMessage = "dossier not found"

	dossierColumns = `id, commune_id, status, submitted_at, replied_automatically_at,
		accepted_at, conservateur_id, notes_commune, notes_conservateur,
		created_at, updated_at`
)

// communeColumns works in plain SELECTs and in RETURNING clauses on the
// unaliased communes table. objets_count is a stored counter maintained
// by the catalogue sync writer; the recensement counters are computed
// live from the current dossier.
var communeColumns = `id, code_insee, nom, departement_code, phone_number, status,
		completed_at, dossier_id, objets_count, ` + recdomain.CountsSQL("communes") + `,
		created_at, updated_at`

// Repo implements the communes repository on Postgres.
type Repo struct {
	pool   *pgxpool.Pool
	outbox OutboxWriter
}

// New creates a new communes repository. The outbox writer receives the
// notification intents produced by workflow transitions.
func New(pool *pgxpool.Pool, outbox OutboxWriter) *Repo {
	return &Repo{pool: pool, outbox: outbox}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCommune(row rowScanner) (Commune, error) {
	var c Commune
	err := row.Scan(
		&c.ID, &c.CodeInsee, &c.Nom, &c.DepartementCode, &c.PhoneNumber, &c.Status,
		&c.CompletedAt, &c.DossierID, &c.ObjetsCount, &c.DisparusCount, &c.EnPerilCount,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func scanDossier(row rowScanner) (Dossier, error) {
	var d Dossier
	err := row.Scan(
		&d.ID, &d.CommuneID, &d.Status, &d.SubmittedAt, &d.RepliedAutomaticallyAt,
		&d.AcceptedAt, &d.ConservateurID, &d.NotesCommune, &d.NotesConservateur,
		&d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

// GetByID retrieves a commune by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Commune, error) {
	query := `SELECT ` + communeColumns + ` FROM communes WHERE id = $1`
	commune, err := scanCommune(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Commune{}, apperr.NotFound(communeNotFoundMessage)
		}
		return Commune{}, fmt.Errorf("get commune by id: %w", err)
	}
	return commune, nil
}

// GetByCodeInsee retrieves a commune by its INSEE code.
func (r *Repo) GetByCodeInsee(ctx context.Context, codeInsee string) (Commune, error) {
	query := `SELECT ` + communeColumns + ` FROM communes WHERE code_insee = $1`
	commune, err := scanCommune(r.pool.QueryRow(ctx, query, codeInsee))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Commune{}, apperr.NotFound(communeNotFoundMessage)
		}
		return Commune{}, fmt.Errorf("get commune by code insee: %w", err)
	}
	return commune, nil
}

// UpdateContactPhone stores the mairie contact phone number.
func (r *Repo) UpdateContactPhone(ctx context.Context, communeID uuid.UUID, phoneNumber string) (Commune, error) {
	query := `UPDATE communes SET phone_number = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + communeColumns
	commune, err := scanCommune(r.pool.QueryRow(ctx, query, communeID, phoneNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Commune{}, apperr.NotFound(communeNotFoundMessage)
		}
		return Commune{}, fmt.Errorf("update commune contact phone: %w", err)
	}
	return commune, nil
}

// ListByDepartement lists communes of one departement ordered by name.
func (r *Repo) ListByDepartement(ctx context.Context, departementCode string) ([]Commune, error) {
	query := `SELECT ` + communeColumns + ` FROM communes
		WHERE departement_code = $1
		ORDER BY nom ASC`
	rows, err := r.pool.Query(ctx, query, departementCode)
	if err != nil {
		return nil, fmt.Errorf("list communes: %w", err)
	}
	defer rows.Close()

	var communes []Commune
	for rows.Next() {
		commune, err := scanCommune(rows)
		if err != nil {
			return nil, fmt.Errorf("scan commune: %w", err)
		}
		communes = append(communes, commune)
	}
	return communes, rows.Err()
}

// GetDossierByID retrieves a dossier by ID.
func (r *Repo) GetDossierByID(ctx context.Context, id uuid.UUID) (Dossier, error) {
	query := `SELECT ` + dossierColumns + ` FROM dossiers WHERE id = $1`
	dossier, err := scanDossier(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Dossier{}, apperr.NotFound(dossierNotFoundMessage)
		}
		return Dossier{}, fmt.Errorf("get dossier by id: %w", err)
	}
	return dossier, nil
}

// GetCurrentDossier retrieves the commune's current dossier.
func (r *Repo) GetCurrentDossier(ctx context.Context, communeID uuid.UUID) (Dossier, error) {
	query := `SELECT ` + prefixColumns("d", dossierColumns) + `
		FROM dossiers d
		JOIN communes c ON c.dossier_id = d.id
		WHERE c.id = $1`
	dossier, err := scanDossier(r.pool.QueryRow(ctx, query, communeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Dossier{}, apperr.NotFound(dossierNotFoundMessage)
		}
		return Dossier{}, fmt.Errorf("get current dossier: %w", err)
	}
	return dossier, nil
}
