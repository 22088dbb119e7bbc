package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"patrimoine_backend/internal/recensements/domain"
	"patrimoine_backend/platform/apperr"
)

const (
	recensementNotFoundMessage = "recensement not found"

	recensementColumns = `id, objet_id, dossier_id, status, etat_sanitaire, localisation,
		edifice_nom, notes_commune, photos, analyse_notes, analysed_at, analysed_by,
		deleted_at, deleted_reason, created_at, updated_at`
)

// Repo implements the recensements repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new recensements repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func prefixColumns(prefix, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = prefix + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func scanRecensement(row rowScanner) (Recensement, error) {
	var r Recensement
	err := row.Scan(
		&r.ID, &r.ObjetID, &r.DossierID, &r.Status, &r.EtatSanitaire, &r.Localisation,
		&r.EdificeNom, &r.NotesCommune, &r.Photos, &r.AnalyseNotes, &r.AnalysedAt, &r.AnalysedBy,
		&r.DeletedAt, &r.DeletedReason, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// GetByID retrieves a recensement by ID, soft-deleted rows included.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Recensement, error) {
	query := `SELECT ` + recensementColumns + ` FROM recensements WHERE id = $1`
	rec, err := scanRecensement(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Recensement{}, apperr.NotFound(recensementNotFoundMessage)
		}
		return Recensement{}, fmt.Errorf("get recensement by id: %w", err)
	}
	return rec, nil
}

// ListByDossier returns the live recensements of a dossier, newest first.
func (r *Repo) ListByDossier(ctx context.Context, dossierID uuid.UUID) ([]Recensement, error) {
	query := `SELECT ` + recensementColumns + ` FROM recensements
		WHERE dossier_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, dossierID)
	if err != nil {
		return nil, fmt.Errorf("list recensements by dossier: %w", err)
	}
	defer rows.Close()

	var result []Recensement
	for rows.Next() {
		rec, err := scanRecensement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recensement: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// CountByObjet counts all recensements of an objet, soft-deleted included.
func (r *Repo) CountByObjet(ctx context.Context, objetID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM recensements WHERE objet_id = $1`, objetID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count recensements by objet: %w", err)
	}
	return count, nil
}

// Create opens a recensement for an objet within the commune's current
// dossier. The commune must be started, the dossier in construction, the
// objet located in the commune, and the objet must not already have a
// live recensement in this dossier. All checks run under row locks.
func (r *Repo) Create(ctx context.Context, p CreateParams) (Recensement, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Recensement{}, fmt.Errorf("begin create recensement: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		dossierStatus  string
		communeStatus  string
		communeInsee   string
		communeDossier *uuid.UUID
	)
	err = tx.QueryRow(ctx, `
		SELECT d.status, c.status, c.code_insee, c.dossier_id
		FROM dossiers d
		JOIN communes c ON c.id = d.commune_id
		WHERE d.id = $1
		FOR UPDATE OF d, c`, p.DossierID).
		Scan(&dossierStatus, &communeStatus, &communeInsee, &communeDossier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Recensement{}, apperr.NotFound("dossier not found")
		}
		return Recensement{}, fmt.Errorf("lock dossier for recensement: %w", err)
	}
	if communeDossier == nil || *communeDossier != p.DossierID {
		return Recensement{}, apperr.Validation("dossier is not the commune's current dossier")
	}
	if communeStatus != "started" {
		return Recensement{}, apperr.Validation("commune must be mid-recensement to record objets")
	}
	if dossierStatus != "construction" {
		return Recensement{}, apperr.Validation("dossier is no longer editable")
	}

	var objetInsee string
	err = tx.QueryRow(ctx,
		`SELECT commune_code_insee FROM objets WHERE id = $1`, p.ObjetID).Scan(&objetInsee)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Recensement{}, apperr.NotFound("objet not found")
		}
		return Recensement{}, fmt.Errorf("load objet for recensement: %w", err)
	}
	if objetInsee != communeInsee {
		return Recensement{}, apperr.Validation("objet does not belong to this commune")
	}

	var existing int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM recensements
		WHERE objet_id = $1 AND dossier_id = $2 AND deleted_at IS NULL`,
		p.ObjetID, p.DossierID).Scan(&existing)
	if err != nil {
		return Recensement{}, fmt.Errorf("check existing recensement: %w", err)
	}
	if existing > 0 {
		return Recensement{}, apperr.Conflict("objet already has a recensement in this dossier")
	}

	rec, err := scanRecensement(tx.QueryRow(ctx, `
		INSERT INTO recensements (objet_id, dossier_id, status, etat_sanitaire, localisation,
			edifice_nom, notes_commune, photos)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+recensementColumns,
		p.ObjetID, p.DossierID, domain.StatusInProgress, p.EtatSanitaire, p.Localisation,
		p.EdificeNom, p.NotesCommune, p.Photos))
	if err != nil {
		return Recensement{}, fmt.Errorf("insert recensement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Recensement{}, fmt.Errorf("commit create recensement: %w", err)
	}
	return rec, nil
}

// lockRecensement loads a recensement together with its dossier status
// under FOR UPDATE.
func lockRecensement(ctx context.Context, tx pgx.Tx, id uuid.UUID) (Recensement, string, error) {
	query := `SELECT ` + prefixColumns("r", recensementColumns) + `, d.status
		FROM recensements r
		JOIN dossiers d ON d.id = r.dossier_id
		WHERE r.id = $1
		FOR UPDATE OF r`
	row := tx.QueryRow(ctx, query, id)

	var (
		rec           Recensement
		dossierStatus string
	)
	err := row.Scan(
		&rec.ID, &rec.ObjetID, &rec.DossierID, &rec.Status, &rec.EtatSanitaire, &rec.Localisation,
		&rec.EdificeNom, &rec.NotesCommune, &rec.Photos, &rec.AnalyseNotes, &rec.AnalysedAt, &rec.AnalysedBy,
		&rec.DeletedAt, &rec.DeletedReason, &rec.CreatedAt, &rec.UpdatedAt,
		&dossierStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Recensement{}, "", apperr.NotFound(recensementNotFoundMessage)
		}
		return Recensement{}, "", fmt.Errorf("lock recensement: %w", err)
	}
	return rec, dossierStatus, nil
}

// Update applies the observation fields of p, refusing edits on
// recensements whose dossier is archived.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (Recensement, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Recensement{}, fmt.Errorf("begin update recensement: %w", err)
	}
	defer tx.Rollback(ctx)

	rec, dossierStatus, err := lockRecensement(ctx, tx, id)
	if err != nil {
		return Recensement{}, err
	}
	if rec.Deleted() {
		return Recensement{}, apperr.NotFound(recensementNotFoundMessage)
	}

	changes := domain.FieldChanges{
		Observation: p.EtatSanitaire != nil || p.Localisation != nil ||
			p.EdificeNom != nil || p.NotesCommune != nil || p.Photos != nil,
	}
	if err := domain.ValidateEdit(dossierStatus == "archived", changes); err != nil {
		return Recensement{}, err
	}

	if p.EtatSanitaire != nil {
		rec.EtatSanitaire = *p.EtatSanitaire
	}
	if p.Localisation != nil {
		rec.Localisation = *p.Localisation
	}
	if p.EdificeNom != nil {
		rec.EdificeNom = p.EdificeNom
	}
	if p.NotesCommune != nil {
		rec.NotesCommune = p.NotesCommune
	}
	if p.Photos != nil {
		rec.Photos = p.Photos
	}

	rec, err = scanRecensement(tx.QueryRow(ctx, `
		UPDATE recensements
		SET etat_sanitaire = $2, localisation = $3, edifice_nom = $4,
			notes_commune = $5, photos = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+recensementColumns,
		id, rec.EtatSanitaire, rec.Localisation, rec.EdificeNom, rec.NotesCommune, rec.Photos))
	if err != nil {
		return Recensement{}, fmt.Errorf("update recensement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Recensement{}, fmt.Errorf("commit update recensement: %w", err)
	}
	return rec, nil
}

// Complete moves an in-progress recensement to completed.
func (r *Repo) Complete(ctx context.Context, id uuid.UUID) (Recensement, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Recensement{}, fmt.Errorf("begin complete recensement: %w", err)
	}
	defer tx.Rollback(ctx)

	rec, dossierStatus, err := lockRecensement(ctx, tx, id)
	if err != nil {
		return Recensement{}, err
	}
	if rec.Deleted() {
		return Recensement{}, apperr.NotFound(recensementNotFoundMessage)
	}
	if err := domain.ValidateEdit(dossierStatus == "archived", domain.FieldChanges{Lifecycle: true}); err != nil {
		return Recensement{}, err
	}

	next, err := domain.Complete(rec.Status)
	if err != nil {
		return Recensement{}, err
	}

	rec, err = scanRecensement(tx.QueryRow(ctx, `
		UPDATE recensements SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+recensementColumns, id, next))
	if err != nil {
		return Recensement{}, fmt.Errorf("complete recensement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Recensement{}, fmt.Errorf("commit complete recensement: %w", err)
	}
	return rec, nil
}

// Analyse records the conservateur review. Analysis fields stay writable
// after the dossier is archived.
func (r *Repo) Analyse(ctx context.Context, id uuid.UUID, p AnalyseParams) (Recensement, error) {
	rec, err := scanRecensement(r.pool.QueryRow(ctx, `
		UPDATE recensements
		SET analysed_at = now(), analysed_by = $2, analyse_notes = $3, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+recensementColumns,
		id, p.ConservateurID, p.AnalyseNotes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Recensement{}, apperr.NotFound(recensementNotFoundMessage)
		}
		return Recensement{}, fmt.Errorf("analyse recensement: %w", err)
	}
	return rec, nil
}

// SoftDelete marks a recensement deleted with a reason.
func (r *Repo) SoftDelete(ctx context.Context, id uuid.UUID, reason string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin soft delete recensement: %w", err)
	}
	defer tx.Rollback(ctx)

	rec, dossierStatus, err := lockRecensement(ctx, tx, id)
	if err != nil {
		return err
	}
	if rec.Deleted() {
		return apperr.NotFound(recensementNotFoundMessage)
	}
	if err := domain.ValidateEdit(dossierStatus == "archived", domain.FieldChanges{Lifecycle: true}); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE recensements SET deleted_at = now(), deleted_reason = $2, updated_at = now()
		WHERE id = $1`, id, reason)
	if err != nil {
		return fmt.Errorf("soft delete recensement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit soft delete recensement: %w", err)
	}
	return nil
}

// SoftDeleteByObjet cascades a soft delete over the objet's live
// recensements. The catalogue synchronizer uses it when an objet leaves
// its commune; the archive freeze does not apply to this cascade.
func (r *Repo) SoftDeleteByObjet(ctx context.Context, objetID uuid.UUID, reason string) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE recensements SET deleted_at = now(), deleted_reason = $2, updated_at = now()
		WHERE objet_id = $1 AND deleted_at IS NULL`, objetID, reason)
	if err != nil {
		return 0, fmt.Errorf("soft delete recensements by objet: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// HardDelete removes the row entirely. Reserved for administration.
func (r *Repo) HardDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM recensements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("hard delete recensement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(recensementNotFoundMessage)
	}
	return nil
}
