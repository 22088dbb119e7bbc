// Package repository persists objets, edifices and sync reports.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"patrimoine_backend/platform/apperr"
)

const (
	objetNotFoundMessage = "objet not found"

	objetColumns = `id, palissy_ref, nom, categorie, protection, crafted_at, materiaux,
		commune_nom, commune_code_insee, departement_code, edifice_id, edifice_nom,
		emplacement, photos, created_at, updated_at`
	edificeColumns = `id, merimee_ref, nom, slug, code_insee, created_at, updated_at`
)

// Repo implements the objets repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new objets repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObjet(row rowScanner) (Objet, error) {
	var o Objet
	err := row.Scan(
		&o.ID, &o.PalissyRef, &o.Nom, &o.Categorie, &o.Protection, &o.CraftedAt, &o.Materiaux,
		&o.CommuneNom, &o.CommuneCodeInsee, &o.DepartementCode, &o.EdificeID, &o.EdificeNom,
		&o.Emplacement, &o.Photos, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

func scanEdifice(row rowScanner) (Edifice, error) {
	var e Edifice
	err := row.Scan(&e.ID, &e.MerimeeRef, &e.Nom, &e.Slug, &e.CodeInsee, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// GetByID retrieves an objet by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Objet, error) {
	query := `SELECT ` + objetColumns + ` FROM objets WHERE id = $1`
	objet, err := scanObjet(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Objet{}, apperr.NotFound(objetNotFoundMessage)
		}
		return Objet{}, fmt.Errorf("get objet by id: %w", err)
	}
	return objet, nil
}

// GetByPalissyRef retrieves an objet by its catalogue reference.
func (r *Repo) GetByPalissyRef(ctx context.Context, ref string) (Objet, error) {
	query := `SELECT ` + objetColumns + ` FROM objets WHERE palissy_ref = $1`
	objet, err := scanObjet(r.pool.QueryRow(ctx, query, ref))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Objet{}, apperr.NotFound(objetNotFoundMessage)
		}
		return Objet{}, fmt.Errorf("get objet by palissy ref: %w", err)
	}
	return objet, nil
}

// ListByCommune lists the objets currently located in a commune.
func (r *Repo) ListByCommune(ctx context.Context, codeInsee string) ([]Objet, error) {
	query := `SELECT ` + objetColumns + ` FROM objets
		WHERE commune_code_insee = $1
		ORDER BY palissy_ref`
	rows, err := r.pool.Query(ctx, query, codeInsee)
	if err != nil {
		return nil, fmt.Errorf("list objets by commune: %w", err)
	}
	defer rows.Close()

	var result []Objet
	for rows.Next() {
		objet, err := scanObjet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan objet: %w", err)
		}
		result = append(result, objet)
	}
	return result, rows.Err()
}
