package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// LookupContext pre-fetches the store context for one reconciliation row.
// The lookups run outside the row's write transaction; uniqueness on
// palissy_ref makes the later write safe against races.
func (r *Repo) LookupContext(ctx context.Context, palissyRef, merimeeRef, edificeSlug, codeInsee string) (LookupResult, error) {
	var result LookupResult

	objet, err := scanObjet(r.pool.QueryRow(ctx,
		`SELECT `+objetColumns+` FROM objets WHERE palissy_ref = $1`, palissyRef))
	switch {
	case err == nil:
		result.Persisted = &objet
		err = r.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM recensements WHERE objet_id = $1`, objet.ID).
			Scan(&result.RecensementCount)
		if err != nil {
			return LookupResult{}, fmt.Errorf("count recensements for sync: %w", err)
		}
	case errors.Is(err, pgx.ErrNoRows):
		// create path
	default:
		return LookupResult{}, fmt.Errorf("lookup objet for sync: %w", err)
	}

	if merimeeRef != "" {
		edifice, err := scanEdifice(r.pool.QueryRow(ctx,
			`SELECT `+edificeColumns+` FROM edifices WHERE merimee_ref = $1`, merimeeRef))
		if err == nil {
			result.EdificeByRef = &edifice
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return LookupResult{}, fmt.Errorf("lookup edifice by ref: %w", err)
		}
	}

	if codeInsee != "" {
		if edificeSlug != "" {
			edifice, err := scanEdifice(r.pool.QueryRow(ctx,
				`SELECT `+edificeColumns+` FROM edifices WHERE slug = $1 AND code_insee = $2`,
				edificeSlug, codeInsee))
			if err == nil {
				result.EdificeBySlug = &edifice
			} else if !errors.Is(err, pgx.ErrNoRows) {
				return LookupResult{}, fmt.Errorf("lookup edifice by slug: %w", err)
			}
		}

		err = r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM communes WHERE code_insee = $1)`, codeInsee).
			Scan(&result.CommuneExists)
		if err != nil {
			return LookupResult{}, fmt.Errorf("check commune for sync: %w", err)
		}
	}

	return result, nil
}

// Apply executes one reconciliation decision in a single transaction.
func (r *Repo) Apply(ctx context.Context, d Applyable) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin apply sync decision: %w", err)
	}
	defer tx.Rollback(ctx)

	edificeID := d.EdificeID
	if d.EdificeToCreate != nil {
		id, err := upsertEdifice(ctx, tx, *d.EdificeToCreate)
		if err != nil {
			return err
		}
		edificeID = &id
	}

	if d.Creating {
		_, err = tx.Exec(ctx, `
			INSERT INTO objets (palissy_ref, nom, categorie, protection, crafted_at, materiaux,
				commune_nom, commune_code_insee, departement_code, edifice_id, edifice_nom,
				emplacement, photos)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			d.PalissyRef, d.Attrs.Nom, d.Attrs.Categorie, d.Attrs.Protection, d.Attrs.CraftedAt,
			d.Attrs.Materiaux, d.Attrs.CommuneNom, d.Attrs.CommuneCodeInsee, d.Attrs.DepartementCode,
			edificeID, d.Attrs.EdificeNom, d.Attrs.Emplacement, d.Attrs.Photos)
		if err != nil {
			return fmt.Errorf("insert objet %s: %w", d.PalissyRef, err)
		}
		if err := bumpObjetsCounts(ctx, tx, nil, d.Attrs.CommuneCodeInsee); err != nil {
			return err
		}
	} else {
		var previousInsee *string
		err = tx.QueryRow(ctx,
			`SELECT commune_code_insee FROM objets WHERE id = $1 FOR UPDATE`, d.ObjetID).
			Scan(&previousInsee)
		if err != nil {
			return fmt.Errorf("lock objet %s: %w", d.PalissyRef, err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE objets
			SET nom = $2, categorie = $3, protection = $4, crafted_at = $5, materiaux = $6,
				commune_nom = $7, commune_code_insee = $8, departement_code = $9,
				edifice_id = $10, edifice_nom = $11, emplacement = $12, photos = $13,
				updated_at = now()
			WHERE id = $1`,
			d.ObjetID, d.Attrs.Nom, d.Attrs.Categorie, d.Attrs.Protection, d.Attrs.CraftedAt,
			d.Attrs.Materiaux, d.Attrs.CommuneNom, d.Attrs.CommuneCodeInsee, d.Attrs.DepartementCode,
			edificeID, d.Attrs.EdificeNom, d.Attrs.Emplacement, d.Attrs.Photos)
		if err != nil {
			return fmt.Errorf("update objet %s: %w", d.PalissyRef, err)
		}
		if err := bumpObjetsCounts(ctx, tx, previousInsee, d.Attrs.CommuneCodeInsee); err != nil {
			return err
		}

		if d.CascadeDeleteRecensements {
			_, err = tx.Exec(ctx, `
				UPDATE recensements SET deleted_at = now(), deleted_reason = $2, updated_at = now()
				WHERE objet_id = $1 AND deleted_at IS NULL`,
				d.ObjetID, d.CascadeReason)
			if err != nil {
				return fmt.Errorf("cascade recensements for objet %s: %w", d.PalissyRef, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit apply sync decision: %w", err)
	}
	return nil
}

const bumpObjetsCountSQL = `UPDATE communes
	SET objets_count = GREATEST(objets_count + $2, 0), updated_at = now()
	WHERE code_insee = $1`

// counterMoves computes the communes whose objets_count an objet write
// touches: none when the commune is unchanged, otherwise the previous
// code to decrement and the new one to increment.
func counterMoves(before, after *string) (dec, inc *string) {
	if before == nil && after == nil {
		return nil, nil
	}
	if before != nil && after != nil && *before == *after {
		return nil, nil
	}
	return before, after
}

// bumpObjetsCounts keeps the communes.objets_count cache in step with
// the objet's commune, inside the applying transaction.
func bumpObjetsCounts(ctx context.Context, tx pgx.Tx, before, after *string) error {
	dec, inc := counterMoves(before, after)
	if dec != nil {
		if _, err := tx.Exec(ctx, bumpObjetsCountSQL, *dec, -1); err != nil {
			return fmt.Errorf("decrement objets_count for commune %s: %w", *dec, err)
		}
	}
	if inc != nil {
		if _, err := tx.Exec(ctx, bumpObjetsCountSQL, *inc, 1); err != nil {
			return fmt.Errorf("increment objets_count for commune %s: %w", *inc, err)
		}
	}
	return nil
}

// upsertEdifice creates the edifice or reuses the row a concurrent
// worker inserted first. The ON CONFLICT arbiter only covers ref-less
// rows, so an insert carrying a merimee_ref can still lose the race on
// the ref's unique constraint; that loser re-selects the winner's row.
func upsertEdifice(ctx context.Context, tx pgx.Tx, attrs EdificeAttrs) (uuid.UUID, error) {
	var id uuid.UUID

	// The insert runs under a savepoint so a unique violation does not
	// poison the enclosing transaction.
	nested, err := tx.Begin(ctx)
	if err != nil {
		return id, fmt.Errorf("savepoint edifice upsert: %w", err)
	}
	err = nested.QueryRow(ctx, `
		INSERT INTO edifices (merimee_ref, nom, slug, code_insee)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slug, code_insee) WHERE merimee_ref IS NULL
		DO UPDATE SET nom = EXCLUDED.nom, updated_at = now()
		RETURNING id`,
		attrs.MerimeeRef, attrs.Nom, attrs.Slug, attrs.CodeInsee).Scan(&id)
	if err == nil {
		if err := nested.Commit(ctx); err != nil {
			return id, fmt.Errorf("release edifice upsert: %w", err)
		}
		return id, nil
	}
	_ = nested.Rollback(ctx)

	if lostMerimeeRefRace(attrs, err) {
		err = tx.QueryRow(ctx,
			`SELECT id FROM edifices WHERE merimee_ref = $1`, *attrs.MerimeeRef).Scan(&id)
		if err != nil {
			return id, fmt.Errorf("reuse edifice %s: %w", *attrs.MerimeeRef, err)
		}
		return id, nil
	}
	return id, fmt.Errorf("upsert edifice %s/%s: %w", attrs.CodeInsee, attrs.Slug, err)
}

// lostMerimeeRefRace reports whether an edifice insert carrying a
// merimee_ref lost a concurrent duplicate race on the ref's unique
// constraint. The ON CONFLICT arbiter cannot cover that case.
func lostMerimeeRefRace(attrs EdificeAttrs, err error) bool {
	if attrs.MerimeeRef == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// SaveSyncReport persists a batch summary.
func (r *Repo) SaveSyncReport(ctx context.Context, rec SyncReportRecord) (uuid.UUID, error) {
	counters, err := json.Marshal(rec.Counters)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal sync counters: %w", err)
	}

	var id uuid.UUID
	err = r.pool.QueryRow(ctx, `
		INSERT INTO sync_reports (started_at, duration_ms, counters, failures, total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		rec.StartedAt, rec.DurationMS, counters, rec.Failures, rec.Total).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("save sync report: %w", err)
	}
	return id, nil
}

// ListSyncReports returns the most recent batch summaries.
func (r *Repo) ListSyncReports(ctx context.Context, limit int) ([]SyncReportRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, started_at, duration_ms, counters, failures, total, created_at
		FROM sync_reports
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync reports: %w", err)
	}
	defer rows.Close()

	var result []SyncReportRecord
	for rows.Next() {
		var rec SyncReportRecord
		var counters []byte
		if err := rows.Scan(&rec.ID, &rec.StartedAt, &rec.DurationMS, &counters,
			&rec.Failures, &rec.Total, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sync report: %w", err)
		}
		if err := json.Unmarshal(counters, &rec.Counters); err != nil {
			return nil, fmt.Errorf("decode sync counters: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}
