// Package exports serves CSV extractions of the dashboard data for
// report generation collaborators, behind departement-scoped API keys,
// plus the campaign recipients export for conservateurs.
package exports

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	dashboardrepo "patrimoine_backend/internal/dashboard/repository"
	recdomain "patrimoine_backend/internal/recensements/domain"
	"patrimoine_backend/platform/apperr"
)

const apiKeyPrefix = "pat_"

// APIKey is a stored export API key. The plaintext is never persisted;
// only its sha256 hash and a short prefix for identification.
type APIKey struct {
	ID              uuid.UUID
	DepartementCode string
	Name            string
	KeyHash         string
	KeyPrefix       string
	IsActive        bool
	CreatedBy       *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastUsedAt      *time.Time
}

// Repository provides data access for export operations.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GenerateAPIKey creates a new random API key and returns the
// plaintext key, its hash and its display prefix.
func GenerateAPIKey() (plaintext string, hash string, prefix string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", "", err
	}
	plaintext = apiKeyPrefix + hex.EncodeToString(bytes)
	h := sha256.Sum256([]byte(plaintext))
	hash = hex.EncodeToString(h[:])
	prefix = plaintext[:12]
	return plaintext, hash, prefix, nil
}

// HashKey hashes a plaintext API key for lookup.
func HashKey(plaintext string) string {
	h := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(h[:])
}

const apiKeyColumns = `id, departement_code, name, key_hash, key_prefix, is_active, created_by, created_at, updated_at, last_used_at`

func scanAPIKey(row pgx.Row) (APIKey, error) {
	var key APIKey
	err := row.Scan(
		&key.ID, &key.DepartementCode, &key.Name, &key.KeyHash, &key.KeyPrefix,
		&key.IsActive, &key.CreatedBy, &key.CreatedAt, &key.UpdatedAt, &key.LastUsedAt,
	)
	return key, err
}

// CreateAPIKey persists a new export API key for a departement.
func (r *Repository) CreateAPIKey(ctx context.Context, departement, name, keyHash, keyPrefix string, createdBy *uuid.UUID) (APIKey, error) {
	return scanAPIKey(r.pool.QueryRow(ctx, `
		INSERT INTO export_api_keys (departement_code, name, key_hash, key_prefix, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+apiKeyColumns,
		departement, name, keyHash, keyPrefix, createdBy))
}

// GetAPIKeyByHash retrieves an active API key by its hash.
func (r *Repository) GetAPIKeyByHash(ctx context.Context, keyHash string) (APIKey, error) {
	key, err := scanAPIKey(r.pool.QueryRow(ctx, `
		SELECT `+apiKeyColumns+`
		FROM export_api_keys
		WHERE key_hash = $1 AND is_active = true`, keyHash))
	if errors.Is(err, pgx.ErrNoRows) {
		return APIKey{}, apperr.NotFound("export API key not found")
	}
	return key, err
}

// ListAPIKeys returns the export API keys of a departement.
func (r *Repository) ListAPIKeys(ctx context.Context, departement string) ([]APIKey, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apiKeyColumns+`
		FROM export_api_keys
		WHERE departement_code = $1
		ORDER BY created_at DESC`, departement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]APIKey, 0)
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// RevokeAPIKey deactivates an export API key of the departement.
func (r *Repository) RevokeAPIKey(ctx context.Context, keyID uuid.UUID, departement string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE export_api_keys SET is_active = false, updated_at = now()
		WHERE id = $1 AND departement_code = $2`, keyID, departement)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("export API key not found")
	}
	return nil
}

// TouchAPIKey updates the last_used_at timestamp for the key.
func (r *Repository) TouchAPIKey(ctx context.Context, keyID uuid.UUID) {
	_, _ = r.pool.Exec(ctx, `
		UPDATE export_api_keys SET last_used_at = now(), updated_at = now()
		WHERE id = $1`, keyID)
}

// ListCommuneRows returns every commune of a departement with its
// dossier state and statut_global, ranked like the dashboard listing.
func (r *Repository) ListCommuneRows(ctx context.Context, departement string) ([]dashboardrepo.CommuneRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.code_insee, c.nom, c.status, `+dashboardrepo.StatutGlobalSQL+` AS statut_global,
			c.objets_count, `+recdomain.CountsSQL("c")+`,
			d.id, d.status, d.submitted_at, c.completed_at
		FROM communes c
		LEFT JOIN dossiers d ON d.id = c.dossier_id
		WHERE c.departement_code = $1
		ORDER BY statut_global ASC, c.nom ASC`, departement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]dashboardrepo.CommuneRow, 0)
	for rows.Next() {
		var row dashboardrepo.CommuneRow
		if err := rows.Scan(
			&row.ID, &row.CodeInsee, &row.Nom, &row.Status, &row.StatutGlobal,
			&row.ObjetsCount, &row.DisparusCount, &row.EnPerilCount,
			&row.DossierID, &row.DossierStatus, &row.SubmittedAt, &row.CompletedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, row)
	}
	return items, rows.Err()
}
