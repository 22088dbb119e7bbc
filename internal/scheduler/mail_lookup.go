package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"patrimoine_backend/platform/apperr"
)

// mailLookup resolves outbox payloads to recipient addresses.
type mailLookup struct {
	pool *pgxpool.Pool
}

// communeRecipient returns the email of the commune's user and the
// commune name. Communes with several users get the oldest account.
func (l *mailLookup) communeRecipient(ctx context.Context, communeID uuid.UUID) (string, string, error) {
	var email, nom string
	err := l.pool.QueryRow(ctx, `
		SELECT u.email, c.nom
		FROM users u
		JOIN communes c ON c.id = u.commune_id
		WHERE u.commune_id = $1
		ORDER BY u.created_at ASC
		LIMIT 1`, communeID).Scan(&email, &nom)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", apperr.NotFound("commune has no user account")
		}
		return "", "", fmt.Errorf("lookup commune recipient: %w", err)
	}
	return email, nom, nil
}

// conservateurRecipient returns the email of the conservateur covering
// the commune's departement, with the commune name for the mail body.
func (l *mailLookup) conservateurRecipient(ctx context.Context, communeID uuid.UUID) (string, string, error) {
	var email, nom string
	err := l.pool.QueryRow(ctx, `
		SELECT co.email, c.nom
		FROM communes c
		JOIN conservateurs co ON co.departement_code = c.departement_code
		WHERE c.id = $1
		ORDER BY co.created_at ASC
		LIMIT 1`, communeID).Scan(&email, &nom)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", apperr.NotFound("departement has no conservateur")
		}
		return "", "", fmt.Errorf("lookup conservateur recipient: %w", err)
	}
	return email, nom, nil
}

// departementCodes lists every departement with communes to synchronize.
func (l *mailLookup) departementCodes(ctx context.Context) ([]string, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT DISTINCT departement_code FROM communes ORDER BY departement_code`)
	if err != nil {
		return nil, fmt.Errorf("list departements: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan departement: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}
