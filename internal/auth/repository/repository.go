// Package repository persists accounts and refresh tokens. Commune
// users and conservateurs live in separate tables; both resolve to one
// Account shape for the service.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"patrimoine_backend/platform/apperr"
	"patrimoine_backend/platform/httpkit"
)

// Account is the authenticated principal, commune user or conservateur.
type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	CommuneID    *uuid.UUID
	CodeInsee    string
	Departement  string
	CreatedAt    time.Time
}

// Repository stores accounts and refresh tokens in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new auth repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindAccountByEmail resolves an email to an account, checking commune
// users first, then conservateurs.
func (r *Repository) FindAccountByEmail(ctx context.Context, email string) (Account, error) {
	account, err := r.findUser(ctx, email)
	if err == nil {
		return account, nil
	}
	if apperr.GetKind(err) != apperr.KindNotFound {
		return Account{}, err
	}
	return r.findConservateur(ctx, email)
}

// GetAccountByID resolves the id and role from an access token back to
// the account.
func (r *Repository) GetAccountByID(ctx context.Context, id uuid.UUID, role string) (Account, error) {
	switch role {
	case httpkit.RoleCommuneUser:
		return r.getUser(ctx, id)
	case httpkit.RoleConservateur, httpkit.RoleAdmin:
		return r.getConservateur(ctx, id)
	default:
		return Account{}, apperr.NotFound("account not found")
	}
}

func (r *Repository) findUser(ctx context.Context, email string) (Account, error) {
	return r.scanUser(r.pool.QueryRow(ctx, `
		SELECT u.id, u.email, u.password_hash, u.commune_id, c.code_insee, u.created_at
		FROM users u
		JOIN communes c ON c.id = u.commune_id
		WHERE lower(u.email) = lower($1)`, email))
}

func (r *Repository) getUser(ctx context.Context, id uuid.UUID) (Account, error) {
	return r.scanUser(r.pool.QueryRow(ctx, `
		SELECT u.id, u.email, u.password_hash, u.commune_id, c.code_insee, u.created_at
		FROM users u
		JOIN communes c ON c.id = u.commune_id
		WHERE u.id = $1`, id))
}

func (r *Repository) scanUser(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CommuneID, &a.CodeInsee, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, apperr.NotFound("account not found")
		}
		return Account{}, fmt.Errorf("find commune user: %w", err)
	}
	a.Role = httpkit.RoleCommuneUser
	return a, nil
}

func (r *Repository) findConservateur(ctx context.Context, email string) (Account, error) {
	return r.scanConservateur(r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, departement_code, is_admin, created_at
		FROM conservateurs
		WHERE lower(email) = lower($1)`, email))
}

func (r *Repository) getConservateur(ctx context.Context, id uuid.UUID) (Account, error) {
	return r.scanConservateur(r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, departement_code, is_admin, created_at
		FROM conservateurs
		WHERE id = $1`, id))
}

func (r *Repository) scanConservateur(row pgx.Row) (Account, error) {
	var a Account
	var isAdmin bool
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Departement, &isAdmin, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, apperr.NotFound("account not found")
		}
		return Account{}, fmt.Errorf("find conservateur: %w", err)
	}
	a.Role = httpkit.RoleConservateur
	if isAdmin {
		a.Role = httpkit.RoleAdmin
	}
	return a, nil
}

// CreateRefreshToken stores the digest of an issued refresh token.
func (r *Repository) CreateRefreshToken(ctx context.Context, accountID uuid.UUID, role, tokenHash string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO refresh_tokens (account_id, account_role, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)`,
		accountID, role, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken resolves a token digest to its account.
func (r *Repository) GetRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, string, time.Time, error) {
	var accountID uuid.UUID
	var role string
	var expiresAt time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT account_id, account_role, expires_at
		FROM refresh_tokens
		WHERE token_hash = $1 AND revoked_at IS NULL`,
		tokenHash).Scan(&accountID, &role, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, "", time.Time{}, apperr.NotFound("refresh token not found")
		}
		return uuid.Nil, "", time.Time{}, fmt.Errorf("get refresh token: %w", err)
	}
	return accountID, role, expiresAt, nil
}

// RevokeRefreshToken invalidates one refresh token.
func (r *Repository) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE token_hash = $1 AND revoked_at IS NULL`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllRefreshTokens invalidates every live token of an account.
func (r *Repository) RevokeAllRefreshTokens(ctx context.Context, accountID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE account_id = $1 AND revoked_at IS NULL`, accountID)
	if err != nil {
		return fmt.Errorf("revoke all refresh tokens: %w", err)
	}
	return nil
}
