// Package service implements authentication: credential checks, access
// token issuance and refresh token rotation.
package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"patrimoine_backend/internal/auth/password"
	"patrimoine_backend/internal/auth/repository"
	"patrimoine_backend/internal/auth/token"
	"patrimoine_backend/internal/auth/transport"
	"patrimoine_backend/platform/apperr"
	"patrimoine_backend/platform/config"
	"patrimoine_backend/platform/logger"
)

const (
	accessTokenType = "access"
	refreshTokenTTL = 30 * 24 * time.Hour
	refreshSize     = 48
)

// Service authenticates commune users and conservateurs.
type Service struct {
	repo *repository.Repository
	cfg  config.AuthServiceConfig
	log  *logger.Logger
}

// New creates a new auth service.
func New(repo *repository.Repository, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log}
}

// Login checks the credentials and issues a token pair. The same error
// is returned for unknown emails and wrong passwords.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (transport.TokenResponse, error) {
	account, err := s.repo.FindAccountByEmail(ctx, email)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			s.log.AuthEvent("login", email, false, "unknown email")
			return transport.TokenResponse{}, apperr.Unauthorized("invalid credentials")
		}
		return transport.TokenResponse{}, err
	}

	if err := password.Compare(account.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("login", email, false, "wrong password")
		return transport.TokenResponse{}, apperr.Unauthorized("invalid credentials")
	}

	pair, err := s.issueTokens(ctx, account)
	if err != nil {
		return transport.TokenResponse{}, err
	}
	s.log.AuthEvent("login", email, true, "")
	return pair, nil
}

// Refresh rotates a refresh token into a new pair. The presented token
// is revoked whether or not it is still valid.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (transport.TokenResponse, error) {
	hash := token.HashSHA256(refreshToken)
	accountID, role, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			return transport.TokenResponse{}, apperr.Unauthorized("invalid refresh token")
		}
		return transport.TokenResponse{}, err
	}

	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil {
		return transport.TokenResponse{}, err
	}
	if time.Now().After(expiresAt) {
		return transport.TokenResponse{}, apperr.Unauthorized("refresh token expired")
	}

	account, err := s.repo.GetAccountByID(ctx, accountID, role)
	if err != nil {
		return transport.TokenResponse{}, err
	}
	return s.issueTokens(ctx, account)
}

// Logout revokes one refresh token.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.repo.RevokeRefreshToken(ctx, token.HashSHA256(refreshToken))
}

// Me returns the profile of the authenticated account.
func (s *Service) Me(ctx context.Context, accountID uuid.UUID, role string) (transport.ProfileResponse, error) {
	account, err := s.repo.GetAccountByID(ctx, accountID, role)
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	return transport.ProfileResponse{
		ID:              account.ID.String(),
		Email:           account.Email,
		Role:            account.Role,
		CodeInsee:       account.CodeInsee,
		DepartementCode: account.Departement,
		CreatedAt:       account.CreatedAt,
	}, nil
}

func (s *Service) issueTokens(ctx context.Context, account repository.Account) (transport.TokenResponse, error) {
	accessToken, err := s.signJWT(account)
	if err != nil {
		return transport.TokenResponse{}, err
	}

	refreshToken, err := token.GenerateRandom(refreshSize)
	if err != nil {
		return transport.TokenResponse{}, err
	}
	expiresAt := time.Now().Add(refreshTokenTTL)
	if err := s.repo.CreateRefreshToken(ctx, account.ID, account.Role, token.HashSHA256(refreshToken), expiresAt); err != nil {
		return transport.TokenResponse{}, err
	}

	return transport.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// signJWT embeds the territorial scope in the access token so the
// middleware can hand it to handlers without a database round trip.
func (s *Service) signJWT(account repository.Account) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  account.ID.String(),
		"type": accessTokenType,
		"role": account.Role,
		"exp":  now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":  now.Unix(),
	}
	if account.CodeInsee != "" {
		claims["code_insee"] = account.CodeInsee
	}
	if account.Departement != "" {
		claims["departement"] = account.Departement
	}

	obj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return obj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}
