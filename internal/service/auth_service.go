package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/medikariyer/api/internal/auth"
	"github.com/medikariyer/api/internal/config"
	"github.com/medikariyer/api/internal/domain"
	"github.com/medikariyer/api/internal/repository"
	"github.com/medikariyer/api/pkg/util"
)

// TokenPair is an issued access/refresh credential pair.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthService coordinates registration, login and token refresh. Issuance is
// the gate's external collaborator: it produces structurally valid signed
// tokens and nothing downstream trusts their claims for status decisions.
type AuthService struct {
	accounts   repository.AccountRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, accounts repository.AccountRepository) *AuthService {
	return &AuthService{
		accounts: accounts,
		tokenMgr: auth.NewTokenManager(
			cfg.Auth.JWTSecret,
			cfg.Auth.AccessTokenTTLMinutes,
			cfg.Auth.RefreshTokenTTLMinutes,
		),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account. Doctors and hospitals start unapproved and
// wait for back-office review; the account is active immediately.
func (s *AuthService) Register(ctx context.Context, email, password string, role domain.Role) (*domain.Account, error) {
	if !role.Valid() || role == domain.RoleAdmin {
		return nil, util.NewValidationError("invalid role", map[string]any{"role": role})
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, util.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		IsActive:     true,
		IsApproved:   false,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Login authenticates credentials and issues a token pair. Deactivated
// accounts cannot sign in; unapproved ones can (the gate limits what they
// reach).
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Account, *TokenPair, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, util.NewUnauthorized("INVALID_CREDENTIALS", "invalid credentials")
		}
		return nil, nil, err
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, nil, util.NewUnauthorized("INVALID_CREDENTIALS", "invalid credentials")
	}
	if account.Role != domain.RoleAdmin && !account.IsActive {
		return nil, nil, util.NewForbidden(util.CodeAccountInactive, "account is deactivated")
	}

	pair, err := s.issuePair(account)
	if err != nil {
		return nil, nil, err
	}
	return account, pair, nil
}

// Refresh exchanges a valid refresh token for a new pair. The account is
// re-read so a deactivation between issuance and refresh ends the session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.Account, *TokenPair, error) {
	claims, err := s.tokenMgr.Verify(refreshToken)
	if err != nil {
		return nil, nil, util.NewUnauthorized(util.CodeInvalidToken, "invalid refresh token")
	}
	if claims.Purpose != auth.TokenPurposeRefresh {
		return nil, nil, util.NewUnauthorized(util.CodeInvalidToken, "invalid refresh token")
	}

	account, err := s.accounts.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, util.NewUnauthorized(util.CodeUnknownUser, "unknown user")
		}
		return nil, nil, util.NewRetryable(util.CodeLookupFailed, "account lookup unavailable", err)
	}
	if account.Role != domain.RoleAdmin && !account.IsActive {
		return nil, nil, util.NewForbidden(util.CodeAccountInactive, "account is deactivated")
	}

	pair, err := s.issuePair(account)
	if err != nil {
		return nil, nil, err
	}
	return account, pair, nil
}

// SetAccountStatus applies a back-office status decision. The change takes
// effect on the target's next gated request; no session invalidation step is
// needed because nothing caches the flags.
func (s *AuthService) SetAccountStatus(ctx context.Context, id int64, isActive, isApproved bool) (*domain.Account, error) {
	if err := s.accounts.UpdateStatus(ctx, id, isActive, isApproved); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("account", map[string]any{"id": id})
		}
		return nil, err
	}
	return s.accounts.GetByID(ctx, id)
}

// CurrentAccount reads the caller's authoritative account record.
func (s *AuthService) CurrentAccount(ctx context.Context, id int64) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewUnauthorized(util.CodeUnknownUser, "unknown user")
		}
		return nil, util.NewRetryable(util.CodeLookupFailed, "account lookup unavailable", err)
	}
	return account, nil
}

func (s *AuthService) issuePair(account *domain.Account) (*TokenPair, error) {
	access, accessExp, err := s.tokenMgr.Generate(account, auth.TokenPurposeAccess)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.tokenMgr.Generate(account, auth.TokenPurposeRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
