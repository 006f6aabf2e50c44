package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medikariyer/api/internal/auth"
	"github.com/medikariyer/api/internal/config"
	"github.com/medikariyer/api/internal/domain"
	"github.com/medikariyer/api/pkg/util"
)

type memAccounts struct {
	byID    map[int64]*domain.Account
	byEmail map[string]*domain.Account
	nextID  int64
}

func newMemAccounts() *memAccounts {
	return &memAccounts{
		byID:    make(map[int64]*domain.Account),
		byEmail: make(map[string]*domain.Account),
		nextID:  1,
	}
}

func (m *memAccounts) Create(_ context.Context, account *domain.Account) error {
	account.ID = m.nextID
	m.nextID++
	copied := *account
	m.byID[account.ID] = &copied
	m.byEmail[account.Email] = &copied
	return nil
}

func (m *memAccounts) Update(_ context.Context, account *domain.Account) error {
	copied := *account
	m.byID[account.ID] = &copied
	m.byEmail[account.Email] = &copied
	return nil
}

func (m *memAccounts) UpdateStatus(_ context.Context, id int64, isActive, isApproved bool) error {
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.IsActive = isActive
	account.IsApproved = isApproved
	return nil
}

func (m *memAccounts) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	account, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	account, ok := m.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

func newAuthFixture(t *testing.T) (*AuthService, *memAccounts) {
	t.Helper()
	cfg := config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenTTLMinutes = 60
	cfg.Auth.RefreshTokenTTLMinutes = 60 * 24
	cfg.Auth.BcryptCost = 4 // bcrypt.MinCost, keeps the suite fast

	accounts := newMemAccounts()
	return NewAuthService(cfg, accounts), accounts
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return util.ToDomainError(err).Code
}

func TestAuthService_Register(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	account, err := svc.Register(ctx, "doc@example.com", "hunter22", domain.RoleDoctor)
	require.NoError(t, err)
	assert.True(t, account.IsActive)
	assert.False(t, account.IsApproved)
	assert.NotEqual(t, "hunter22", account.PasswordHash)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, "doc@example.com", "hunter22", domain.RoleDoctor)
		assert.Equal(t, "CONFLICT", errCode(t, err))
	})

	t.Run("admin self-registration refused", func(t *testing.T) {
		_, err := svc.Register(ctx, "boss@example.com", "hunter22", domain.RoleAdmin)
		assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
	})

	t.Run("unknown role refused", func(t *testing.T) {
		_, err := svc.Register(ctx, "x@example.com", "hunter22", domain.Role("nurse"))
		assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
	})
}

func TestAuthService_Login(t *testing.T) {
	svc, accounts := newAuthFixture(t)
	ctx := context.Background()
	registered, err := svc.Register(ctx, "doc@example.com", "hunter22", domain.RoleDoctor)
	require.NoError(t, err)

	t.Run("issues a verifiable pair", func(t *testing.T) {
		account, pair, err := svc.Login(ctx, "doc@example.com", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, account.ID)

		claims, err := svc.TokenManager().Verify(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, claims.UserID)
		assert.Equal(t, auth.TokenPurposeAccess, claims.Purpose)

		claims, err = svc.TokenManager().Verify(pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, auth.TokenPurposeRefresh, claims.Purpose)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "doc@example.com", "wrong")
		assert.Equal(t, "INVALID_CREDENTIALS", errCode(t, err))
	})

	t.Run("unknown email gets the same rejection", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "hunter22")
		assert.Equal(t, "INVALID_CREDENTIALS", errCode(t, err))
	})

	t.Run("deactivated account cannot sign in", func(t *testing.T) {
		require.NoError(t, accounts.UpdateStatus(ctx, registered.ID, false, false))
		_, _, err := svc.Login(ctx, "doc@example.com", "hunter22")
		assert.Equal(t, util.CodeAccountInactive, errCode(t, err))
	})
}

func TestAuthService_Refresh(t *testing.T) {
	svc, accounts := newAuthFixture(t)
	ctx := context.Background()
	registered, err := svc.Register(ctx, "doc@example.com", "hunter22", domain.RoleDoctor)
	require.NoError(t, err)
	_, pair, err := svc.Login(ctx, "doc@example.com", "hunter22")
	require.NoError(t, err)

	t.Run("rotates the pair", func(t *testing.T) {
		account, fresh, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, account.ID)
		assert.NotEmpty(t, fresh.AccessToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, _, err := svc.Refresh(ctx, pair.AccessToken)
		assert.Equal(t, util.CodeInvalidToken, errCode(t, err))
	})

	t.Run("garbage token", func(t *testing.T) {
		_, _, err := svc.Refresh(ctx, "not.a.token")
		assert.Equal(t, util.CodeInvalidToken, errCode(t, err))
	})

	t.Run("deactivation between issuance and refresh", func(t *testing.T) {
		require.NoError(t, accounts.UpdateStatus(ctx, registered.ID, false, true))
		_, _, err := svc.Refresh(ctx, pair.RefreshToken)
		assert.Equal(t, util.CodeAccountInactive, errCode(t, err))
	})
}
