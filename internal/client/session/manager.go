package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medikariyer/api/internal/auth"
	"github.com/medikariyer/api/internal/domain"
	"github.com/medikariyer/api/internal/events"
)

// Status is the local session state.
type Status int

const (
	// StatusUnauthenticated means no usable credentials are cached.
	StatusUnauthenticated Status = iota
	// StatusAuthenticated means the cached token is structurally valid and
	// the session is locally trusted until told otherwise.
	StatusAuthenticated
	// StatusDisabled means the server reported the account inactive; the
	// session stays out until a fresh sign-in.
	StatusDisabled
)

// Manager owns the client-side session state: the cached credentials, the
// current SessionContext and the proactive-refresh signal.
//
// It inspects tokens with the unverified codec only. That is safe solely
// because every protected call is re-authorized server-side; nothing here is
// a security boundary.
type Manager struct {
	store      Store
	clock      auth.Clock
	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu         sync.Mutex
	status     Status
	current    *domain.SessionContext
	loggedOnce bool
	// refreshSignaled dedupes ShouldRefresh per token so the refresh flow
	// fires at most once per threshold crossing.
	refreshSignaled map[string]struct{}
}

// NewManager constructs the session manager.
func NewManager(store Store, clock auth.Clock, dispatcher events.Dispatcher, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:           store,
		clock:           clock,
		dispatcher:      dispatcher,
		logger:          logger,
		refreshSignaled: make(map[string]struct{}),
	}
}

// Restore rebuilds session state from the cached access token, typically on
// app start. An absent or expired token leaves the session unauthenticated;
// that is a normal cold-start condition, not an error.
func (m *Manager) Restore(ctx context.Context) error {
	token, err := m.store.AccessToken(ctx)
	if err != nil {
		if errors.Is(err, ErrNotCached) {
			return nil
		}
		return err
	}

	claims, ok := auth.Decode(token)
	if !ok || !m.clock.IsValid(claims) {
		return nil
	}

	current := contextFromClaims(claims)
	if snapshot, err := m.store.AccountSnapshot(ctx); err == nil {
		current = *snapshot
	}

	m.mu.Lock()
	m.status = StatusAuthenticated
	m.current = &current
	logged := m.loggedOnce
	m.loggedOnce = true
	m.mu.Unlock()

	// The loggedOnce flag only suppresses duplicate log lines; it carries
	// no authorization meaning.
	if !logged {
		m.logger.Info("session restored",
			zap.Int64("account_id", current.ID),
			zap.Int("remaining_minutes", m.clock.RemainingMinutes(claims)),
		)
	}
	return nil
}

// Establish installs a freshly issued credential pair, e.g. after sign-in.
func (m *Manager) Establish(ctx context.Context, accessToken, refreshToken string, account domain.SessionContext) error {
	if err := m.store.SetAccessToken(ctx, accessToken); err != nil {
		return err
	}
	if refreshToken != "" {
		if err := m.store.SetRefreshToken(ctx, refreshToken); err != nil {
			return err
		}
	}
	if err := m.store.SetAccountSnapshot(ctx, account); err != nil {
		return err
	}

	m.mu.Lock()
	m.status = StatusAuthenticated
	m.current = &account
	m.mu.Unlock()
	return nil
}

// Current returns the session context, if any.
func (m *Manager) Current() (domain.SessionContext, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return domain.SessionContext{}, false
	}
	return *m.current, true
}

// State returns the local session status.
func (m *Manager) State() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Authenticated reports whether the session is locally trusted.
func (m *Manager) Authenticated() bool {
	return m.State() == StatusAuthenticated
}

// AccessToken returns the cached access token.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	return m.store.AccessToken(ctx)
}

// RemainingMinutes reports the cached token's remaining lifetime.
func (m *Manager) RemainingMinutes(ctx context.Context) int {
	claims, ok := m.cachedClaims(ctx)
	if !ok {
		return 0
	}
	return m.clock.RemainingMinutes(claims)
}

// RefreshDue reports whether the token-refresh flow should fire now. The
// signal triggers at most once per token: overlapping refresh calls against
// the same refresh token can invalidate each other, so crossings after the
// first stay silent until a new token is established.
func (m *Manager) RefreshDue(ctx context.Context) bool {
	claims, ok := m.cachedClaims(ctx)
	if !ok || !m.clock.ShouldRefresh(claims) {
		return false
	}

	key := claims.TokenID()
	if key == "" {
		if iat, ok := claims.IssuedAt(); ok {
			key = time.Unix(iat, 0).UTC().Format(time.RFC3339)
		} else {
			return false
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, seen := m.refreshSignaled[key]; seen {
		return false
	}
	m.refreshSignaled[key] = struct{}{}
	return true
}

// ApplyAccount overwrites the cached session context with a fresh
// authoritative result. A now-inactive account forces the session into the
// disabled state and clears credentials.
func (m *Manager) ApplyAccount(ctx context.Context, fresh domain.SessionContext) error {
	if !fresh.IsActive && fresh.Role != domain.RoleAdmin {
		return m.signOut(ctx, fresh.ID, StatusDisabled, "account deactivated")
	}

	if err := m.store.SetAccountSnapshot(ctx, fresh); err != nil {
		return err
	}

	m.mu.Lock()
	m.current = &fresh
	m.mu.Unlock()

	m.publish(ctx, events.EventSessionRefreshed, events.SessionRefreshedPayload{
		AccountID: fresh.ID,
		IsActive:  fresh.IsActive,
	})
	return nil
}

// SignOut clears credentials and returns the session to unauthenticated.
func (m *Manager) SignOut(ctx context.Context) error {
	var accountID int64
	if current, ok := m.Current(); ok {
		accountID = current.ID
	}
	return m.signOut(ctx, accountID, StatusUnauthenticated, "signed out")
}

func (m *Manager) signOut(ctx context.Context, accountID int64, status Status, reason string) error {
	err := m.store.Clear(ctx)

	m.mu.Lock()
	m.status = status
	m.current = nil
	m.mu.Unlock()

	m.logger.Info("session ended",
		zap.Int64("account_id", accountID),
		zap.String("reason", reason),
	)
	m.publish(ctx, events.EventSessionRevoked, events.SessionRevokedPayload{
		AccountID: accountID,
		Reason:    reason,
	})
	return err
}

func (m *Manager) cachedClaims(ctx context.Context) (auth.Claims, bool) {
	token, err := m.store.AccessToken(ctx)
	if err != nil {
		return nil, false
	}
	return auth.Decode(token)
}

func (m *Manager) publish(ctx context.Context, eventType events.EventType, payload any) {
	if m.dispatcher == nil {
		return
	}
	_ = m.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func contextFromClaims(claims auth.Claims) domain.SessionContext {
	id, _ := claims.SubjectID()
	return domain.SessionContext{
		ID:         id,
		Email:      claims.Email(),
		Role:       claims.Role(),
		IsApproved: claims.IsApproved(),
		IsActive:   true,
		Source:     domain.SourceClaims,
	}
}
