package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medikariyer/api/internal/auth"
	"github.com/medikariyer/api/internal/domain"
	"github.com/medikariyer/api/internal/events"
)

func testNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

// makeToken builds a structurally valid token; the signature is junk, which
// is fine client-side where only the codec reads it.
func makeToken(t *testing.T, payload map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString(raw) + ".sig"
}

func liveTokenPayload(remaining time.Duration) map[string]any {
	return map[string]any{
		"userId":     1,
		"email":      "doc@example.com",
		"role":       "doctor",
		"isApproved": true,
		"jti":        "token-1",
		"iat":        testNow().Unix(),
		"exp":        testNow().Add(remaining).Unix(),
	}
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var matched []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

func newTestManager(t *testing.T) (*Manager, Store, *recordingDispatcher) {
	t.Helper()
	store := NewMemoryStore()
	dispatcher := &recordingDispatcher{}
	clock := auth.NewClockAt(15*time.Minute, testNow)
	return NewManager(store, clock, dispatcher, nil), store, dispatcher
}

func TestManager_RestoreColdStart(t *testing.T) {
	manager, _, _ := newTestManager(t)

	require.NoError(t, manager.Restore(context.Background()))
	assert.Equal(t, StatusUnauthenticated, manager.State())
	_, ok := manager.Current()
	assert.False(t, ok)
}

func TestManager_RestoreFromCachedToken(t *testing.T) {
	manager, store, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, store.SetAccessToken(ctx, makeToken(t, liveTokenPayload(time.Hour))))

	require.NoError(t, manager.Restore(ctx))
	require.True(t, manager.Authenticated())

	current, ok := manager.Current()
	require.True(t, ok)
	assert.Equal(t, int64(1), current.ID)
	assert.Equal(t, domain.RoleDoctor, current.Role)
	assert.Equal(t, domain.SourceClaims, current.Source)
}

func TestManager_RestoreExpiredToken(t *testing.T) {
	manager, store, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, store.SetAccessToken(ctx, makeToken(t, liveTokenPayload(-time.Minute))))

	require.NoError(t, manager.Restore(ctx))
	assert.Equal(t, StatusUnauthenticated, manager.State())
}

func TestManager_RestorePrefersSnapshot(t *testing.T) {
	manager, store, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, store.SetAccessToken(ctx, makeToken(t, liveTokenPayload(time.Hour))))
	require.NoError(t, store.SetAccountSnapshot(ctx, domain.SessionContext{
		ID: 1, Email: "doc@example.com", Role: domain.RoleDoctor,
		IsApproved: false, IsActive: true, Source: domain.SourceAccount,
	}))

	require.NoError(t, manager.Restore(ctx))
	current, ok := manager.Current()
	require.True(t, ok)
	// The stored account snapshot is fresher than the claim snapshot.
	assert.False(t, current.IsApproved)
	assert.Equal(t, domain.SourceAccount, current.Source)
}

func TestManager_RefreshDueDebounce(t *testing.T) {
	manager, store, _ := newTestManager(t)
	ctx := context.Background()

	t.Run("outside threshold stays quiet", func(t *testing.T) {
		require.NoError(t, store.SetAccessToken(ctx, makeToken(t, liveTokenPayload(time.Hour))))
		assert.False(t, manager.RefreshDue(ctx))
	})

	t.Run("fires once per token inside threshold", func(t *testing.T) {
		payload := liveTokenPayload(10 * time.Minute)
		require.NoError(t, store.SetAccessToken(ctx, makeToken(t, payload)))
		assert.True(t, manager.RefreshDue(ctx))
		assert.False(t, manager.RefreshDue(ctx))
		assert.False(t, manager.RefreshDue(ctx))
	})

	t.Run("new token re-arms the signal", func(t *testing.T) {
		payload := liveTokenPayload(10 * time.Minute)
		payload["jti"] = "token-2"
		require.NoError(t, store.SetAccessToken(ctx, makeToken(t, payload)))
		assert.True(t, manager.RefreshDue(ctx))
		assert.False(t, manager.RefreshDue(ctx))
	})

	t.Run("expired token never signals", func(t *testing.T) {
		payload := liveTokenPayload(-time.Minute)
		payload["jti"] = "token-3"
		require.NoError(t, store.SetAccessToken(ctx, makeToken(t, payload)))
		assert.False(t, manager.RefreshDue(ctx))
	})
}

func TestManager_ApplyAccountRefresh(t *testing.T) {
	manager, store, dispatcher := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, manager.Establish(ctx,
		makeToken(t, liveTokenPayload(time.Hour)), "refresh-token",
		domain.SessionContext{ID: 1, Role: domain.RoleDoctor, IsApproved: true, IsActive: true, Source: domain.SourceAccount},
	))

	fresh := domain.SessionContext{ID: 1, Role: domain.RoleDoctor, IsApproved: false, IsActive: true, Source: domain.SourceAccount}
	require.NoError(t, manager.ApplyAccount(ctx, fresh))

	current, ok := manager.Current()
	require.True(t, ok)
	assert.False(t, current.IsApproved)
	assert.True(t, manager.Authenticated())
	assert.Len(t, dispatcher.byType(events.EventSessionRefreshed), 1)

	snapshot, err := store.AccountSnapshot(ctx)
	require.NoError(t, err)
	assert.False(t, snapshot.IsApproved)
}

func TestManager_ApplyAccountDeactivated(t *testing.T) {
	manager, store, dispatcher := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, manager.Establish(ctx,
		makeToken(t, liveTokenPayload(time.Hour)), "refresh-token",
		domain.SessionContext{ID: 1, Role: domain.RoleDoctor, IsApproved: true, IsActive: true, Source: domain.SourceAccount},
	))

	fresh := domain.SessionContext{ID: 1, Role: domain.RoleDoctor, IsApproved: true, IsActive: false, Source: domain.SourceAccount}
	require.NoError(t, manager.ApplyAccount(ctx, fresh))

	assert.Equal(t, StatusDisabled, manager.State())
	_, ok := manager.Current()
	assert.False(t, ok)

	revoked := dispatcher.byType(events.EventSessionRevoked)
	require.Len(t, revoked, 1)
	payload, ok := revoked[0].Payload.(events.SessionRevokedPayload)
	require.True(t, ok)
	assert.Equal(t, int64(1), payload.AccountID)

	_, err := store.AccessToken(ctx)
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestManager_SignOut(t *testing.T) {
	manager, store, dispatcher := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, manager.Establish(ctx,
		makeToken(t, liveTokenPayload(time.Hour)), "refresh-token",
		domain.SessionContext{ID: 1, Role: domain.RoleDoctor, IsActive: true, Source: domain.SourceAccount},
	))

	require.NoError(t, manager.SignOut(ctx))
	assert.Equal(t, StatusUnauthenticated, manager.State())
	assert.Len(t, dispatcher.byType(events.EventSessionRevoked), 1)

	_, err := store.RefreshToken(ctx)
	assert.ErrorIs(t, err, ErrNotCached)
}
