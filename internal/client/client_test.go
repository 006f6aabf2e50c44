package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medikariyer/api/internal/client/session"
	"github.com/medikariyer/api/internal/events"
)

func TestNewRuntimeWiring(t *testing.T) {
	runtime := NewRuntime(Config{
		APIBaseURL:       "http://127.0.0.1:1",
		RequestTimeout:   time.Second,
		RefreshThreshold: 15 * time.Minute,
	}, session.NewMemoryStore(), nil)
	ctx := context.Background()

	require.NoError(t, runtime.Sessions.Restore(ctx))
	assert.False(t, runtime.Sessions.Authenticated())

	// With no session the revalidator subscription absorbs a full
	// background/active cycle without reaching for the network.
	for _, state := range []events.AppState{events.AppStateBackground, events.AppStateActive} {
		err := runtime.Dispatcher.Publish(ctx, events.Event{
			Type:    events.EventAppStateChanged,
			Payload: events.AppStateChangedPayload{Current: state},
		})
		require.NoError(t, err)
	}
	assert.False(t, runtime.Sessions.Authenticated())
}
