// Package client assembles the client-side session runtime: the credential
// store, the session manager and the foreground revalidator, sharing one
// event dispatcher.
package client

import (
	"time"

	"go.uber.org/zap"

	"github.com/medikariyer/api/internal/auth"
	"github.com/medikariyer/api/internal/client/lifecycle"
	"github.com/medikariyer/api/internal/client/remote"
	"github.com/medikariyer/api/internal/client/session"
	"github.com/medikariyer/api/internal/events"
)

// Config carries the values the runtime needs from the host application.
type Config struct {
	// APIBaseURL is the backend root the revalidator fetches /auth/me from.
	APIBaseURL string
	// RequestTimeout bounds the revalidator's account fetch.
	RequestTimeout time.Duration
	// RefreshThreshold is the proactive-refresh window; zero means the
	// default.
	RefreshThreshold time.Duration
}

// Runtime bundles the assembled client-side components. The host publishes
// app-state transitions on Dispatcher; everything else reacts.
type Runtime struct {
	Sessions    *session.Manager
	Revalidator *lifecycle.Revalidator
	Dispatcher  events.Dispatcher
}

// NewRuntime wires the session stack over the given store.
func NewRuntime(cfg Config, store session.Store, logger *zap.Logger) *Runtime {
	dispatcher := events.NewInMemoryDispatcher()
	sessions := session.NewManager(store, auth.NewClock(cfg.RefreshThreshold), dispatcher, logger)
	fetcher := remote.NewAccountClient(cfg.APIBaseURL, cfg.RequestTimeout)
	return &Runtime{
		Sessions:    sessions,
		Revalidator: lifecycle.New(sessions, fetcher, dispatcher, logger),
		Dispatcher:  dispatcher,
	}
}
