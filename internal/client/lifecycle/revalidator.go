package lifecycle

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/medikariyer/api/internal/client/session"
	"github.com/medikariyer/api/internal/domain"
	"github.com/medikariyer/api/internal/events"
)

// ErrUnauthorized is returned by an AccountFetcher when the server rejected
// the presented token.
var ErrUnauthorized = errors.New("lifecycle: token rejected by server")

// ErrAccountDisabled is returned by an AccountFetcher when the server
// established the caller's identity but reported the account inactive.
var ErrAccountDisabled = errors.New("lifecycle: account disabled server-side")

// AccountFetcher performs the authoritative "who am I now" call against the
// backend, conceptually the strict gate's lookup expressed as a client call.
type AccountFetcher interface {
	CurrentAccount(ctx context.Context, accessToken string) (domain.SessionContext, error)
}

// Revalidator closes the gap where a token is still structurally valid but
// the account was disabled in the interim: on every transition into the
// active state it silently re-checks account status and lets the session
// manager force a sign-out when the account is gone.
type Revalidator struct {
	sessions *session.Manager
	fetcher  AccountFetcher
	logger   *zap.Logger
	inFlight atomic.Bool
	state    atomic.Value // events.AppState
}

// New constructs a revalidator and subscribes it to app-state transitions on
// the dispatcher.
func New(sessions *session.Manager, fetcher AccountFetcher, dispatcher events.Dispatcher, logger *zap.Logger) *Revalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Revalidator{
		sessions: sessions,
		fetcher:  fetcher,
		logger:   logger,
	}
	r.state.Store(events.AppStateActive)
	dispatcher.Subscribe(events.EventAppStateChanged, r.handleAppState)
	return r
}

func (r *Revalidator) handleAppState(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AppStateChangedPayload)
	if !ok {
		return nil
	}

	previous, _ := r.state.Load().(events.AppState)
	r.state.Store(payload.Current)

	// Only transitions into the active state trigger a check.
	if payload.Current != events.AppStateActive || previous == events.AppStateActive {
		return nil
	}
	return r.Revalidate(ctx)
}

// Revalidate performs one authoritative re-fetch of account state, provided
// the local session believes it is authenticated and an identity is cached.
// Checks never overlap: a transition firing while a previous check is still
// outstanding is coalesced into it, so results cannot apply out of order.
func (r *Revalidator) Revalidate(ctx context.Context) error {
	if !r.sessions.Authenticated() {
		return nil
	}
	current, ok := r.sessions.Current()
	if !ok {
		return nil
	}

	if !r.inFlight.CompareAndSwap(false, true) {
		return nil
	}
	defer r.inFlight.Store(false)

	token, err := r.sessions.AccessToken(ctx)
	if err != nil {
		return nil
	}

	fresh, err := r.fetcher.CurrentAccount(ctx, token)
	if err != nil {
		if errors.Is(err, ErrAccountDisabled) {
			// Identity was established server-side and the account is
			// gone. This is the one failure that must become visible as
			// a forced sign-out.
			disabled := current
			disabled.IsActive = false
			disabled.Source = domain.SourceAccount
			return r.sessions.ApplyAccount(ctx, disabled)
		}
		if errors.Is(err, ErrUnauthorized) {
			// The token-refresh pathway owns this case. Clearing state
			// here could race an in-flight refresh.
			r.logger.Debug("foreground revalidation: token rejected, deferring to refresh path",
				zap.Int64("account_id", current.ID),
			)
			return nil
		}
		// Transient network failure: the session stays optimistically
		// valid until the next successful check or token expiry.
		r.logger.Debug("foreground revalidation skipped",
			zap.Int64("account_id", current.ID),
			zap.Error(err),
		)
		return nil
	}

	return r.sessions.ApplyAccount(ctx, fresh)
}
