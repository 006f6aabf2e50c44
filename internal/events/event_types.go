package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	// EventAppStateChanged fires on application lifecycle transitions
	// between background and active.
	EventAppStateChanged EventType = "app_state_changed"
	// EventSessionRevoked fires when the local session is forced out,
	// typically because the account was deactivated server-side.
	EventSessionRevoked EventType = "session_revoked"
	// EventSessionRefreshed fires after the cached session context was
	// overwritten with a fresh authoritative result.
	EventSessionRefreshed EventType = "session_refreshed"
)

// AppState is an application lifecycle state as observed by the client.
type AppState string

const (
	AppStateActive     AppState = "active"
	AppStateBackground AppState = "background"
)

// Event represents a signal published on the dispatcher.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AppStateChangedPayload payload.
type AppStateChangedPayload struct {
	Previous AppState `json:"previous"`
	Current  AppState `json:"current"`
}

// SessionRevokedPayload payload.
type SessionRevokedPayload struct {
	AccountID int64  `json:"account_id"`
	Reason    string `json:"reason"`
}

// SessionRefreshedPayload payload.
type SessionRefreshedPayload struct {
	AccountID int64 `json:"account_id"`
	IsActive  bool  `json:"is_active"`
}
