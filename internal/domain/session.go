package domain

import "strconv"

// SessionContext is the per-request (server) or per-app-session (client)
// identity derived by an authorization decision. It is rebuilt on every gate
// evaluation and never persisted.
//
// Which fields are fresh depends on the gate that built it: the strict gate
// fills role/approval/active from the live Account row, while the optional
// gate copies them straight from token claims (point-in-time values).
type SessionContext struct {
	ID         int64
	Email      string
	Role       Role
	IsApproved bool
	IsActive   bool
	Source     SessionSource
}

// SessionSource records which data source filled the context, so call sites
// can tell fresh fields from issuance-time snapshots.
type SessionSource string

const (
	// SourceAccount marks a context built from a live account lookup.
	SourceAccount SessionSource = "account"
	// SourceClaims marks a context copied from token claims without a
	// store lookup.
	SourceClaims SessionSource = "claims"
)

// SessionFromAccount builds a context from the authoritative account record.
func SessionFromAccount(a *Account) SessionContext {
	return SessionContext{
		ID:         a.ID,
		Email:      a.Email,
		Role:       a.Role,
		IsApproved: a.IsApproved,
		IsActive:   a.IsActive,
		Source:     SourceAccount,
	}
}

// SubjectKey returns the canonical string form of the account id, the shape
// used in token subjects and cache keys.
func (s SessionContext) SubjectKey() string {
	return strconv.FormatInt(s.ID, 10)
}
