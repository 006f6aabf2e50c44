package auth

import "time"

// DefaultRefreshThreshold is the proactive-refresh window used when no
// threshold is configured.
const DefaultRefreshThreshold = 15 * time.Minute

// Clock evaluates token lifetime against a configurable refresh threshold.
// The time source is injected so tests can pin "now".
type Clock struct {
	now       func() time.Time
	threshold time.Duration
}

// NewClock builds a clock over the real time source.
func NewClock(threshold time.Duration) Clock {
	return NewClockAt(threshold, time.Now)
}

// NewClockAt builds a clock over the given time source.
func NewClockAt(threshold time.Duration, now func() time.Time) Clock {
	if threshold <= 0 {
		threshold = DefaultRefreshThreshold
	}
	if now == nil {
		now = time.Now
	}
	return Clock{now: now, threshold: threshold}
}

// IsExpired reports whether the claims are past their expiry. A missing exp
// claim counts as expired: ambiguity fails closed.
func (k Clock) IsExpired(c Claims) bool {
	exp, ok := c.ExpiresAt()
	if !ok {
		return true
	}
	return exp <= k.now().Unix()
}

// RemainingMinutes returns whole minutes until expiry, floored at zero.
func (k Clock) RemainingMinutes(c Claims) int {
	exp, ok := c.ExpiresAt()
	if !ok {
		return 0
	}
	secs := exp - k.now().Unix()
	if secs <= 0 {
		return 0
	}
	return int(secs / 60)
}

// ShouldRefresh reports whether a proactive refresh is due: the token is
// still alive but inside the threshold window. An already-expired token
// returns false: recovering a dead token belongs to the re-authentication
// path, not the proactive-refresh path, and the two stay distinct.
func (k Clock) ShouldRefresh(c Claims) bool {
	remaining := k.RemainingMinutes(c)
	return remaining > 0 && remaining <= int(k.threshold/time.Minute)
}

// IsValid reports whether the claims carry a resolvable subject, an email
// and a role, and are not expired.
func (k Clock) IsValid(c Claims) bool {
	if _, ok := c.Subject(); !ok {
		return false
	}
	if c.Email() == "" || c.Role() == "" {
		return false
	}
	return !k.IsExpired(c)
}
