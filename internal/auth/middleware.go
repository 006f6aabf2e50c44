package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/medikariyer/api/internal/domain"
	"github.com/medikariyer/api/internal/repository"
	"github.com/medikariyer/api/pkg/util"
)

const sessionKey = "auth_session"

// seenSessionsCap bounds the log-dedup map; crossing it triggers a sweep of
// entries whose tokens have expired.
const seenSessionsCap = 4096

// Middleware evaluates bearer tokens against the authoritative account
// store. It exposes a strict gate (RequireSession) and an optional gate
// (OptionalSession) over one shared token pipeline; the two diverge only in
// failure policy and in whether the store is consulted.
type Middleware struct {
	tokens        *TokenManager
	accounts      repository.AccountRepository
	logger        *zap.Logger
	lookupTimeout time.Duration

	// seenSessions dedupes the per-session info log line, mapping the token
	// key to the token's expiry so stale entries can be swept instead of
	// accumulating for the life of the process. A race here at worst
	// duplicates one log line; nothing safety-critical reads it.
	mu           sync.Mutex
	seenSessions map[string]int64
}

// NewMiddleware constructs the gate middleware.
func NewMiddleware(tokens *TokenManager, accounts repository.AccountRepository, lookupTimeout time.Duration, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{
		tokens:        tokens,
		accounts:      accounts,
		logger:        logger,
		lookupTimeout: lookupTimeout,
		seenSessions:  make(map[string]int64),
	}
}

// authenticate runs the shared token pipeline: header presence, bearer
// extraction, signature verification and structural decode. It returns the
// decoded claims or the rejection both gates interpret by their own policy.
func (m *Middleware) authenticate(c *fiber.Ctx) (Claims, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return nil, util.NewUnauthorized(util.CodeNoAuthHeader, "authorization header required")
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return nil, util.NewUnauthorized(util.CodeNoToken, "bearer token required")
	}
	token := parts[1]

	if _, err := m.tokens.Verify(token); err != nil {
		// Expired, forged and garbled tokens all reject the same way; the
		// reason survives in the log for observability.
		m.logger.Debug("token rejected",
			zap.String("reason", VerifyReason(err)),
			zap.String("path", c.Path()),
		)
		return nil, util.NewUnauthorized(util.CodeInvalidToken, "invalid token")
	}

	claims, ok := Decode(token)
	if !ok {
		return nil, util.NewUnauthorized(util.CodeInvalidToken, "invalid token")
	}
	return claims, nil
}

// RequireSession is the strict gate. It short-circuits on the first failure,
// looks the account up fresh on every request (cached status would let a
// just-deactivated account keep its session), applies the role-conditional
// status rules and attaches a SessionContext built from the live account
// row rather than from the claims.
func (m *Middleware) RequireSession(c *fiber.Ctx) error {
	claims, err := m.authenticate(c)
	if err != nil {
		return err
	}

	subject, ok := claims.SubjectID()
	if !ok {
		return util.NewUnauthorized(util.CodeInvalidPayload, "token payload missing subject")
	}

	ctx := c.UserContext()
	if m.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.lookupTimeout)
		defer cancel()
	}

	account, err := m.accounts.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewUnauthorized(util.CodeUnknownUser, "unknown user")
		}
		// Store outage is retryable infrastructure failure, never an
		// identity verdict.
		m.logger.Error("account lookup failed",
			zap.Int64("subject", subject),
			zap.Error(err),
		)
		return util.NewRetryable(util.CodeLookupFailed, "account lookup unavailable", err)
	}

	// Admin accounts skip the status rules unconditionally. This privilege
	// exemption is intentional and load-bearing: the back office must stay
	// reachable even for flagged admin rows.
	if account.Role != domain.RoleAdmin {
		if !account.IsActive {
			return util.NewForbidden(util.CodeAccountInactive, "account is deactivated")
		}
		if !account.IsApproved {
			return util.NewForbidden(util.CodeAccountUnapproved, "account is pending approval")
		}
	}

	session := domain.SessionFromAccount(account)
	m.logSessionOnce(claims, session)
	c.Locals(sessionKey, session)
	return c.Next()
}

// OptionalSession is the lenient gate for content that adapts to a viewer
// but is not access-controlled. It runs the same steps as the strict gate up
// to subject resolution, never consults the account store, and absorbs every
// failure by proceeding unauthenticated.
//
// The context it attaches trusts the claim snapshot directly, including
// isApproved, unlike the strict path, which ignores the claim in favor of
// the live row. Product review pending on whether that asymmetry should
// survive; until then both paths keep their historical behavior.
func (m *Middleware) OptionalSession(c *fiber.Ctx) error {
	claims, err := m.authenticate(c)
	if err != nil {
		return c.Next()
	}

	subject, ok := claims.SubjectID()
	if !ok {
		return c.Next()
	}

	c.Locals(sessionKey, domain.SessionContext{
		ID:         subject,
		Email:      claims.Email(),
		Role:       claims.Role(),
		IsApproved: claims.IsApproved(),
		// The account was active when the token was issued; deactivations
		// since then are invisible on this path.
		IsActive: true,
		Source:   domain.SourceClaims,
	})
	return c.Next()
}

// logSessionOnce emits one info line per session (per token), not per
// request. Subsequent validations of the same token stay silent.
func (m *Middleware) logSessionOnce(claims Claims, session domain.SessionContext) {
	key := claims.TokenID()
	if key == "" {
		iat, _ := claims.IssuedAt()
		key = fmt.Sprintf("%d:%d", session.ID, iat)
	}
	exp, _ := claims.ExpiresAt()

	m.mu.Lock()
	_, seen := m.seenSessions[key]
	if !seen {
		if len(m.seenSessions) >= seenSessionsCap {
			m.sweepSeenSessionsLocked(time.Now().Unix())
		}
		m.seenSessions[key] = exp
	}
	m.mu.Unlock()
	if seen {
		return
	}

	m.logger.Info("session validated",
		zap.Int64("account_id", session.ID),
		zap.String("role", string(session.Role)),
	)
}

// sweepSeenSessionsLocked drops dedup entries whose tokens expired. Callers
// hold m.mu.
func (m *Middleware) sweepSeenSessionsLocked(now int64) {
	for key, exp := range m.seenSessions {
		if exp <= now {
			delete(m.seenSessions, key)
		}
	}
}

// SessionFromContext retrieves the session attached by either gate.
func SessionFromContext(c *fiber.Ctx) (domain.SessionContext, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return domain.SessionContext{}, false
	}
	session, ok := val.(domain.SessionContext)
	return session, ok
}
