package auth

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/medikariyer/api/internal/domain"
)

// Claims is the decoded payload segment of a bearer token.
//
// Decoding performs NO signature verification. A Claims value is a snapshot
// of the account at issuance time, nothing more: it must never be treated as
// a security boundary or as current truth about account status. The only
// authoritative status check is the strict gate's live account lookup, which
// is re-made server-side on every protected call.
type Claims map[string]any

var b64Std = strings.NewReplacer("-", "+", "_", "/")

// Decode structurally parses a token into its claims. The token must consist
// of exactly three non-empty dot-separated segments; the middle segment is
// URL-safe base64 and is converted to the standard alphabet before decoding.
// Malformed input is an expected case and yields ok == false, never a panic.
func Decode(token string) (Claims, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, false
	}
	for _, part := range parts {
		if part == "" {
			return nil, false
		}
	}

	payload := b64Std.Replace(parts[1])
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	if err != nil {
		return nil, false
	}

	var claims Claims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, false
	}
	return claims, true
}

// Subject resolves the canonical account identifier from the claims,
// tolerating the legacy field names: userId first, then id, then sub. A
// missing subject means the token is unusable; callers must treat it as
// unauthenticated rather than fall back to a placeholder identity.
func (c Claims) Subject() (string, bool) {
	for _, key := range []string{"userId", "id", "sub"} {
		if v, ok := c[key]; ok {
			if s, ok := claimString(v); ok {
				return s, true
			}
		}
	}
	return "", false
}

// SubjectID resolves the subject as a numeric account id.
func (c Claims) SubjectID() (int64, bool) {
	s, ok := c.Subject()
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Email returns the email claim, empty when absent.
func (c Claims) Email() string {
	s, _ := claimString(c["email"])
	return s
}

// Role returns the role claim, empty when absent.
func (c Claims) Role() domain.Role {
	s, _ := claimString(c["role"])
	return domain.Role(s)
}

// IsApproved returns the isApproved claim; absent counts as false. Present
// mainly in freshly issued tokens and only trusted on the optional path.
func (c Claims) IsApproved() bool {
	v, ok := c["isApproved"].(bool)
	return ok && v
}

// IssuedAt returns the iat claim in Unix seconds.
func (c Claims) IssuedAt() (int64, bool) {
	return claimInt64(c["iat"])
}

// ExpiresAt returns the exp claim in Unix seconds.
func (c Claims) ExpiresAt() (int64, bool) {
	return claimInt64(c["exp"])
}

// TokenID returns the jti claim, empty when absent.
func (c Claims) TokenID() string {
	s, _ := claimString(c["jti"])
	return s
}

func claimString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		if val == "" {
			return "", false
		}
		return val, true
	case float64:
		return strconv.FormatInt(int64(val), 10), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case json.Number:
		return val.String(), true
	}
	return "", false
}

func claimInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case float64:
		return int64(val), true
	case int64:
		return val, true
	case json.Number:
		parsed, err := val.Int64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}
