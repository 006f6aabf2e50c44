package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/medikariyer/api/internal/domain"
)

// Token purposes carried in the typ claim.
const (
	TokenPurposeAccess  = "access"
	TokenPurposeRefresh = "refresh"
)

// TokenManager issues and verifies signed JWT tokens. Verification lives
// here, behind the golang-jwt library, and only at the server boundary; the
// codec in claims.go never checks signatures.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, accessTTLMinutes, refreshTTLMinutes int) *TokenManager {
	if accessTTLMinutes <= 0 {
		accessTTLMinutes = 60
	}
	if refreshTTLMinutes <= 0 {
		refreshTTLMinutes = 60 * 24 * 7
	}
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  time.Duration(accessTTLMinutes) * time.Minute,
		refreshTTL: time.Duration(refreshTTLMinutes) * time.Minute,
	}
}

// TokenClaims describes the JWT payload. Role and approval reflect the
// account at issuance time only.
type TokenClaims struct {
	UserID     int64       `json:"userId"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	IsApproved bool        `json:"isApproved"`
	Purpose    string      `json:"typ"`
	jwt.RegisteredClaims
}

// Generate builds and signs a token of the given purpose for the account.
func (tm *TokenManager) Generate(account *domain.Account, purpose string) (string, time.Time, error) {
	ttl := tm.accessTTL
	if purpose == TokenPurposeRefresh {
		ttl = tm.refreshTTL
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &TokenClaims{
		UserID:     account.ID,
		Email:      account.Email,
		Role:       account.Role,
		IsApproved: account.IsApproved,
		Purpose:    purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify checks the token's signature and registered claims and returns the
// typed payload. Verification failures keep their underlying jwt error so
// callers can tell an expired token from a forged one.
func (tm *TokenManager) Verify(tokenStr string) (*TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// VerifyReason maps a Verify error to a stable label for logs and metrics.
// All of these reject with the same INVALID_TOKEN family; the distinction
// exists for observability only.
func VerifyReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "bad_signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return "not_yet_valid"
	default:
		return "verification_failed"
	}
}
