package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/medikariyer/api/internal/client/lifecycle"
	"github.com/medikariyer/api/internal/domain"
	"github.com/medikariyer/api/pkg/util"
)

// AccountClient fetches the caller's current account from the backend's
// GET /auth/me endpoint. It implements lifecycle.AccountFetcher.
type AccountClient struct {
	baseURL string
	timeout time.Duration
}

// NewAccountClient constructs a client for the given API base URL.
func NewAccountClient(baseURL string, timeout time.Duration) *AccountClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AccountClient{baseURL: baseURL, timeout: timeout}
}

type meResponse struct {
	Data struct {
		Account struct {
			ID         int64       `json:"id"`
			Email      string      `json:"email"`
			Role       domain.Role `json:"role"`
			IsApproved bool        `json:"is_approved"`
			IsActive   bool        `json:"is_active"`
		} `json:"account"`
	} `json:"data"`
}

// CurrentAccount calls GET /auth/me with the given bearer token. A 401 maps
// to lifecycle.ErrUnauthorized, a 403 carrying ACCOUNT_INACTIVE to
// lifecycle.ErrAccountDisabled; transport errors pass through so the
// revalidator can treat them as transient.
func (c *AccountClient) CurrentAccount(ctx context.Context, accessToken string) (domain.SessionContext, error) {
	agent := fiber.Get(c.baseURL + "/auth/me")
	agent.Set(fiber.HeaderAuthorization, "Bearer "+accessToken)
	agent.Timeout(c.timeout)
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < c.timeout {
			agent.Timeout(remaining)
		}
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return domain.SessionContext{}, errs[0]
	}

	switch {
	case code == http.StatusUnauthorized:
		return domain.SessionContext{}, lifecycle.ErrUnauthorized
	case code == http.StatusForbidden:
		if rejectionCode(body) == util.CodeAccountInactive {
			return domain.SessionContext{}, lifecycle.ErrAccountDisabled
		}
		return domain.SessionContext{}, lifecycle.ErrUnauthorized
	case code != http.StatusOK:
		return domain.SessionContext{}, fmt.Errorf("remote: unexpected status %d", code)
	}

	var parsed meResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.SessionContext{}, errors.Join(errors.New("remote: malformed response"), err)
	}

	account := parsed.Data.Account
	return domain.SessionContext{
		ID:         account.ID,
		Email:      account.Email,
		Role:       account.Role,
		IsApproved: account.IsApproved,
		IsActive:   account.IsActive,
		Source:     domain.SourceAccount,
	}, nil
}

// rejectionCode extracts the machine-readable code from a gate rejection
// envelope, empty when the body is not one.
func rejectionCode(body []byte) string {
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Error.Code
}
