package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medikariyer/api/internal/domain"
)

func newRoleApp(session *domain.SessionContext, allowed ...domain.Role) *fiber.App {
	app := fiber.New()
	if session != nil {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals(sessionKey, *session)
			return c.Next()
		})
	}
	app.Get("/", RequireRole(allowed...), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func TestRequireRole(t *testing.T) {
	doctor := &domain.SessionContext{ID: 1, Role: domain.RoleDoctor}
	admin := &domain.SessionContext{ID: 2, Role: domain.RoleAdmin}

	cases := []struct {
		name    string
		session *domain.SessionContext
		allowed []domain.Role
		status  int
	}{
		{"allowed role passes", admin, []domain.Role{domain.RoleAdmin}, http.StatusOK},
		{"other role rejected", doctor, []domain.Role{domain.RoleAdmin}, http.StatusForbidden},
		{"no session rejected", nil, []domain.Role{domain.RoleAdmin}, http.StatusUnauthorized},
		{"empty allow-list passes any session", doctor, nil, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newRoleApp(tc.session, tc.allowed...)
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
