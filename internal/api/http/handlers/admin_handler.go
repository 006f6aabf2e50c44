package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/medikariyer/api/internal/api/dto"
	"github.com/medikariyer/api/internal/service"
)

// AdminHandler exposes the back-office account administration endpoints.
// Routes run behind the strict gate plus an admin role check.
type AdminHandler struct {
	auth *service.AuthService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService) *AdminHandler {
	return &AdminHandler{auth: authService}
}

// UpdateAccountStatus handles PATCH /admin/accounts/:id/status. Approvals and
// deactivations land here; the strict gate picks the new flags up on the
// target's very next request.
func (h *AdminHandler) UpdateAccountStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(http.StatusBadRequest, "invalid account id")
	}

	var req dto.AccountStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.IsActive == nil || req.IsApproved == nil {
		return fiber.NewError(http.StatusBadRequest, "is_active and is_approved required")
	}

	account, err := h.auth.SetAccountStatus(c.Context(), int64(id), *req.IsActive, *req.IsApproved)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{"account": accountResponse(account)},
	})
}
