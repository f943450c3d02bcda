package handlers

import (
	"net/http"

	"dinepos/internal/common"
	"dinepos/internal/services"

	"github.com/labstack/echo/v4"
)

type MeHandlers struct {
	rbacService services.RBACService
}

func NewMeHandlers(rbacService services.RBACService) *MeHandlers {
	return &MeHandlers{rbacService: rbacService}
}

// Permissions lists what the caller's role may do at the current outlet.
func (h *MeHandlers) Permissions(c echo.Context) error {
	ctx := c.Request().Context()
	outletID, userID, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	role, ok := common.GetRoleFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	permissions, err := h.rbacService.Permissions(ctx, outletID, role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user_id":     userID,
		"outlet_id":   outletID,
		"role":        role,
		"permissions": permissions,
	})
}
