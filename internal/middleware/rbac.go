package middleware

import (
	"dinepos/internal/common"
	"dinepos/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type RBACMiddleware struct {
	rbacService services.RBACService
}

func NewRBACMiddleware(rbacService services.RBACService) *RBACMiddleware {
	return &RBACMiddleware{
		rbacService: rbacService,
	}
}

func (m *RBACMiddleware) RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			outletID, ok := common.GetOutletIDFromContext(ctx)
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			role, ok := common.GetRoleFromContext(ctx)
			if !ok {
				return common.SendUnauthorizedError(c)
			}

			hasPermission, err := m.rbacService.HasPermission(ctx, outletID, role, permission)
			if err != nil {
				logrus.WithError(err).WithField("permission", permission).Error("permission check failed")
				return common.SendServerError(c, "Error checking permission")
			}
			if !hasPermission {
				return common.SendForbiddenError(c, "Insufficient permissions")
			}

			return next(c)
		}
	}
}
