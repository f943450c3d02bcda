package handlers

import (
	"net/http"

	"dinepos/internal/common"
	"dinepos/internal/models"
	"dinepos/internal/services"

	"github.com/labstack/echo/v4"
)

type SettingsHandlers struct {
	settingsService services.SettingsService
}

func NewSettingsHandlers(settingsService services.SettingsService) *SettingsHandlers {
	return &SettingsHandlers{settingsService: settingsService}
}

func (h *SettingsHandlers) GetSettings(c echo.Context) error {
	outletID, _, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	settings, err := h.settingsService.Get(c.Request().Context(), outletID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// PutSettings replaces the outlet's GST configuration.
func (h *SettingsHandlers) PutSettings(c echo.Context) error {
	outletID, _, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var settings models.OutletSettings
	if err := c.Bind(&settings); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.settingsService.Put(c.Request().Context(), outletID, &settings); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, &settings)
}
