package handlers

import (
	"net/http"

	"dinepos/internal/common"
	"dinepos/internal/services"

	"github.com/labstack/echo/v4"
)

type TableHandlers struct {
	tableService services.TableService
}

func NewTableHandlers(tableService services.TableService) *TableHandlers {
	return &TableHandlers{tableService: tableService}
}

func (h *TableHandlers) ListTables(c echo.Context) error {
	outletID, _, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	tables, err := h.tableService.List(c.Request().Context(), outletID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tables)
}

// GetTable includes the id of the open order seated at the table, if any.
func (h *TableHandlers) GetTable(c echo.Context) error {
	outletID, _, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	tableID, err := pathUUID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	table, err := h.tableService.Get(c.Request().Context(), outletID, tableID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, table)
}
