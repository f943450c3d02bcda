package handlers

import (
	"net/http"
	"strconv"

	"dinepos/internal/common"
	"dinepos/internal/models"
	"dinepos/internal/services"

	"github.com/labstack/echo/v4"
)

// InventoryHandlers handles HTTP requests for inventory
type InventoryHandlers struct {
	inventoryService services.InventoryService
}

func NewInventoryHandlers(inventoryService services.InventoryService) *InventoryHandlers {
	return &InventoryHandlers{inventoryService: inventoryService}
}

// ListInventory handles GET /inventory?low_stock=true&item_id=
func (h *InventoryHandlers) ListInventory(c echo.Context) error {
	outletID, _, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset, err := pagination(c)
	if err != nil {
		return common.SendValidationError(c, "offset", err.Error())
	}
	filter := &models.InventorySearchFilter{Limit: limit, Offset: offset}
	if v := c.QueryParam("low_stock"); v != "" {
		filter.LowStockOnly, _ = strconv.ParseBool(v)
	}
	if v := c.QueryParam("item_id"); v != "" {
		itemID, err := common.ValidateUUID(v, "item_id")
		if err != nil {
			return common.SendValidationError(c, "item_id", err.Error())
		}
		filter.ItemID = &itemID
	}

	inventories, err := h.inventoryService.List(c.Request().Context(), outletID, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, inventories)
}

func (h *InventoryHandlers) LowStock(c echo.Context) error {
	outletID, _, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	inventories, err := h.inventoryService.LowStock(c.Request().Context(), outletID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, inventories)
}

// SetStock godoc
// @Summary Record a manual stock count for an item
// @Tags inventory
// @Accept json
// @Produce json
// @Param itemId path string true "Item ID"
// @Param stock body services.SetStockInput true "Stock"
// @Success 200 {object} models.Inventory
// @Router /inventory/{itemId} [put]
func (h *InventoryHandlers) SetStock(c echo.Context) error {
	outletID, userID, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	itemID, err := pathUUID(c, "itemId")
	if err != nil {
		return common.SendValidationError(c, "itemId", err.Error())
	}

	var req services.SetStockInput
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	inventory, err := h.inventoryService.SetStock(c.Request().Context(), outletID, itemID, &req, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, inventory)
}

func (h *InventoryHandlers) GetLogs(c echo.Context) error {
	outletID, _, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	itemID, err := pathUUID(c, "itemId")
	if err != nil {
		return common.SendValidationError(c, "itemId", err.Error())
	}
	limit, offset, err := pagination(c)
	if err != nil {
		return common.SendValidationError(c, "offset", err.Error())
	}

	logs, err := h.inventoryService.Logs(c.Request().Context(), outletID, itemID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}
