package handlers

import (
	"net/http"
	"strconv"

	"dinepos/internal/common"
	"dinepos/internal/models"
	"dinepos/internal/services"

	"github.com/labstack/echo/v4"
)

// ItemHandlers serves the menu catalog.
type ItemHandlers struct {
	itemService services.ItemService
}

func NewItemHandlers(itemService services.ItemService) *ItemHandlers {
	return &ItemHandlers{itemService: itemService}
}

func (h *ItemHandlers) ListItems(c echo.Context) error {
	outletID, _, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset, err := pagination(c)
	if err != nil {
		return common.SendValidationError(c, "offset", err.Error())
	}
	filter := &models.ItemSearchFilter{
		Query:    c.QueryParam("q"),
		Category: c.QueryParam("category"),
		Limit:    limit,
		Offset:   offset,
	}
	if v := c.QueryParam("available"); v != "" {
		filter.AvailableOnly, _ = strconv.ParseBool(v)
	}

	items, err := h.itemService.List(c.Request().Context(), outletID, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ItemHandlers) CreateItem(c echo.Context) error {
	outletID, _, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var item models.Item
	if err := c.Bind(&item); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.itemService.Create(c.Request().Context(), outletID, &item); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, &item)
}

func (h *ItemHandlers) GetItem(c echo.Context) error {
	outletID, _, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	itemID, err := pathUUID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	item, err := h.itemService.Get(c.Request().Context(), outletID, itemID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandlers) UpdateItem(c echo.Context) error {
	outletID, _, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	itemID, err := pathUUID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var item models.Item
	if err := c.Bind(&item); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	item.ID = itemID

	if err := h.itemService.Update(c.Request().Context(), outletID, &item); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, &item)
}
