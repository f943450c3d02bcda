package handlers

import (
	"net/http"
	"time"

	"dinepos/internal/common"
	"dinepos/internal/models"
	"dinepos/internal/services"

	"github.com/labstack/echo/v4"
)

// OrderHandlers handles HTTP requests for orders
type OrderHandlers struct {
	orderService services.OrderService
}

// NewOrderHandlers creates a new order handlers instance
func NewOrderHandlers(orderService services.OrderService) *OrderHandlers {
	return &OrderHandlers{
		orderService: orderService,
	}
}

type updateStatusRequest struct {
	Status             models.OrderStatus `json:"status"`
	CancellationReason *string            `json:"cancellationReason"`
}

// CreateOrder godoc
// @Summary Create an order
// @Tags orders
// @Accept json
// @Produce json
// @Param order body services.CreateOrderInput true "Order"
// @Success 201 {object} models.Order
// @Failure 400 {object} common.ErrorResponse
// @Failure 404 {object} common.ErrorResponse
// @Failure 409 {object} common.ErrorResponse
// @Router /orders [post]
func (h *OrderHandlers) CreateOrder(c echo.Context) error {
	outletID, userID, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.CreateOrderInput
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	order, err := h.orderService.Create(c.Request().Context(), outletID, userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// ModifyOrderItems godoc
// @Summary Add, update and remove lines of an open order
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param changes body services.ModifyLinesInput true "Line changes"
// @Success 200 {object} models.Order
// @Failure 400 {object} common.ErrorResponse
// @Router /orders/{id}/items [patch]
func (h *OrderHandlers) ModifyOrderItems(c echo.Context) error {
	outletID, _, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req services.ModifyLinesInput
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	order, err := h.orderService.ModifyLines(c.Request().Context(), outletID, orderID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus godoc
// @Summary Move an order through the kitchen workflow or cancel it
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.Order
// @Failure 400 {object} common.ErrorResponse
// @Router /orders/{id}/status [patch]
func (h *OrderHandlers) UpdateOrderStatus(c echo.Context) error {
	outletID, _, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	order, err := h.orderService.UpdateStatus(c.Request().Context(), outletID, orderID, req.Status, req.CancellationReason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	outletID, _, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	order, err := h.orderService.Get(c.Request().Context(), outletID, orderID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// ListOrders handles GET /orders with optional status, type, table and date filters.
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	outletID, _, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset, err := pagination(c)
	if err != nil {
		return common.SendValidationError(c, "offset", err.Error())
	}
	filter := &models.OrderSearchFilter{Limit: limit, Offset: offset}

	if s := c.QueryParam("status"); s != "" {
		status := models.OrderStatus(s)
		if !status.Valid() {
			return common.SendValidationError(c, "status", "unknown order status")
		}
		filter.Status = &status
	}
	if t := c.QueryParam("order_type"); t != "" {
		orderType := models.OrderType(t)
		if !orderType.Valid() {
			return common.SendValidationError(c, "order_type", "order type must be DINE_IN or TAKEAWAY")
		}
		filter.OrderType = &orderType
	}
	if t := c.QueryParam("table_id"); t != "" {
		tableID, err := common.ValidateUUID(t, "table_id")
		if err != nil {
			return common.SendValidationError(c, "table_id", err.Error())
		}
		filter.TableID = &tableID
	}
	if d := c.QueryParam("date_from"); d != "" {
		from, err := common.ParseDate(d, "date_from")
		if err != nil {
			return common.SendValidationError(c, "date_from", err.Error())
		}
		filter.DateFrom = &from
	}
	if d := c.QueryParam("date_to"); d != "" {
		to, err := common.ParseDate(d, "date_to")
		if err != nil {
			return common.SendValidationError(c, "date_to", err.Error())
		}
		// inclusive of the whole day
		to = to.Add(24 * time.Hour)
		filter.DateTo = &to
	}

	orders, err := h.orderService.List(c.Request().Context(), outletID, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"limit":  limit,
		"offset": offset,
	})
}
