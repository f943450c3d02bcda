package handlers

import (
	"net/http"
	"strings"

	"dinepos/internal/common"
	"dinepos/internal/services"

	"github.com/labstack/echo/v4"
)

// IdempotencyKeyHeader makes bill generation safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

type BillHandlers struct {
	billingService services.BillingService
}

func NewBillHandlers(billingService services.BillingService) *BillHandlers {
	return &BillHandlers{billingService: billingService}
}

// GenerateBill godoc
// @Summary Finalize an order into a bill
// @Tags bills
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Retry key"
// @Param bill body services.GenerateBillInput true "Bill request"
// @Success 201 {object} models.Bill
// @Failure 400 {object} common.ErrorResponse
// @Failure 404 {object} common.ErrorResponse
// @Router /bills [post]
func (h *BillHandlers) GenerateBill(c echo.Context) error {
	outletID, userID, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.GenerateBillInput
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	req.IdempotencyKey = strings.TrimSpace(c.Request().Header.Get(IdempotencyKeyHeader))
	if len(req.IdempotencyKey) > 128 {
		return common.SendValidationError(c, IdempotencyKeyHeader, "key cannot exceed 128 characters")
	}

	bill, err := h.billingService.GenerateBill(c.Request().Context(), outletID, userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, bill)
}

// GetBill handles GET /bills/:orderId
func (h *BillHandlers) GetBill(c echo.Context) error {
	outletID, _, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return common.SendValidationError(c, "orderId", err.Error())
	}

	bill, err := h.billingService.GetBill(c.Request().Context(), outletID, orderID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, bill)
}

// GetReceipt returns a short-lived download link for the archived receipt.
func (h *BillHandlers) GetReceipt(c echo.Context) error {
	outletID, _, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return common.SendValidationError(c, "orderId", err.Error())
	}

	url, err := h.billingService.ReceiptURL(c.Request().Context(), outletID, orderID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
