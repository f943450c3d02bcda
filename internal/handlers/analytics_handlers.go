package handlers

import (
	"context"
	"net/http"
	"time"

	"dinepos/internal/common"
	"dinepos/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SalesSummarizer is implemented by analytics.AnalyticsService.
type SalesSummarizer interface {
	Today() (time.Time, time.Time)
	Summary(ctx context.Context, outletID uuid.UUID, from, to time.Time) (*models.SalesSummary, error)
}

type AnalyticsHandlers struct {
	analytics SalesSummarizer
}

func NewAnalyticsHandlers(analytics SalesSummarizer) *AnalyticsHandlers {
	return &AnalyticsHandlers{analytics: analytics}
}

// Summary handles GET /analytics/summary?from=YYYY-MM-DD&to=YYYY-MM-DD. Both days are
// inclusive; without parameters the current day is summarized.
func (h *AnalyticsHandlers) Summary(c echo.Context) error {
	outletID, _, ok := outletAndUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	from, to := h.analytics.Today()
	if v := c.QueryParam("from"); v != "" {
		parsed, err := common.ParseDate(v, "from")
		if err != nil {
			return common.SendValidationError(c, "from", err.Error())
		}
		from = parsed
		to = parsed.AddDate(0, 0, 1)
	}
	if v := c.QueryParam("to"); v != "" {
		parsed, err := common.ParseDate(v, "to")
		if err != nil {
			return common.SendValidationError(c, "to", err.Error())
		}
		to = parsed.AddDate(0, 0, 1)
	}
	if err := common.ValidateDateRange(from, to); err != nil {
		return common.SendValidationError(c, "to", err.Error())
	}

	summary, err := h.analytics.Summary(c.Request().Context(), outletID, from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}
