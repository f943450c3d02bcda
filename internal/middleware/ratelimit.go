package middleware

import (
	"net/http"
	"time"

	"dinepos/internal/caching"
	"dinepos/internal/common"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RateLimit caps requests per user per window. Redis failures let the request through.
func RateLimit(cache caching.CacheService, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limit <= 0 {
				return next(c)
			}
			subject := c.RealIP()
			if userID, ok := common.GetUserIDFromContext(c.Request().Context()); ok {
				subject = userID.String()
			}

			limited, err := cache.IsRateLimited(c.Request().Context(), subject, limit, window)
			if err != nil {
				logrus.WithError(err).Warn("rate limit check failed")
				return next(c)
			}
			if limited {
				return c.JSON(http.StatusTooManyRequests, common.CreateErrorResponse("RATE_LIMITED", "Too many requests", nil))
			}
			return next(c)
		}
	}
}
