package middleware

import (
	"net/http"
	"time"

	"wegroup/internal/caching"

	"github.com/labstack/echo/v4"
)

// RateLimit applies a fixed-window limit per client IP and route. Used on the
// unauthenticated auth endpoints.
func RateLimit(cacheSvc caching.CacheService, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP() + ":" + c.Path()
			limited, err := cacheSvc.IsRateLimited(c.Request().Context(), key, limit, window)
			if err != nil {
				// Redis being down must not lock everyone out.
				c.Logger().Warnf("rate limit check failed: %v", err)
				return next(c)
			}
			if limited {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}
