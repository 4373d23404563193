package handlers

import (
	"wegroup/internal/common"

	"github.com/labstack/echo/v4"
)

// NotImplemented builds a handler for endpoints that have no real
// implementation yet. They return a typed 501 instead of fabricated data.
func NotImplemented(feature string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return common.SendNotImplemented(c, feature)
	}
}
