package handler

import (
	"github.com/labstack/echo/v4"

	"sprout/internal/delivery/http/response"
)

// HealthCheck reports service liveness.
func HealthCheck(c echo.Context) error {
	return response.Success(c, "OK", nil)
}
