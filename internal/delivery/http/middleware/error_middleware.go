package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"sprout/internal/delivery/http/response"
	domainerrors "sprout/internal/domain/errors"
)

// ErrorMiddleware converts every error escaping a handler into the uniform
// envelope, so nothing reaches the transport layer unwrapped.
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPCode(), response.Envelope{
			Status:  response.StatusError,
			Message: appErr.Message(),
		})

		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		c.JSON(httpErr.Code, response.Envelope{
			Status:  response.StatusError,
			Message: fmt.Sprintf("%v", httpErr.Message),
		})

		return
	}

	m.logger.Error("Unhandled error",
		slog.String("error", err.Error()),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)

	// The raw error text is embedded on purpose; existing clients surface it
	// when reporting problems. A hardened deployment should suppress it.
	c.JSON(http.StatusInternalServerError, response.Envelope{
		Status:  response.StatusError,
		Message: "Internal Server Error: " + err.Error(),
	})
}
