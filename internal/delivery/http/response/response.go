package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	domainerrors "sprout/internal/domain/errors"
)

const (
	// StatusSuccess marks a successful envelope.
	StatusSuccess = "success"
	// StatusError marks a failed envelope.
	StatusError = "error"
)

// Envelope is the uniform response body of every endpoint. Data is always
// serialized, as null when there is no payload.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Success returns a 200 success envelope.
func Success(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, Envelope{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	})
}

// Error returns an error envelope with the given status code.
func Error(c echo.Context, statusCode int, message string, data any) error {
	return c.JSON(statusCode, Envelope{
		Status:  StatusError,
		Message: message,
		Data:    data,
	})
}

// BadRequest returns a 400 error envelope.
func BadRequest(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, message, nil)
}

// BindingError reports an unreadable request payload.
func BindingError(c echo.Context) error {
	return BadRequest(c, "Invalid request body")
}

// HandleAppError renders known application errors with their own status and
// message. Anything else is passed up to the catch-all error handler.
func HandleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return Error(c, appErr.HTTPCode(), appErr.Message(), nil)
	}

	return errors.WithStack(err)
}
