package errors

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // Caller-facing error message
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the caller-facing error message
func (e *BaseError) Message() string {
	return e.message
}

// Predefined error types. The 400-vs-404 split is not uniform: each error
// carries the status the endpoint that raises it has always answered with.
var (
	// User-related errors
	ErrUIDExists = NewBaseError(
		http.StatusBadRequest,
		"UID_EXISTS",
		"UID already exists",
	)

	ErrAuthInconsistent = NewBaseError(
		http.StatusBadRequest,
		"AUTH_FAILED",
		"Autentikasi Gagal",
	)

	// Raised by /add_device and /del_device.
	ErrUserNotFound = NewBaseError(
		http.StatusBadRequest,
		"USER_NOT_FOUND",
		"User not found",
	)

	// Raised by /logout.
	ErrUserMissing = NewBaseError(
		http.StatusNotFound,
		"USER_MISSING",
		"User not found in Firestore",
	)

	// Raised by /notifications.
	ErrNoUserWithEmail = NewBaseError(
		http.StatusNotFound,
		"USER_EMAIL_NOT_FOUND",
		"No user found with the given email",
	)

	// Device-related errors
	ErrDeviceAlreadyAdded = NewBaseError(
		http.StatusBadRequest,
		"DEVICE_ALREADY_EXISTS",
		"Device already exists",
	)

	// Raised by /add_device when the pairing token matches nothing.
	ErrDeviceNotRegistered = NewBaseError(
		http.StatusBadRequest,
		"DEVICE_NOT_REGISTERED",
		"Device not found",
	)

	ErrDeviceNotFound = NewBaseError(
		http.StatusNotFound,
		"DEVICE_NOT_FOUND",
		"Device not found",
	)

	// Raised by /device/update_device/ and /device/delete_device/.
	ErrDeviceMissing = NewBaseError(
		http.StatusNotFound,
		"DEVICE_MISSING",
		"Device not found in Firestore",
	)

	ErrDeviceTokenNotFound = NewBaseError(
		http.StatusNotFound,
		"DEVICE_TOKEN_NOT_FOUND",
		"Device not found with the provided token",
	)

	ErrPhotoNotFound = NewBaseError(
		http.StatusNotFound,
		"PHOTO_NOT_FOUND",
		"Photo not found",
	)
)

// NewValidationError reports a missing or malformed request field.
func NewValidationError(message string) *BaseError {
	return NewBaseError(http.StatusBadRequest, "VALIDATION_FAILED", message)
}

// NewScheduleConflictError reports a watering schedule within 60 minutes of
// an existing entry. The message names the conflicting hour.
func NewScheduleConflictError(existingHour string) *BaseError {
	return NewBaseError(
		http.StatusBadRequest,
		"SCHEDULE_CONFLICT",
		fmt.Sprintf("Cannot add schedule. There is already a schedule within 60 minutes of %s", existingHour),
	)
}
