package handler

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"sprout/internal/delivery/http/response"
	"sprout/internal/usecase"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	UserUC usecase.UserUsecase
	Logger *slog.Logger
}

// AuthHandler serves the account and device-association endpoints.
type AuthHandler struct {
	userUC usecase.UserUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		userUC: params.UserUC,
		logger: params.Logger,
	}
}

// AuthRequest represents the request body for authentication. Field order
// matters: validation reports the first missing field.
type AuthRequest struct {
	Email    string `json:"email" label:"Email" validate:"required"`
	UID      string `json:"uid" label:"UID" validate:"required"`
	Fullname string `json:"fullname" label:"Fullname" validate:"required"`
	FCMToken string `json:"fcmToken" label:"FCM TOKEN" validate:"required"`
}

// AddDeviceRequest represents the request body for pairing a device
type AddDeviceRequest struct {
	Email string `json:"email" label:"Email" validate:"required"`
	Token string `json:"token" label:"Token" validate:"required"`
}

// LogoutRequest represents the request body for logout
type LogoutRequest struct {
	Email string `json:"email" label:"Email name" validate:"required"`
}

// DeleteDeviceRequest represents the request body for unpairing a device
type DeleteDeviceRequest struct {
	Email    string `json:"email" label:"Email" validate:"required"`
	DeviceID string `json:"device_id" label:"Device ID" validate:"required"`
}

// NotificationsRequest represents the query for listing notifications
type NotificationsRequest struct {
	Email string `json:"email" query:"email" label:"Email" validate:"required"`
}

// Auth handles account registration and FCM token refresh
func (h *AuthHandler) Auth(c echo.Context) error {
	var req AuthRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c)
	}
	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	user, err := h.userUC.Authenticate(c.Request().Context(), req.Email, req.UID, req.Fullname, req.FCMToken)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "Autentikasi Berhasil", user)
}

// AddDevice associates a device with the user by its pairing token
func (h *AuthHandler) AddDevice(c echo.Context) error {
	var req AddDeviceRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c)
	}
	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	device, err := h.userUC.AddDevice(c.Request().Context(), req.Email, req.Token)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "Device added successfully", device)
}

// Logout clears the user's FCM token
func (h *AuthHandler) Logout(c echo.Context) error {
	var req LogoutRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c)
	}
	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	if err := h.userUC.Logout(c.Request().Context(), req.Email); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "User logged out successfully", nil)
}

// DeleteDevice removes a device from the user's devices mapping
func (h *AuthHandler) DeleteDevice(c echo.Context) error {
	var req DeleteDeviceRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c)
	}
	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	if err := h.userUC.DeleteDevice(c.Request().Context(), req.Email, req.DeviceID); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "Device deleted successfully", nil)
}

// Notifications lists the user's notifications, newest first
func (h *AuthHandler) Notifications(c echo.Context) error {
	var req NotificationsRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c)
	}
	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	notifications, err := h.userUC.ListNotifications(c.Request().Context(), req.Email)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "Notif retrieved successfully", notifications)
}
