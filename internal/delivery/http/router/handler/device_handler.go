package handler

import (
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"sprout/internal/delivery/http/response"
	"sprout/internal/usecase"
)

// DeviceHandlerParams holds dependencies for DeviceHandler, injected by Fx.
type DeviceHandlerParams struct {
	fx.In

	DeviceUC usecase.DeviceUsecase
	Logger   *slog.Logger
}

// DeviceHandler serves the device management endpoints.
type DeviceHandler struct {
	deviceUC usecase.DeviceUsecase
	logger   *slog.Logger
}

// NewDeviceHandler is the constructor for DeviceHandler
func NewDeviceHandler(params DeviceHandlerParams) *DeviceHandler {
	return &DeviceHandler{
		deviceUC: params.DeviceUC,
		logger:   params.Logger,
	}
}

// CreateDeviceRequest represents the request body for creating a device
type CreateDeviceRequest struct {
	Name string `json:"name" label:"Device name" validate:"required"`
}

// UpdateDeviceRequest represents the request body for renaming a device.
// Only the name is validated; a missing device_id surfaces from the store.
type UpdateDeviceRequest struct {
	DeviceID string `json:"device_id"`
	Name     string `json:"name" label:"Device name" validate:"required"`
}

// SensorValueRequest carries a live sensor value keyed by device token.
// Values are pointers so a literal 0 still counts as provided.
type SensorValueRequest struct {
	Token          string   `json:"token" label:"Token" validate:"required"`
	LightIntensity *float64 `json:"lightIntensity,omitempty" label:"lightIntensity"`
	WaterVol       *float64 `json:"waterVol,omitempty" label:"waterVol"`
}

// MyDevicesRequest represents the query for listing the caller's devices
type MyDevicesRequest struct {
	IDs []string `json:"ids" query:"ids"`
}

// AddHistoryRequest represents a watering event reported by a device
type AddHistoryRequest struct {
	Token          string   `json:"token" label:"Token" validate:"required"`
	Schedule       *string  `json:"schedule" label:"Schedule" validate:"required"`
	IsManually     *string  `json:"isManually" label:"isManually" validate:"required"`
	LightIntensity *float64 `json:"lightIntensity" label:"Light intensity" validate:"required"`
	WaterVol       *float64 `json:"waterVol" label:"Water volume" validate:"required"`
}

// AddScheduleRequest represents the request body for adding a schedule
type AddScheduleRequest struct {
	DeviceID string `json:"device_id" label:"Device ID" validate:"required"`
	Hour     string `json:"hour" label:"Hour" validate:"required"`
}

// UpdateScheduleRequest represents the request body for toggling a schedule
type UpdateScheduleRequest struct {
	DeviceID string `json:"device_id" label:"Device ID" validate:"required"`
	Hour     string `json:"hour" label:"Hour" validate:"required"`
	Status   string `json:"status" label:"Status" validate:"required"`
}

// CreateDevice registers a device and returns its pairing token
func (h *DeviceHandler) CreateDevice(c echo.Context) error {
	var req CreateDeviceRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c)
	}
	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	token, err := h.deviceUC.Create(c.Request().Context(), req.Name)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "Device created successfully", token)
}

// UpdateDevice renames a device
func (h *DeviceHandler) UpdateDevice(c echo.Context) error {
	var req UpdateDeviceRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c)
	}
	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	if err := h.deviceUC.UpdateName(c.Request().Context(), req.DeviceID, req.Name); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "Device name updated successfully", nil)
}

// DeleteDevice removes a device and its realtime twin
func (h *DeviceHandler) DeleteDevice(c echo.Context) error {
	if err := h.deviceUC.Delete(c.Request().Context(), c.Param("device_id")); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "Device deleted successfully", nil)
}

// UpdateLightIntensity writes the live light reading reported by a device
func (h *DeviceHandler) UpdateLightIntensity(c echo.Context) error {
	var req SensorValueRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c)
	}
	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}
	if req.LightIntensity == nil {
		return response.BadRequest(c, "lightIntensity parameter is required")
	}

	if err := h.deviceUC.UpdateLightIntensity(c.Request().Context(), req.Token, *req.LightIntensity); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "lightIntensity updated successfully", *req.LightIntensity)
}

// UpdateWaterVol writes the live water volume reported by a device
func (h *DeviceHandler) UpdateWaterVol(c echo.Context) error {
	var req SensorValueRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c)
	}
	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}
	if req.WaterVol == nil {
		return response.BadRequest(c, "waterVol parameter is required")
	}

	if err := h.deviceUC.UpdateWaterVol(c.Request().Context(), req.Token, *req.WaterVol); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "waterVol updated successfully", *req.WaterVol)
}

// MyDevices fetches the caller's devices with live sensor state merged in
func (h *DeviceHandler) MyDevices(c echo.Context) error {
	var req MyDevicesRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c)
	}
	if len(req.IDs) == 0 {
		return response.BadRequest(c, "IDs must be a non-empty list")
	}

	devices, err := h.deviceUC.ListMine(c.Request().Context(), req.IDs)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "Devices retrieved successfully", devices)
}

// Detail returns a device with photo and schedule totals
func (h *DeviceHandler) Detail(c echo.Context) error {
	device, err := h.deviceUC.Detail(c.Request().Context(), c.Param("device_id"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "Device details retrieved successfully", device)
}

// PhotoDetail returns one photo of a device
func (h *DeviceHandler) PhotoDetail(c echo.Context) error {
	photo, err := h.deviceUC.PhotoDetail(c.Request().Context(), c.Param("device_id"), c.Param("photo_id"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "Photo details retrieved successfully", photo)
}

// Photos lists a device's photos, newest first
func (h *DeviceHandler) Photos(c echo.Context) error {
	photos, err := h.deviceUC.ListPhotos(c.Request().Context(), c.Param("device_id"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "Photos retrieved successfully", photos)
}

// AddPhoto uploads a photo for a device addressed by id
func (h *DeviceHandler) AddPhoto(c echo.Context) error {
	deviceID := c.FormValue("device_id")
	if deviceID == "" {
		return response.BadRequest(c, "Device ID parameter is required")
	}

	photo, contentType, err := openPhoto(c)
	if err != nil {
		return response.BadRequest(c, "Photo file is required")
	}
	defer photo.Close()

	if err := h.deviceUC.AddPhoto(c.Request().Context(), deviceID, photo, contentType); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "Photo uploaded and saved successfully", nil)
}

// AddPhotoByToken uploads a photo for a device addressed by its token
func (h *DeviceHandler) AddPhotoByToken(c echo.Context) error {
	token := c.FormValue("token")
	if token == "" {
		return response.BadRequest(c, "Token parameter is required")
	}

	photo, contentType, err := openPhoto(c)
	if err != nil {
		return response.BadRequest(c, "Photo file is required")
	}
	defer photo.Close()

	if err := h.deviceUC.AddPhotoByToken(c.Request().Context(), token, photo, contentType); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "Photo uploaded and saved successfully", nil)
}

// Histories lists a device's watering histories, newest first
func (h *DeviceHandler) Histories(c echo.Context) error {
	histories, err := h.deviceUC.ListHistories(c.Request().Context(), c.Param("device_id"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "Histories retrieved successfully", histories)
}

// AddHistory records a watering event reported by a device
func (h *DeviceHandler) AddHistory(c echo.Context) error {
	var req AddHistoryRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c)
	}
	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	entry := usecase.HistoryEntry{
		Token:          req.Token,
		Schedule:       *req.Schedule,
		IsManually:     *req.IsManually,
		LightIntensity: *req.LightIntensity,
		WaterVol:       *req.WaterVol,
	}
	if err := h.deviceUC.AddHistory(c.Request().Context(), entry); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "History added successfully", nil)
}

// AddSchedule adds a watering schedule unless it conflicts
func (h *DeviceHandler) AddSchedule(c echo.Context) error {
	var req AddScheduleRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c)
	}
	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	if err := h.deviceUC.AddSchedule(c.Request().Context(), req.DeviceID, req.Hour); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "Schedule added successfully", nil)
}

// UpdateSchedule toggles a schedule entry
func (h *DeviceHandler) UpdateSchedule(c echo.Context) error {
	var req UpdateScheduleRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c)
	}
	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	if err := h.deviceUC.UpdateSchedule(c.Request().Context(), req.DeviceID, req.Hour, req.Status); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "Schedule updated successfully", nil)
}

// DeleteSchedule removes a schedule entry entirely
func (h *DeviceHandler) DeleteSchedule(c echo.Context) error {
	var req AddScheduleRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c)
	}
	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	if err := h.deviceUC.DeleteSchedule(c.Request().Context(), req.DeviceID, req.Hour); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, "Schedule deleted successfully", nil)
}

// PairingQR renders the device's pairing token as a QR code
func (h *DeviceHandler) PairingQR(c echo.Context) error {
	png, err := h.deviceUC.PairingQR(c.Request().Context(), c.Param("device_id"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// openPhoto pulls the uploaded photo out of the multipart form.
func openPhoto(c echo.Context) (multipart.File, string, error) {
	header, err := c.FormFile("photo")
	if err != nil {
		return nil, "", err
	}

	file, err := header.Open()
	if err != nil {
		return nil, "", err
	}

	return file, header.Header.Get("Content-Type"), nil
}
