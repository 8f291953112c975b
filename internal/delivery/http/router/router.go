// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"sprout/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler   *handler.AuthHandler
	DeviceHandler *handler.DeviceHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler   *handler.AuthHandler
	deviceHandler *handler.DeviceHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:   params.AuthHandler,
		deviceHandler: params.DeviceHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Account routes, kept at the root for mobile-client compatibility
	e.POST("/auth", r.authHandler.Auth)
	e.POST("/add_device", r.authHandler.AddDevice)
	e.POST("/logout", r.authHandler.Logout)
	e.POST("/del_device", r.authHandler.DeleteDevice)
	e.GET("/notifications", r.authHandler.Notifications)

	// Device routes
	deviceGroup := e.Group("/device")
	{
		deviceGroup.POST("/create_device", r.deviceHandler.CreateDevice)
		deviceGroup.POST("/update_device/", r.deviceHandler.UpdateDevice)
		deviceGroup.DELETE("/delete_device/:device_id", r.deviceHandler.DeleteDevice)
		deviceGroup.POST("/update_light_intensity", r.deviceHandler.UpdateLightIntensity)
		deviceGroup.POST("/update_water_vol", r.deviceHandler.UpdateWaterVol)
		deviceGroup.GET("/my", r.deviceHandler.MyDevices)
		deviceGroup.POST("/add_photo", r.deviceHandler.AddPhoto)
		deviceGroup.POST("/add_photo_by_token", r.deviceHandler.AddPhotoByToken)
		deviceGroup.POST("/add_history", r.deviceHandler.AddHistory)
		deviceGroup.POST("/add_schedule", r.deviceHandler.AddSchedule)
		deviceGroup.POST("/update_schedule", r.deviceHandler.UpdateSchedule)
		deviceGroup.POST("/delete_schedule", r.deviceHandler.DeleteSchedule)
		deviceGroup.GET("/:device_id", r.deviceHandler.Detail)
		deviceGroup.GET("/:device_id/qrcode", r.deviceHandler.PairingQR)
		deviceGroup.GET("/:device_id/photos", r.deviceHandler.Photos)
		deviceGroup.GET("/:device_id/photos/:photo_id", r.deviceHandler.PhotoDetail)
		deviceGroup.GET("/:device_id/histories", r.deviceHandler.Histories)
	}
}
