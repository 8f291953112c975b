package usecase

import (
	"context"
	"io"
)

// HistoryEntry carries one watering event reported by a device. IsManually
// keeps the device firmware's string encoding: the literal "1" means true,
// anything else false.
type HistoryEntry struct {
	Token          string
	Schedule       string
	IsManually     string
	LightIntensity float64
	WaterVol       float64
}

// DeviceUsecase defines the device management use cases. Devices are
// addressed by id from the app and by secret token from the firmware.
type DeviceUsecase interface {
	// Create registers a device and its realtime twin, returning the pairing
	// token (not the id).
	Create(ctx context.Context, name string) (string, error)

	// UpdateName renames a device.
	UpdateName(ctx context.Context, deviceID, name string) error

	// Delete removes the device document and its realtime twin. Photo and
	// history subcollections stay behind.
	Delete(ctx context.Context, deviceID string) error

	// UpdateLightIntensity writes the live light reading for the device
	// matching token.
	UpdateLightIntensity(ctx context.Context, token string, value float64) error

	// UpdateWaterVol writes the live water volume for the device matching
	// token.
	UpdateWaterVol(ctx context.Context, token string, value float64) error

	// ListMine fetches the given devices, silently skipping unknown ids, and
	// merges in live realtime state.
	ListMine(ctx context.Context, ids []string) ([]map[string]any, error)

	// Detail returns the device document plus photo and schedule totals.
	Detail(ctx context.Context, deviceID string) (map[string]any, error)

	// PhotoDetail returns one photo of a device.
	PhotoDetail(ctx context.Context, deviceID, photoID string) (map[string]any, error)

	// ListPhotos returns a device's photos, newest first.
	ListPhotos(ctx context.Context, deviceID string) ([]map[string]any, error)

	// AddPhoto uploads a photo and appends it to the device's photos.
	AddPhoto(ctx context.Context, deviceID string, photo io.Reader, contentType string) error

	// AddPhotoByToken is AddPhoto with the device resolved from its token.
	AddPhotoByToken(ctx context.Context, token string, photo io.Reader, contentType string) error

	// ListHistories returns a device's watering histories, newest first.
	ListHistories(ctx context.Context, deviceID string) ([]map[string]any, error)

	// AddHistory appends a watering event and notifies the owning users.
	AddHistory(ctx context.Context, entry HistoryEntry) error

	// AddSchedule adds a watering schedule at hour ("HH:MM") unless another
	// schedule lies within 60 minutes of it.
	AddSchedule(ctx context.Context, deviceID, hour string) error

	// UpdateSchedule sets the enabled flag of a schedule entry; status "1"
	// enables it, anything else disables it. No conflict re-check.
	UpdateSchedule(ctx context.Context, deviceID, hour, status string) error

	// DeleteSchedule removes the schedule entry for hour entirely.
	DeleteSchedule(ctx context.Context, deviceID, hour string) error

	// PairingQR renders the device's pairing token as a PNG QR code.
	PairingQR(ctx context.Context, deviceID string) ([]byte, error)
}
