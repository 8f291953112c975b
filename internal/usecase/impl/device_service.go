package impl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	domainerrors "sprout/internal/domain/errors"
	"sprout/internal/domain/repository"
	"sprout/internal/domain/service"
	"sprout/internal/usecase"
)

const devicesCollection = "devices"

const (
	tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	tokenLength   = 20
)

func photosPath(deviceID string) string {
	return devicesCollection + "/" + deviceID + "/photos"
}

func historiesPath(deviceID string) string {
	return devicesCollection + "/" + deviceID + "/histories"
}

type deviceService struct {
	store    repository.DocumentStore
	realtime repository.RealtimeStore
	photos   service.PhotoStorage
	push     service.PushSender
	pairing  service.PairingCodeService
	logger   *slog.Logger
}

// NewDeviceService creates the device management service.
func NewDeviceService(
	store repository.DocumentStore,
	realtime repository.RealtimeStore,
	photos service.PhotoStorage,
	push service.PushSender,
	pairing service.PairingCodeService,
	logger *slog.Logger,
) usecase.DeviceUsecase {
	return &deviceService{
		store:    store,
		realtime: realtime,
		photos:   photos,
		push:     push,
		pairing:  pairing,
		logger:   logger,
	}
}

func (s *deviceService) Create(ctx context.Context, name string) (string, error) {
	// Unix seconds as id: two devices created within the same second collide.
	// Known weakness, kept for compatibility with existing device ids.
	deviceID := strconv.FormatInt(time.Now().Unix(), 10)
	token := newDeviceToken()

	if err := s.store.Set(ctx, devicesCollection, deviceID, map[string]any{
		"name":      name,
		"token":     token,
		"schedules": map[string]any{},
		"createdAt": repository.ServerTimestamp,
		"updatedAt": repository.ServerTimestamp,
	}); err != nil {
		return "", errors.Wrap(err, "create device")
	}

	if err := s.realtime.Set(ctx, deviceID, map[string]any{
		"lightIntensity": 0,
		"waterVol":       0,
		"watering":       false,
	}); err != nil {
		// The document is not rolled back on twin failure.
		return "", errors.Wrap(err, "create realtime twin")
	}

	// The token, not the id, is the firmware's handle.
	return token, nil
}

func (s *deviceService) UpdateName(ctx context.Context, deviceID, name string) error {
	if _, err := s.store.GetByID(ctx, devicesCollection, deviceID); err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return domainerrors.ErrDeviceMissing
		}

		return errors.Wrap(err, "get device")
	}

	if err := s.store.Update(ctx, devicesCollection, deviceID, map[string]any{
		"name":      name,
		"updatedAt": repository.ServerTimestamp,
	}); err != nil {
		return errors.Wrap(err, "update device name")
	}

	return nil
}

func (s *deviceService) Delete(ctx context.Context, deviceID string) error {
	if _, err := s.store.GetByID(ctx, devicesCollection, deviceID); err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return domainerrors.ErrDeviceMissing
		}

		return errors.Wrap(err, "get device")
	}

	if err := s.store.Delete(ctx, devicesCollection, deviceID); err != nil {
		return errors.Wrap(err, "delete device")
	}

	// Photos and histories subcollections stay behind.
	if err := s.realtime.Delete(ctx, deviceID); err != nil {
		return errors.Wrap(err, "delete realtime twin")
	}

	return nil
}

func (s *deviceService) UpdateLightIntensity(ctx context.Context, token string, value float64) error {
	device, err := s.findByToken(ctx, token)
	if err != nil {
		return err
	}

	if err := s.realtime.Set(ctx, device.ID+"/lightIntensity", value); err != nil {
		return errors.Wrap(err, "write light intensity")
	}

	return nil
}

func (s *deviceService) UpdateWaterVol(ctx context.Context, token string, value float64) error {
	device, err := s.findByToken(ctx, token)
	if err != nil {
		return err
	}

	if err := s.realtime.Set(ctx, device.ID+"/waterVol", value); err != nil {
		return errors.Wrap(err, "write water volume")
	}

	return nil
}

func (s *deviceService) ListMine(ctx context.Context, ids []string) ([]map[string]any, error) {
	devices := make([]map[string]any, 0, len(ids))
	for _, deviceID := range ids {
		doc, err := s.store.GetByID(ctx, devicesCollection, deviceID)
		if errors.Is(err, repository.ErrDocumentNotFound) {
			// Unknown ids are omitted, not reported.
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "get device")
		}

		deviceData := doc.Data
		live, err := s.realtime.Get(ctx, deviceID)
		if err != nil {
			return nil, errors.Wrap(err, "read realtime state")
		}
		if liveMap, ok := live.(map[string]any); ok {
			deviceData["lightIntensity"] = valueOr(liveMap, "lightIntensity", -1)
			deviceData["waterVol"] = valueOr(liveMap, "waterVol", -1)
		}

		devices = append(devices, deviceData)
	}

	return devices, nil
}

func (s *deviceService) Detail(ctx context.Context, deviceID string) (map[string]any, error) {
	doc, err := s.store.GetByID(ctx, devicesCollection, deviceID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, domainerrors.ErrDeviceNotFound
		}

		return nil, errors.Wrap(err, "get device")
	}

	totalPhoto, err := s.store.Count(ctx, photosPath(deviceID))
	if err != nil {
		return nil, errors.Wrap(err, "count photos")
	}

	deviceData := doc.Data
	deviceData["total_photo"] = totalPhoto
	deviceData["total_schedule"] = len(schedulesMapOf(doc.Data))

	return deviceData, nil
}

func (s *deviceService) PhotoDetail(ctx context.Context, deviceID, photoID string) (map[string]any, error) {
	doc, err := s.store.GetByID(ctx, photosPath(deviceID), photoID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, domainerrors.ErrPhotoNotFound
		}

		return nil, errors.Wrap(err, "get photo")
	}

	return doc.Data, nil
}

func (s *deviceService) ListPhotos(ctx context.Context, deviceID string) ([]map[string]any, error) {
	return s.listOrdered(ctx, photosPath(deviceID))
}

func (s *deviceService) AddPhoto(ctx context.Context, deviceID string, photo io.Reader, contentType string) error {
	photoURL, err := s.photos.Upload(ctx, deviceID, photo, contentType)
	if err != nil {
		return errors.Wrap(err, "upload photo")
	}

	if _, err := s.store.Add(ctx, photosPath(deviceID), map[string]any{
		"photoUrl":  photoURL,
		"createdAt": repository.ServerTimestamp,
		"updatedAt": repository.ServerTimestamp,
	}); err != nil {
		return errors.Wrap(err, "save photo")
	}

	return nil
}

func (s *deviceService) AddPhotoByToken(ctx context.Context, token string, photo io.Reader, contentType string) error {
	device, err := s.findByToken(ctx, token)
	if err != nil {
		return err
	}

	return s.AddPhoto(ctx, device.ID, photo, contentType)
}

func (s *deviceService) ListHistories(ctx context.Context, deviceID string) ([]map[string]any, error) {
	return s.listOrdered(ctx, historiesPath(deviceID))
}

func (s *deviceService) AddHistory(ctx context.Context, entry usecase.HistoryEntry) error {
	device, err := s.findByToken(ctx, entry.Token)
	if err != nil {
		return err
	}

	if _, err := s.store.Add(ctx, historiesPath(device.ID), map[string]any{
		"schedule":       entry.Schedule,
		"isManually":     entry.IsManually == "1",
		"lightIntensity": entry.LightIntensity,
		"waterVol":       entry.WaterVol,
		"createdAt":      repository.ServerTimestamp,
	}); err != nil {
		return errors.Wrap(err, "save history")
	}

	s.notifyOwners(ctx, device, entry)

	return nil
}

// notifyOwners fans a watering event out to the users holding the device.
// Best-effort: a failed notification never fails the device's report.
func (s *deviceService) notifyOwners(ctx context.Context, device *repository.Document, entry usecase.HistoryEntry) {
	owners, err := s.store.QueryEqual(ctx, usersCollection, "devices."+device.ID+".token", entry.Token, 0)
	if err != nil {
		s.logger.Warn("find device owners failed", slog.String("deviceId", device.ID), slog.Any("error", err))

		return
	}

	deviceName, _ := device.Data["name"].(string)
	title := "Watering completed"
	body := fmt.Sprintf("%s finished watering (%.0f ml)", deviceName, entry.WaterVol)
	if entry.IsManually == "1" {
		body = fmt.Sprintf("%s was watered manually (%.0f ml)", deviceName, entry.WaterVol)
	}

	for _, owner := range owners {
		if _, err := s.store.Add(ctx, notificationsPath(owner.ID), map[string]any{
			"title":    title,
			"body":     body,
			"deviceId": device.ID,
			"sendAt":   repository.ServerTimestamp,
		}); err != nil {
			s.logger.Warn("append notification failed", slog.String("userId", owner.ID), slog.Any("error", err))
		}

		fcmToken, _ := owner.Data["fcmToken"].(string)
		if fcmToken == "" {
			continue
		}
		if err := s.push.Send(ctx, fcmToken, title, body, map[string]string{"deviceId": device.ID}); err != nil {
			s.logger.Warn("push notification failed", slog.String("userId", owner.ID), slog.Any("error", err))
		}
	}
}

func (s *deviceService) AddSchedule(ctx context.Context, deviceID, hour string) error {
	doc, err := s.store.GetByID(ctx, devicesCollection, deviceID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return domainerrors.ErrDeviceNotFound
		}

		return errors.Wrap(err, "get device")
	}

	newTotal, err := minutesOfDay(hour)
	if err != nil {
		return err
	}

	for existingHour := range schedulesMapOf(doc.Data) {
		existingTotal, err := minutesOfDay(existingHour)
		if err != nil {
			return err
		}

		// Plain minutes-of-day distance with no midnight wraparound: 23:50
		// and 00:10 are 1420 minutes apart by this arithmetic and pass.
		diff := newTotal - existingTotal
		if diff < 0 {
			diff = -diff
		}
		if diff < 60 {
			return domainerrors.NewScheduleConflictError(existingHour)
		}
	}

	return s.store.UpdateFields(ctx, devicesCollection, deviceID, []repository.FieldUpdate{
		{Path: []string{"schedules", hour}, Value: true},
		{Path: []string{"updatedAt"}, Value: repository.ServerTimestamp},
	})
}

func (s *deviceService) UpdateSchedule(ctx context.Context, deviceID, hour, status string) error {
	// Unlike AddSchedule there is no existence check and no conflict
	// re-check; a missing device surfaces as a store error.
	return s.store.UpdateFields(ctx, devicesCollection, deviceID, []repository.FieldUpdate{
		{Path: []string{"schedules", hour}, Value: status == "1"},
		{Path: []string{"updatedAt"}, Value: repository.ServerTimestamp},
	})
}

func (s *deviceService) DeleteSchedule(ctx context.Context, deviceID, hour string) error {
	// Removes the field itself, not merely setting it to false.
	return s.store.UpdateFields(ctx, devicesCollection, deviceID, []repository.FieldUpdate{
		{Path: []string{"schedules", hour}, Value: repository.DeleteField},
		{Path: []string{"updatedAt"}, Value: repository.ServerTimestamp},
	})
}

func (s *deviceService) PairingQR(ctx context.Context, deviceID string) ([]byte, error) {
	doc, err := s.store.GetByID(ctx, devicesCollection, deviceID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, domainerrors.ErrDeviceNotFound
		}

		return nil, errors.Wrap(err, "get device")
	}

	token, _ := doc.Data["token"].(string)

	return s.pairing.GeneratePairingQR(token)
}

func (s *deviceService) findByToken(ctx context.Context, token string) (*repository.Document, error) {
	docs, err := s.store.QueryEqual(ctx, devicesCollection, "token", token, 1)
	if err != nil {
		return nil, errors.Wrap(err, "find device by token")
	}
	if len(docs) == 0 {
		return nil, domainerrors.ErrDeviceTokenNotFound
	}

	return docs[0], nil
}

func (s *deviceService) listOrdered(ctx context.Context, collection string) ([]map[string]any, error) {
	docs, err := s.store.QueryOrdered(ctx, collection, "createdAt", true)
	if err != nil {
		return nil, errors.Wrap(err, "list "+collection)
	}

	items := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		item := doc.Data
		item["id"] = doc.ID
		items = append(items, item)
	}

	return items, nil
}

func newDeviceToken() string {
	token := make([]byte, tokenLength)
	for i := range token {
		token[i] = tokenAlphabet[rand.IntN(len(tokenAlphabet))]
	}

	return string(token)
}

// minutesOfDay parses "HH:MM" into minutes since midnight. A malformed hour
// is a caller bug and follows the generic error path.
func minutesOfDay(hour string) (int, error) {
	parts := strings.Split(hour, ":")
	if len(parts) < 2 {
		return 0, errors.Errorf("malformed hour %q", hour)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, errors.Wrapf(err, "malformed hour %q", hour)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, errors.Wrapf(err, "malformed hour %q", hour)
	}

	return h*60 + m, nil
}

func schedulesMapOf(deviceData map[string]any) map[string]any {
	schedules, ok := deviceData["schedules"].(map[string]any)
	if !ok {
		return map[string]any{}
	}

	return schedules
}

func valueOr(m map[string]any, key string, fallback any) any {
	if value, ok := m[key]; ok {
		return value
	}

	return fallback
}
