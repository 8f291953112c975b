package impl

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "sprout/internal/domain/errors"
	"sprout/internal/usecase"
)

type deviceFixture struct {
	store    *fakeDocStore
	realtime *fakeRealtime
	photos   *fakePhotoStorage
	push     *fakePush
	svc      usecase.DeviceUsecase
}

func newDeviceFixture() *deviceFixture {
	store := newFakeDocStore()
	realtime := newFakeRealtime()
	photos := &fakePhotoStorage{}
	push := &fakePush{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &deviceFixture{
		store:    store,
		realtime: realtime,
		photos:   photos,
		push:     push,
		svc:      NewDeviceService(store, realtime, photos, push, fakePairing{}, logger),
	}
}

func (f *deviceFixture) seedDevice(id, name, token string, schedules map[string]any) {
	if schedules == nil {
		schedules = map[string]any{}
	}
	f.store.collection(devicesCollection)[id] = map[string]any{
		"name":      name,
		"token":     token,
		"schedules": schedules,
	}
}

func TestCreateDevice(t *testing.T) {
	f := newDeviceFixture()

	token, err := f.svc.Create(context.Background(), "Balcony")
	require.NoError(t, err)

	assert.Len(t, token, 20)
	for _, r := range token {
		assert.Contains(t, tokenAlphabet, string(r))
	}

	devices := f.store.collection(devicesCollection)
	require.Len(t, devices, 1)
	for id, data := range devices {
		assert.Equal(t, "Balcony", data["name"])
		assert.Equal(t, token, data["token"])
		assert.Equal(t, map[string]any{}, data["schedules"])

		twin, ok := f.realtime.values[id].(map[string]any)
		require.True(t, ok, "realtime twin created under the device id")
		assert.Equal(t, 0, twin["lightIntensity"])
		assert.Equal(t, 0, twin["waterVol"])
		assert.Equal(t, false, twin["watering"])
	}
}

func TestUpdateNameUnknownDevice(t *testing.T) {
	f := newDeviceFixture()

	err := f.svc.UpdateName(context.Background(), "1700000000", "Balcony")
	assert.ErrorIs(t, err, domainerrors.ErrDeviceMissing)
}

func TestDeleteDevice(t *testing.T) {
	f := newDeviceFixture()
	f.seedDevice("1700000000", "Balcony", "tok-abc", nil)
	f.realtime.values["1700000000"] = map[string]any{"watering": false}

	require.NoError(t, f.svc.Delete(context.Background(), "1700000000"))

	assert.Empty(t, f.store.collection(devicesCollection))
	assert.NotContains(t, f.realtime.values, "1700000000")
}

func TestDeleteUnknownDevice(t *testing.T) {
	f := newDeviceFixture()

	err := f.svc.Delete(context.Background(), "1700000000")
	assert.ErrorIs(t, err, domainerrors.ErrDeviceMissing)
}

func TestUpdateLightIntensity(t *testing.T) {
	f := newDeviceFixture()
	f.seedDevice("1700000000", "Balcony", "tok-abc", nil)

	require.NoError(t, f.svc.UpdateLightIntensity(context.Background(), "tok-abc", 73.5))
	assert.Equal(t, 73.5, f.realtime.values["1700000000/lightIntensity"])
}

func TestUpdateWaterVolUnknownToken(t *testing.T) {
	f := newDeviceFixture()

	err := f.svc.UpdateWaterVol(context.Background(), "nope", 10)
	assert.ErrorIs(t, err, domainerrors.ErrDeviceTokenNotFound)
}

func TestListMine(t *testing.T) {
	f := newDeviceFixture()
	f.seedDevice("1700000000", "Balcony", "tok-abc", nil)
	f.seedDevice("1700000001", "Kitchen", "tok-def", nil)
	f.realtime.values["1700000000"] = map[string]any{
		"lightIntensity": 42.0,
		"waterVol":       300.0,
	}
	// Live state for Kitchen exists but is missing both sensor keys.
	f.realtime.values["1700000001"] = map[string]any{"watering": true}

	devices, err := f.svc.ListMine(context.Background(), []string{"1700000000", "ghost", "1700000001"})
	require.NoError(t, err)
	require.Len(t, devices, 2, "unknown ids are skipped")

	assert.Equal(t, 42.0, devices[0]["lightIntensity"])
	assert.Equal(t, 300.0, devices[0]["waterVol"])
	assert.Equal(t, -1, devices[1]["lightIntensity"], "missing sensor values fall back to -1")
	assert.Equal(t, -1, devices[1]["waterVol"])
}

func TestDetail(t *testing.T) {
	f := newDeviceFixture()
	f.seedDevice("1700000000", "Balcony", "tok-abc", map[string]any{
		"07:00": true,
		"19:00": false,
	})
	f.store.collection(photosPath("1700000000"))["p-1"] = map[string]any{"photoUrl": "u1"}
	f.store.collection(photosPath("1700000000"))["p-2"] = map[string]any{"photoUrl": "u2"}

	device, err := f.svc.Detail(context.Background(), "1700000000")
	require.NoError(t, err)

	assert.Equal(t, "Balcony", device["name"])
	assert.Equal(t, 2, device["total_photo"])
	assert.Equal(t, 2, device["total_schedule"])
}

func TestDetailUnknownDevice(t *testing.T) {
	f := newDeviceFixture()

	_, err := f.svc.Detail(context.Background(), "1700000000")
	assert.ErrorIs(t, err, domainerrors.ErrDeviceNotFound)
}

func TestPhotoDetailUnknownPhoto(t *testing.T) {
	f := newDeviceFixture()

	_, err := f.svc.PhotoDetail(context.Background(), "1700000000", "p-1")
	assert.ErrorIs(t, err, domainerrors.ErrPhotoNotFound)
}

func TestAddPhoto(t *testing.T) {
	f := newDeviceFixture()
	f.seedDevice("1700000000", "Balcony", "tok-abc", nil)

	err := f.svc.AddPhoto(context.Background(), "1700000000", strings.NewReader("jpeg"), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, []string{"1700000000"}, f.photos.uploads)
	photos := f.store.collection(photosPath("1700000000"))
	require.Len(t, photos, 1)
	for _, photo := range photos {
		assert.NotEmpty(t, photo["photoUrl"])
		assert.IsType(t, time.Time{}, photo["createdAt"])
	}
}

func TestAddPhotoByToken(t *testing.T) {
	f := newDeviceFixture()
	f.seedDevice("1700000000", "Balcony", "tok-abc", nil)

	err := f.svc.AddPhotoByToken(context.Background(), "tok-abc", strings.NewReader("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Len(t, f.store.collection(photosPath("1700000000")), 1)

	err = f.svc.AddPhotoByToken(context.Background(), "nope", strings.NewReader("jpeg"), "image/jpeg")
	assert.ErrorIs(t, err, domainerrors.ErrDeviceTokenNotFound)
}

func TestListHistories(t *testing.T) {
	f := newDeviceFixture()
	f.store.collection(historiesPath("1700000000"))["h-old"] = map[string]any{
		"createdAt": time.Date(2026, 8, 1, 7, 0, 0, 0, time.UTC),
	}
	f.store.collection(historiesPath("1700000000"))["h-new"] = map[string]any{
		"createdAt": time.Date(2026, 8, 2, 7, 0, 0, 0, time.UTC),
	}

	histories, err := f.svc.ListHistories(context.Background(), "1700000000")
	require.NoError(t, err)
	require.Len(t, histories, 2)
	assert.Equal(t, "h-new", histories[0]["id"], "newest first")
}

func TestAddHistory(t *testing.T) {
	f := newDeviceFixture()
	f.seedDevice("1700000000", "Balcony", "tok-abc", nil)
	f.store.collection(usersCollection)["uid-1"] = map[string]any{
		"email":    "ana@example.com",
		"fcmToken": "fcm-1",
		"devices": map[string]any{
			"1700000000": map[string]any{"token": "tok-abc"},
		},
	}
	f.store.collection(usersCollection)["uid-2"] = map[string]any{
		"email":    "bob@example.com",
		"fcmToken": "",
		"devices": map[string]any{
			"1700000000": map[string]any{"token": "tok-abc"},
		},
	}

	err := f.svc.AddHistory(context.Background(), usecase.HistoryEntry{
		Token:          "tok-abc",
		Schedule:       "07:00",
		IsManually:     "1",
		LightIntensity: 42,
		WaterVol:       300,
	})
	require.NoError(t, err)

	histories := f.store.collection(historiesPath("1700000000"))
	require.Len(t, histories, 1)
	for _, history := range histories {
		assert.Equal(t, true, history["isManually"], `"1" coerces to true`)
		assert.Equal(t, "07:00", history["schedule"])
	}

	assert.Len(t, f.store.collection(notificationsPath("uid-1")), 1)
	assert.Len(t, f.store.collection(notificationsPath("uid-2")), 1)

	require.Len(t, f.push.sent, 1, "owners without an FCM token get no push")
	assert.Equal(t, "fcm-1", f.push.sent[0].token)
	assert.Equal(t, "Watering completed", f.push.sent[0].title)
	assert.Contains(t, f.push.sent[0].body, "Balcony")
	assert.Equal(t, map[string]string{"deviceId": "1700000000"}, f.push.sent[0].data)
}

func TestAddHistoryUnknownToken(t *testing.T) {
	f := newDeviceFixture()

	err := f.svc.AddHistory(context.Background(), usecase.HistoryEntry{Token: "nope"})
	assert.ErrorIs(t, err, domainerrors.ErrDeviceTokenNotFound)
}

func TestAddSchedule(t *testing.T) {
	f := newDeviceFixture()
	f.seedDevice("1700000000", "Balcony", "tok-abc", nil)

	require.NoError(t, f.svc.AddSchedule(context.Background(), "1700000000", "09:00"))

	device := f.store.collection(devicesCollection)["1700000000"]
	schedules := device["schedules"].(map[string]any)
	assert.Equal(t, true, schedules["09:00"])
}

func TestAddScheduleConflict(t *testing.T) {
	f := newDeviceFixture()
	f.seedDevice("1700000000", "Balcony", "tok-abc", map[string]any{"08:00": true})

	err := f.svc.AddSchedule(context.Background(), "1700000000", "08:30")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot add schedule. There is already a schedule within 60 minutes of 08:00")
}

func TestAddScheduleNoMidnightWraparound(t *testing.T) {
	f := newDeviceFixture()
	f.seedDevice("1700000000", "Balcony", "tok-abc", map[string]any{"23:50": true})

	// 20 minutes apart on the clock, 1420 apart by minutes-of-day arithmetic.
	assert.NoError(t, f.svc.AddSchedule(context.Background(), "1700000000", "00:10"))
}

func TestAddScheduleUnknownDevice(t *testing.T) {
	f := newDeviceFixture()

	err := f.svc.AddSchedule(context.Background(), "1700000000", "09:00")
	assert.ErrorIs(t, err, domainerrors.ErrDeviceNotFound)
}

func TestUpdateSchedule(t *testing.T) {
	f := newDeviceFixture()
	f.seedDevice("1700000000", "Balcony", "tok-abc", map[string]any{
		"08:00": true,
		"08:30": true,
	})

	// Toggling skips the conflict check entirely.
	require.NoError(t, f.svc.UpdateSchedule(context.Background(), "1700000000", "08:30", "0"))

	schedules := f.store.collection(devicesCollection)["1700000000"]["schedules"].(map[string]any)
	assert.Equal(t, false, schedules["08:30"])
	assert.Equal(t, true, schedules["08:00"])
}

func TestDeleteSchedule(t *testing.T) {
	f := newDeviceFixture()
	f.seedDevice("1700000000", "Balcony", "tok-abc", map[string]any{"08:00": true})

	require.NoError(t, f.svc.DeleteSchedule(context.Background(), "1700000000", "08:00"))

	schedules := f.store.collection(devicesCollection)["1700000000"]["schedules"].(map[string]any)
	assert.NotContains(t, schedules, "08:00", "the field is removed, not set to false")
}

func TestPairingQR(t *testing.T) {
	f := newDeviceFixture()
	f.seedDevice("1700000000", "Balcony", "tok-abc", nil)

	png, err := f.svc.PairingQR(context.Background(), "1700000000")
	require.NoError(t, err)
	assert.Equal(t, []byte("qr:tok-abc"), png)
}

func TestPairingQRUnknownDevice(t *testing.T) {
	f := newDeviceFixture()

	_, err := f.svc.PairingQR(context.Background(), "1700000000")
	assert.ErrorIs(t, err, domainerrors.ErrDeviceNotFound)
}

func TestMinutesOfDay(t *testing.T) {
	total, err := minutesOfDay("08:30")
	require.NoError(t, err)
	assert.Equal(t, 510, total)

	_, err = minutesOfDay("0830")
	assert.Error(t, err)

	_, err = minutesOfDay("aa:bb")
	assert.Error(t, err)
}
