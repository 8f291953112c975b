package impl

import (
	"context"
	"time"

	"github.com/pkg/errors"

	domainerrors "sprout/internal/domain/errors"
	"sprout/internal/domain/repository"
	"sprout/internal/usecase"
)

const usersCollection = "users"

func notificationsPath(userID string) string {
	return usersCollection + "/" + userID + "/notifications"
}

type userService struct {
	store repository.DocumentStore
}

// NewUserService creates the account and device-association service.
func NewUserService(store repository.DocumentStore) usecase.UserUsecase {
	return &userService{store: store}
}

func (s *userService) Authenticate(ctx context.Context, email, uid, fullname, fcmToken string) (map[string]any, error) {
	users, err := s.store.QueryEqual(ctx, usersCollection, "email", email, 1)
	if err != nil {
		return nil, errors.Wrap(err, "find user by email")
	}

	if len(users) > 0 {
		userDoc := users[0]
		if err := s.store.Update(ctx, usersCollection, userDoc.ID, map[string]any{
			"fcmToken":  fcmToken,
			"updatedAt": repository.ServerTimestamp,
		}); err != nil {
			return nil, errors.Wrap(err, "refresh fcm token")
		}

		// The merge above lands eventually; answer with the fresh token now.
		userData := userDoc.Data
		userData["fcmToken"] = fcmToken

		return userData, nil
	}

	// Fresh email. The uid becomes the document id, so it must be unclaimed.
	if _, err := s.store.GetByID(ctx, usersCollection, uid); err == nil {
		return nil, domainerrors.ErrUIDExists
	} else if !errors.Is(err, repository.ErrDocumentNotFound) {
		return nil, errors.Wrap(err, "check uid")
	}

	if err := s.store.Set(ctx, usersCollection, uid, map[string]any{
		"email":     email,
		"uid":       uid,
		"fullname":  fullname,
		"fcmToken":  fcmToken,
		"devices":   map[string]any{},
		"createdAt": repository.ServerTimestamp,
	}); err != nil {
		return nil, errors.Wrap(err, "create user")
	}

	// Re-read by email so the caller gets the canonical stored record.
	users, err = s.store.QueryEqual(ctx, usersCollection, "email", email, 1)
	if err != nil {
		return nil, errors.Wrap(err, "re-read user by email")
	}
	if len(users) == 0 {
		return nil, domainerrors.ErrAuthInconsistent
	}

	return users[0].Data, nil
}

func (s *userService) AddDevice(ctx context.Context, email, token string) (map[string]any, error) {
	devices, err := s.store.QueryEqual(ctx, devicesCollection, "token", token, 1)
	if err != nil {
		return nil, errors.Wrap(err, "find device by token")
	}
	if len(devices) == 0 {
		return nil, domainerrors.ErrDeviceNotRegistered
	}
	deviceDoc := devices[0]
	deviceName, _ := deviceDoc.Data["name"].(string)

	users, err := s.store.QueryEqual(ctx, usersCollection, "email", email, 1)
	if err != nil {
		return nil, errors.Wrap(err, "find user by email")
	}
	if len(users) == 0 {
		return nil, domainerrors.ErrUserNotFound
	}
	userDoc := users[0]

	userDevices := devicesMapOf(userDoc.Data)
	if _, exists := userDevices[deviceDoc.ID]; exists {
		return nil, domainerrors.ErrDeviceAlreadyAdded
	}

	userDevices[deviceDoc.ID] = map[string]any{
		"name":      deviceName,
		"token":     token,
		"createdAt": repository.ServerTimestamp,
	}
	if err := s.store.Update(ctx, usersCollection, userDoc.ID, map[string]any{
		"devices": userDevices,
	}); err != nil {
		return nil, errors.Wrap(err, "persist devices mapping")
	}

	// Response projection only: the persisted record carries the server
	// timestamp, the payload a locally formatted one.
	return map[string]any{
		deviceDoc.ID: map[string]any{
			"name":      deviceName,
			"createdAt": time.Now().Format("2006-01-02 15:04:05"),
		},
	}, nil
}

func (s *userService) Logout(ctx context.Context, email string) error {
	users, err := s.store.QueryEqual(ctx, usersCollection, "email", email, 1)
	if err != nil {
		return errors.Wrap(err, "find user by email")
	}
	if len(users) == 0 {
		return domainerrors.ErrUserMissing
	}

	if err := s.store.Update(ctx, usersCollection, users[0].ID, map[string]any{
		"fcmToken":  "",
		"updatedAt": repository.ServerTimestamp,
	}); err != nil {
		return errors.Wrap(err, "clear fcm token")
	}

	return nil
}

func (s *userService) DeleteDevice(ctx context.Context, email, deviceID string) error {
	users, err := s.store.QueryEqual(ctx, usersCollection, "email", email, 1)
	if err != nil {
		return errors.Wrap(err, "find user by email")
	}
	if len(users) == 0 {
		return domainerrors.ErrUserNotFound
	}
	userDoc := users[0]

	userDevices := devicesMapOf(userDoc.Data)
	if _, exists := userDevices[deviceID]; !exists {
		// No existence check before removal: a missing key surfaces on the
		// generic 500 path, not as a not-found response.
		return errors.Errorf("device %s not present in devices mapping", deviceID)
	}
	delete(userDevices, deviceID)

	if err := s.store.Update(ctx, usersCollection, userDoc.ID, map[string]any{
		"devices": userDevices,
	}); err != nil {
		return errors.Wrap(err, "persist devices mapping")
	}

	return nil
}

func (s *userService) ListNotifications(ctx context.Context, email string) ([]map[string]any, error) {
	users, err := s.store.QueryEqual(ctx, usersCollection, "email", email, 0)
	if err != nil {
		return nil, errors.Wrap(err, "find users by email")
	}
	if len(users) == 0 {
		return nil, domainerrors.ErrNoUserWithEmail
	}

	notifications := make([]map[string]any, 0)
	for _, userDoc := range users {
		docs, err := s.store.QueryOrdered(ctx, notificationsPath(userDoc.ID), "sendAt", true)
		if err != nil {
			return nil, errors.Wrap(err, "list notifications")
		}
		for _, doc := range docs {
			notification := doc.Data
			notification["id"] = doc.ID
			notifications = append(notifications, notification)
		}
	}

	return notifications, nil
}

func devicesMapOf(userData map[string]any) map[string]any {
	devices, ok := userData["devices"].(map[string]any)
	if !ok {
		return map[string]any{}
	}

	return devices
}
