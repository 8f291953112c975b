package usecase

import "context"

// UserUsecase defines the account and device-association use cases.
type UserUsecase interface {
	// Authenticate upserts the account for email. A known email gets its FCM
	// token refreshed; a new email is created at id=uid, which must be
	// unclaimed. Returns the stored user record.
	Authenticate(ctx context.Context, email, uid, fullname, fcmToken string) (map[string]any, error)

	// AddDevice associates the device matching the pairing token with the
	// user's devices mapping. Returns the response projection keyed by
	// device id.
	AddDevice(ctx context.Context, email, token string) (map[string]any, error)

	// Logout clears the user's FCM token.
	Logout(ctx context.Context, email string) error

	// DeleteDevice removes deviceID from the user's devices mapping.
	DeleteDevice(ctx context.Context, email, deviceID string) error

	// ListNotifications returns the user's notifications, newest first.
	ListNotifications(ctx context.Context, email string) ([]map[string]any, error)
}
