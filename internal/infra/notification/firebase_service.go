package notification

import (
	"context"
	"fmt"

	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"

	"sprout/internal/domain/service"
)

type firebaseService struct {
	client *messaging.Client
}

// NewPushSender creates a Firebase Cloud Messaging push sender.
func NewPushSender(ctx context.Context, app *fb.App) (service.PushSender, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &firebaseService{client: client}, nil
}

// Send delivers a push notification to a single device token.
func (s *firebaseService) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := s.client.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	return nil
}
