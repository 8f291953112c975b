package service

import "context"

// PushSender delivers a push notification to a single device token.
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}
