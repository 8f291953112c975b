// Package rtdb implements the realtime store contract on the Firebase
// Realtime Database.
package rtdb

import (
	"context"

	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"github.com/pkg/errors"

	"sprout/internal/domain/repository"
)

type realtimeStore struct {
	client *db.Client
}

// NewRealtimeStore opens the realtime database client configured on the app.
func NewRealtimeStore(ctx context.Context, app *fb.App) (repository.RealtimeStore, error) {
	client, err := app.Database(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "open realtime database client")
	}

	return &realtimeStore{client: client}, nil
}

func (s *realtimeStore) Get(ctx context.Context, path string) (any, error) {
	var value any
	if err := s.client.NewRef(path).Get(ctx, &value); err != nil {
		return nil, errors.Wrapf(err, "read realtime path %s", path)
	}

	// A missing path unmarshals to nil without an error.
	return value, nil
}

func (s *realtimeStore) Set(ctx context.Context, path string, value any) error {
	if err := s.client.NewRef(path).Set(ctx, value); err != nil {
		return errors.Wrapf(err, "write realtime path %s", path)
	}

	return nil
}

func (s *realtimeStore) Delete(ctx context.Context, path string) error {
	if err := s.client.NewRef(path).Delete(ctx); err != nil {
		return errors.Wrapf(err, "delete realtime path %s", path)
	}

	return nil
}
