// Package storage uploads device photos to the Firebase Storage bucket.
package storage

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	fb "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"sprout/config"
	"sprout/internal/domain/service"
)

type photoStorage struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

// NewPhotoStorage resolves the default bucket configured on the app.
func NewPhotoStorage(ctx context.Context, app *fb.App, cfg *config.Config) (service.PhotoStorage, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "open storage client")
	}

	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, errors.Wrap(err, "resolve default bucket")
	}

	return &photoStorage{
		bucket:     bucket,
		bucketName: cfg.Firebase.StorageBucket,
	}, nil
}

// Upload writes the photo under a generated name inside folder, makes the
// object publicly readable and returns its URL.
func (s *photoStorage) Upload(ctx context.Context, folder string, photo io.Reader, contentType string) (string, error) {
	if folder == "" {
		return "", errors.New("folder parameter is required")
	}
	if photo == nil {
		return "", errors.New("photo file is required")
	}

	objectName := fmt.Sprintf("%s/%s.jpg", folder, uuid.New())
	object := s.bucket.Object(objectName)

	writer := object.NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := io.Copy(writer, photo); err != nil {
		writer.Close()

		return "", errors.Wrap(err, "upload photo")
	}
	if err := writer.Close(); err != nil {
		return "", errors.Wrap(err, "finish photo upload")
	}

	if err := object.ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		return "", errors.Wrap(err, "make photo public")
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, objectName), nil
}
