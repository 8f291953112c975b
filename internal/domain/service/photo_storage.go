package service

import (
	"context"
	"io"
)

// PhotoStorage uploads device photos to the object store and hands back a
// publicly resolvable URL.
type PhotoStorage interface {
	// Upload streams the photo into folder and returns its public URL.
	Upload(ctx context.Context, folder string, photo io.Reader, contentType string) (string, error)
}
