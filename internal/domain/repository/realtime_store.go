package repository

import "context"

// RealtimeStore abstracts the key-path-addressed realtime database holding
// live sensor and actuator state, separate from the document store.
type RealtimeStore interface {
	// Get reads the value at path. A missing path yields (nil, nil).
	Get(ctx context.Context, path string) (any, error)

	// Set writes the value at path, replacing whatever is there.
	Set(ctx context.Context, path string, value any) error

	// Delete removes the subtree at path.
	Delete(ctx context.Context, path string) error
}
