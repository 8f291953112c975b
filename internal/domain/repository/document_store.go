package repository

import (
	"context"

	"github.com/pkg/errors"
)

// ErrDocumentNotFound is returned when a document id resolves to nothing.
var ErrDocumentNotFound = errors.New("document not found")

// sentinel is unexported so the only values of it are the two below.
type sentinel int

const (
	// ServerTimestamp is resolved to the store's own clock at write time.
	ServerTimestamp sentinel = iota
	// DeleteField removes the addressed field from the document.
	DeleteField
)

// Document is a stored record together with its id.
type Document struct {
	ID   string
	Data map[string]any
}

// FieldUpdate addresses a (possibly nested) field of a document. Path
// segments are literal field names, so keys containing separators such as
// "08:30" stay intact.
type FieldUpdate struct {
	Path  []string
	Value any
}

// DocumentStore abstracts the document database. Collection arguments accept
// slash-separated subcollection paths ("devices/123/photos").
type DocumentStore interface {
	// GetByID fetches one document. Returns ErrDocumentNotFound if absent.
	GetByID(ctx context.Context, collection, id string) (*Document, error)

	// QueryEqual returns documents whose field equals value. The field may be
	// a dot-separated path into nested maps. limit <= 0 means no limit.
	QueryEqual(ctx context.Context, collection, field string, value any, limit int) ([]*Document, error)

	// QueryOrdered returns all documents of a collection ordered by orderField.
	QueryOrdered(ctx context.Context, collection, orderField string, descending bool) ([]*Document, error)

	// Set creates or replaces a document. Fields may contain sentinels.
	Set(ctx context.Context, collection, id string, fields map[string]any) error

	// Update merges top-level fields into an existing document. Fails if the
	// document does not exist.
	Update(ctx context.Context, collection, id string, fields map[string]any) error

	// UpdateFields applies path-addressed updates to an existing document.
	UpdateFields(ctx context.Context, collection, id string, updates []FieldUpdate) error

	// Delete removes a document. Subcollections are untouched.
	Delete(ctx context.Context, collection, id string) error

	// Add appends a document with a generated id and returns that id.
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)

	// Count returns the number of documents in a collection.
	Count(ctx context.Context, collection string) (int, error)
}
