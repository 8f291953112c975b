package impl

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"sprout/internal/domain/repository"
)

// fakeDocStore is an in-memory DocumentStore. Collections are keyed by their
// full slash path, the same way the real store addresses subcollections.
type fakeDocStore struct {
	collections map[string]map[string]map[string]any
	nextID      int
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{collections: map[string]map[string]map[string]any{}}
}

func (f *fakeDocStore) collection(path string) map[string]map[string]any {
	if f.collections[path] == nil {
		f.collections[path] = map[string]map[string]any{}
	}

	return f.collections[path]
}

func (f *fakeDocStore) resolve(value any) any {
	switch v := value.(type) {
	case map[string]any:
		resolved := make(map[string]any, len(v))
		for key, inner := range v {
			resolved[key] = f.resolve(inner)
		}

		return resolved
	default:
		if value == repository.ServerTimestamp {
			return time.Now()
		}

		return value
	}
}

func (f *fakeDocStore) GetByID(_ context.Context, collection, id string) (*repository.Document, error) {
	data, ok := f.collection(collection)[id]
	if !ok {
		return nil, repository.ErrDocumentNotFound
	}

	return &repository.Document{ID: id, Data: copyMap(data)}, nil
}

func (f *fakeDocStore) QueryEqual(_ context.Context, collection, field string, value any, limit int) ([]*repository.Document, error) {
	segments := strings.Split(field, ".")

	var docs []*repository.Document
	for id, data := range f.collection(collection) {
		if fieldValue(data, segments) != value {
			continue
		}
		docs = append(docs, &repository.Document{ID: id, Data: copyMap(data)})
		if limit > 0 && len(docs) == limit {
			break
		}
	}

	return docs, nil
}

func (f *fakeDocStore) QueryOrdered(_ context.Context, collection, orderField string, descending bool) ([]*repository.Document, error) {
	var docs []*repository.Document
	for id, data := range f.collection(collection) {
		docs = append(docs, &repository.Document{ID: id, Data: copyMap(data)})
	}

	sort.Slice(docs, func(i, j int) bool {
		before := lessValue(docs[i].Data[orderField], docs[j].Data[orderField])
		if descending {
			return !before
		}

		return before
	})

	return docs, nil
}

func (f *fakeDocStore) Set(_ context.Context, collection, id string, fields map[string]any) error {
	f.collection(collection)[id] = f.resolve(fields).(map[string]any)

	return nil
}

func (f *fakeDocStore) Update(_ context.Context, collection, id string, fields map[string]any) error {
	data, ok := f.collection(collection)[id]
	if !ok {
		return repository.ErrDocumentNotFound
	}
	for key, value := range fields {
		data[key] = f.resolve(value)
	}

	return nil
}

func (f *fakeDocStore) UpdateFields(_ context.Context, collection, id string, updates []repository.FieldUpdate) error {
	data, ok := f.collection(collection)[id]
	if !ok {
		return repository.ErrDocumentNotFound
	}

	for _, update := range updates {
		current := data
		for _, segment := range update.Path[:len(update.Path)-1] {
			next, ok := current[segment].(map[string]any)
			if !ok {
				next = map[string]any{}
				current[segment] = next
			}
			current = next
		}

		leaf := update.Path[len(update.Path)-1]
		if update.Value == repository.DeleteField {
			delete(current, leaf)

			continue
		}
		current[leaf] = f.resolve(update.Value)
	}

	return nil
}

func (f *fakeDocStore) Delete(_ context.Context, collection, id string) error {
	delete(f.collection(collection), id)

	return nil
}

func (f *fakeDocStore) Add(_ context.Context, collection string, fields map[string]any) (string, error) {
	f.nextID++
	id := fmt.Sprintf("gen-%d", f.nextID)
	f.collection(collection)[id] = f.resolve(fields).(map[string]any)

	return id, nil
}

func (f *fakeDocStore) Count(_ context.Context, collection string) (int, error) {
	return len(f.collection(collection)), nil
}

func fieldValue(data map[string]any, segments []string) any {
	current := any(data)
	for _, segment := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[segment]
	}

	return current
}

func lessValue(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		bv, _ := b.(time.Time)

		return av.Before(bv)
	case string:
		bv, _ := b.(string)

		return av < bv
	case float64:
		bv, _ := b.(float64)

		return av < bv
	case int:
		bv, _ := b.(int)

		return av < bv
	default:
		return false
	}
}

func copyMap(data map[string]any) map[string]any {
	copied := make(map[string]any, len(data))
	for key, value := range data {
		if nested, ok := value.(map[string]any); ok {
			copied[key] = copyMap(nested)

			continue
		}
		copied[key] = value
	}

	return copied
}

// fakeRealtime is an in-memory RealtimeStore keyed by exact path.
type fakeRealtime struct {
	values map[string]any
}

func newFakeRealtime() *fakeRealtime {
	return &fakeRealtime{values: map[string]any{}}
}

func (f *fakeRealtime) Get(_ context.Context, path string) (any, error) {
	return f.values[path], nil
}

func (f *fakeRealtime) Set(_ context.Context, path string, value any) error {
	f.values[path] = value

	return nil
}

func (f *fakeRealtime) Delete(_ context.Context, path string) error {
	delete(f.values, path)

	return nil
}

// fakePhotoStorage records uploads and hands back deterministic URLs.
type fakePhotoStorage struct {
	uploads []string
	failing bool
}

func (f *fakePhotoStorage) Upload(_ context.Context, folder string, _ io.Reader, _ string) (string, error) {
	if f.failing {
		return "", errors.New("upload failed")
	}
	f.uploads = append(f.uploads, folder)

	return fmt.Sprintf("https://storage.example.com/%s/%d.jpg", folder, len(f.uploads)), nil
}

type sentPush struct {
	token string
	title string
	body  string
	data  map[string]string
}

// fakePush records every push it is asked to send.
type fakePush struct {
	sent []sentPush
}

func (f *fakePush) Send(_ context.Context, token, title, body string, data map[string]string) error {
	f.sent = append(f.sent, sentPush{token: token, title: title, body: body, data: data})

	return nil
}

// fakePairing renders a fixed payload so tests can assert passthrough.
type fakePairing struct{}

func (fakePairing) GeneratePairingQR(token string) ([]byte, error) {
	return []byte("qr:" + token), nil
}
