// Package firestore implements the document store contract on Cloud
// Firestore.
package firestore

import (
	"context"

	fs "cloud.google.com/go/firestore"
	fb "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"sprout/internal/domain/repository"
)

// Params holds dependencies for the Firestore store, injected by Fx.
type Params struct {
	fx.In
	fx.Lifecycle

	App *fb.App
}

type documentStore struct {
	client *fs.Client
}

// NewDocumentStore opens the Firestore client and registers its shutdown.
func NewDocumentStore(ctx context.Context, params Params) (repository.DocumentStore, error) {
	client, err := params.App.Firestore(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "open firestore client")
	}

	params.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return errors.WithStack(client.Close())
		},
	})

	return &documentStore{client: client}, nil
}

func (s *documentStore) GetByID(ctx context.Context, collection, id string) (*repository.Document, error) {
	if id == "" {
		return nil, errors.New("document id is empty")
	}

	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, repository.ErrDocumentNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get %s/%s", collection, id)
	}

	return &repository.Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (s *documentStore) QueryEqual(ctx context.Context, collection, field string, value any, limit int) ([]*repository.Document, error) {
	query := s.client.Collection(collection).Query.Where(field, "==", value)
	if limit > 0 {
		query = query.Limit(limit)
	}

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Wrapf(err, "query %s where %s ==", collection, field)
	}

	return toDocuments(snaps), nil
}

func (s *documentStore) QueryOrdered(ctx context.Context, collection, orderField string, descending bool) ([]*repository.Document, error) {
	direction := fs.Asc
	if descending {
		direction = fs.Desc
	}

	snaps, err := s.client.Collection(collection).OrderBy(orderField, direction).Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Wrapf(err, "query %s ordered by %s", collection, orderField)
	}

	return toDocuments(snaps), nil
}

func (s *documentStore) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	if id == "" {
		return errors.New("document id is empty")
	}

	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, translateMap(fields)); err != nil {
		return errors.Wrapf(err, "set %s/%s", collection, id)
	}

	return nil
}

func (s *documentStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	updates := make([]repository.FieldUpdate, 0, len(fields))
	for key, value := range fields {
		updates = append(updates, repository.FieldUpdate{Path: []string{key}, Value: value})
	}

	return s.UpdateFields(ctx, collection, id, updates)
}

func (s *documentStore) UpdateFields(ctx context.Context, collection, id string, updates []repository.FieldUpdate) error {
	if id == "" {
		return errors.New("document id is empty")
	}

	fsUpdates := make([]fs.Update, 0, len(updates))
	for _, update := range updates {
		fsUpdates = append(fsUpdates, fs.Update{
			FieldPath: fs.FieldPath(update.Path),
			Value:     translateValue(update.Value),
		})
	}

	if _, err := s.client.Collection(collection).Doc(id).Update(ctx, fsUpdates); err != nil {
		return errors.Wrapf(err, "update %s/%s", collection, id)
	}

	return nil
}

func (s *documentStore) Delete(ctx context.Context, collection, id string) error {
	if id == "" {
		return errors.New("document id is empty")
	}

	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return errors.Wrapf(err, "delete %s/%s", collection, id)
	}

	return nil
}

func (s *documentStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, translateMap(fields))
	if err != nil {
		return "", errors.Wrapf(err, "add to %s", collection)
	}

	return ref.ID, nil
}

func (s *documentStore) Count(ctx context.Context, collection string) (int, error) {
	snaps, err := s.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Wrapf(err, "count %s", collection)
	}

	return len(snaps), nil
}

func toDocuments(snaps []*fs.DocumentSnapshot) []*repository.Document {
	docs := make([]*repository.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, &repository.Document{ID: snap.Ref.ID, Data: snap.Data()})
	}

	return docs
}

// translateValue maps the repository sentinels onto the Firestore ones,
// descending through nested maps so a sentinel inside a devices entry still
// resolves server-side.
func translateValue(value any) any {
	if nested, ok := value.(map[string]any); ok {
		return translateMap(nested)
	}
	if value == repository.ServerTimestamp {
		return fs.ServerTimestamp
	}
	if value == repository.DeleteField {
		return fs.Delete
	}

	return value
}

func translateMap(fields map[string]any) map[string]any {
	translated := make(map[string]any, len(fields))
	for key, value := range fields {
		translated[key] = translateValue(value)
	}

	return translated
}
