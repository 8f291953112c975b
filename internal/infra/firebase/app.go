// Package firebase bootstraps the shared Firebase app handle the store
// adapters are derived from.
package firebase

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"sprout/config"
)

// NewApp initializes the Firebase app for the configured project. One app
// handle serves Firestore, the realtime database, storage and messaging.
func NewApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	appCfg := &firebase.Config{
		ProjectID:     cfg.Firebase.ProjectID,
		DatabaseURL:   cfg.Firebase.DatabaseURL,
		StorageBucket: cfg.Firebase.StorageBucket,
	}

	var opts []option.ClientOption
	if cfg.Firebase.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, appCfg, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "initialize firebase app")
	}

	return app, nil
}
