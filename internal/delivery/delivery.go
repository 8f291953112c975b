// Package delivery defines the contract every transport server implements.
package delivery

import "context"

// Delivery is a long-running transport (HTTP server, worker, ...) managed by fx.
type Delivery interface {
	Serve(ctx context.Context) error
}
