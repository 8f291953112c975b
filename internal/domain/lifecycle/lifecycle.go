// Package lifecycle holds shared start/stop constants for the application.
package lifecycle

import "time"

// DefaultTimeout bounds graceful shutdown and startup probes.
const DefaultTimeout = 30 * time.Second
