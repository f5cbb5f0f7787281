// Package startup registers notifyy to launch when the user logs in.
//
// Each platform keeps exactly one entry keyed by the application name. Enable
// overwrites that entry with the latest command and Disable treats a missing
// entry as success, so both operations are idempotent.
package startup

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ErrUnsupported is returned by Enable on platforms without an auto-start
// mechanism.
var ErrUnsupported = errors.New("auto-start is not supported on this platform")

// Registrar manages the OS auto-start entry.
type Registrar interface {
	// IsEnabled reports whether the entry currently exists and is active.
	// Lookup failures are reported as false.
	IsEnabled() bool
	// Enable creates or replaces the entry so that command runs at login.
	Enable(command string) error
	// Disable removes the entry. Removing a missing entry succeeds.
	Disable() error
}

// Watchable is implemented by registrars whose entry lives in a file. Watch
// invokes onChange whenever the entry is modified outside the application and
// stops when ctx is cancelled.
type Watchable interface {
	Watch(ctx context.Context, onChange func()) error
}

// NewRegistrar returns the registrar for the current platform.
func NewRegistrar(appName string, logger *zap.Logger) Registrar {
	return newPlatformRegistrar(appName, logger.Named("startup"))
}
