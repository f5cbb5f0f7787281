package config

import "time"

// Shutdown & Cleanup Timeouts
const (
	// ShutdownTimeout bounds the whole teardown started by Exit.
	ShutdownTimeout = 5 * time.Second

	// ShutdownHandlerTimeout bounds a single teardown phase.
	ShutdownHandlerTimeout = 2 * time.Second

	// ExitWaitTimeout is how long the process waits for teardown after the GUI
	// event loop has returned.
	ExitWaitTimeout = 3 * time.Second

	// ServerCloseTimeout is the grace period for in-flight requests when the
	// file server shuts down.
	ServerCloseTimeout = 2 * time.Second
)

// HTTP Server Timeouts
const (
	// ServerReadHeaderTimeout limits how long a client may take to send headers
	ServerReadHeaderTimeout = 10 * time.Second

	// ServerIdleTimeout closes idle keep-alive connections
	ServerIdleTimeout = 120 * time.Second
)

// Watcher
const (
	// AutostartDebounce coalesces bursts of filesystem events on the
	// auto-start entry into a single reconcile.
	AutostartDebounce = 250 * time.Millisecond
)
