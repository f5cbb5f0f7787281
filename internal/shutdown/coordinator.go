// Package shutdown runs the application teardown in a fixed phase order.
//
// Teardown happens at most once per process. Every handler gets its own
// timeout and a failing or hanging handler never prevents later phases from
// running, so the process can always reach the Stopped state.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"notifyy/internal/config"
)

// Phase represents a teardown phase with ordered execution
type Phase int

const (
	// PhaseTray removes the tray icon so no new intents arrive from it
	PhaseTray Phase = iota
	// PhasePanel closes the control panel window
	PhasePanel
	// PhaseServer stops the static file server
	PhaseServer
	// PhaseCleanup - Final cleanup (watchers, log sync)
	PhaseCleanup
)

var phaseOrder = []Phase{PhaseTray, PhasePanel, PhaseServer, PhaseCleanup}

// String returns the human-readable phase name
func (p Phase) String() string {
	switch p {
	case PhaseTray:
		return "Tray"
	case PhasePanel:
		return "Panel"
	case PhaseServer:
		return "Server"
	case PhaseCleanup:
		return "Cleanup"
	default:
		return "Unknown"
	}
}

// Func performs one piece of teardown work.
type Func func(ctx context.Context) error

// Handler represents a registered teardown handler
type Handler struct {
	Name     string
	Phase    Phase
	Priority int // Higher priority = executed first within same phase
	Fn       Func
	Timeout  time.Duration // 0 = use default
}

// Coordinator manages the ordered teardown
type Coordinator struct {
	mu       sync.RWMutex
	handlers map[Phase][]*Handler
	logger   *zap.Logger

	shutdownOnce sync.Once
	shutdownDone chan struct{}
	shutdownErr  error

	defaultTimeout time.Duration
	totalTimeout   time.Duration
}

// NewCoordinator creates a new teardown coordinator
func NewCoordinator(logger *zap.Logger) *Coordinator {
	return &Coordinator{
		handlers:       make(map[Phase][]*Handler),
		logger:         logger.Named("shutdown"),
		shutdownDone:   make(chan struct{}),
		defaultTimeout: config.ShutdownHandlerTimeout,
		totalTimeout:   config.ShutdownTimeout,
	}
}

// Register adds a teardown handler
func (c *Coordinator) Register(h *Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if h.Timeout == 0 {
		h.Timeout = c.defaultTimeout
	}

	handlers := append(c.handlers[h.Phase], h)
	sort.SliceStable(handlers, func(i, j int) bool {
		return handlers[i].Priority > handlers[j].Priority
	})
	c.handlers[h.Phase] = handlers

	c.logger.Debug("Registered shutdown handler",
		zap.String("name", h.Name),
		zap.String("phase", h.Phase.String()),
		zap.Int("priority", h.Priority))
}

// RegisterFunc is a convenience method to register a simple teardown function
func (c *Coordinator) RegisterFunc(name string, phase Phase, fn Func) {
	c.Register(&Handler{
		Name:  name,
		Phase: phase,
		Fn:    fn,
	})
}

// Shutdown runs every phase in order and blocks until they finish or the
// total timeout expires. Only the first call does any work; later calls wait
// for it and return its result.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.shutdownOnce.Do(func() {
		c.shutdownErr = c.executeShutdown(ctx)
		close(c.shutdownDone)
	})

	<-c.shutdownDone
	return c.shutdownErr
}

func (c *Coordinator) executeShutdown(ctx context.Context) error {
	c.logger.Info("Starting coordinated shutdown")
	startTime := time.Now()

	c.mu.RLock()
	total := c.totalTimeout
	c.mu.RUnlock()

	shutdownCtx, cancel := context.WithTimeout(ctx, total)
	defer cancel()

	var allErrors []error

	for _, phase := range phaseOrder {
		if err := c.executePhase(shutdownCtx, phase); err != nil {
			allErrors = append(allErrors, fmt.Errorf("phase %s: %w", phase.String(), err))
		}

		if shutdownCtx.Err() != nil {
			c.logger.Warn("Shutdown timeout reached, aborting remaining phases",
				zap.Duration("elapsed", time.Since(startTime)))
			allErrors = append(allErrors, fmt.Errorf("shutdown timeout: %w", shutdownCtx.Err()))
			break
		}
	}

	duration := time.Since(startTime)
	if len(allErrors) > 0 {
		c.logger.Warn("Shutdown completed with errors",
			zap.Duration("duration", duration),
			zap.Int("error_count", len(allErrors)))
		return errors.Join(allErrors...)
	}

	c.logger.Info("Shutdown completed successfully", zap.Duration("duration", duration))
	return nil
}

func (c *Coordinator) executePhase(ctx context.Context, phase Phase) error {
	c.mu.RLock()
	handlers := make([]*Handler, len(c.handlers[phase]))
	copy(handlers, c.handlers[phase])
	c.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}

	c.logger.Debug("Executing shutdown phase",
		zap.String("phase", phase.String()),
		zap.Int("handler_count", len(handlers)))

	var phaseErrors []error
	for _, h := range handlers {
		if err := c.executeHandler(ctx, h); err != nil {
			phaseErrors = append(phaseErrors, fmt.Errorf("%s: %w", h.Name, err))
		}
	}
	return errors.Join(phaseErrors...)
}

// executeHandler runs a single handler with its timeout. A panicking handler
// is reported as an error.
func (c *Coordinator) executeHandler(ctx context.Context, h *Handler) error {
	startTime := time.Now()

	handlerCtx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				errCh <- fmt.Errorf("handler panicked: %v", r)
			}
		}()
		errCh <- h.Fn(handlerCtx)
	}()

	var err error
	select {
	case err = <-errCh:
	case <-handlerCtx.Done():
		err = fmt.Errorf("handler timeout after %v", h.Timeout)
	}

	duration := time.Since(startTime)
	if err != nil {
		c.logger.Warn("Shutdown handler failed",
			zap.String("name", h.Name),
			zap.Duration("duration", duration),
			zap.Error(err))
		return err
	}

	c.logger.Debug("Shutdown handler completed",
		zap.String("name", h.Name),
		zap.Duration("duration", duration))
	return nil
}

// GetPhaseHandlers returns the handler names registered for a phase, in
// execution order
func (c *Coordinator) GetPhaseHandlers(phase Phase) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var names []string
	for _, h := range c.handlers[phase] {
		names = append(names, h.Name)
	}
	return names
}
