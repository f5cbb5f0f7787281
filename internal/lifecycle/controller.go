// Package lifecycle owns the single "is the app still running" decision.
//
// The Controller receives intents from the panel, the tray, the registrar
// watcher and signal handlers on arbitrary goroutines. It serializes them,
// advances the state machine and pushes every widget update through the
// Dispatcher so that only the GUI thread touches widgets.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"notifyy/internal/fileserver"
	"notifyy/internal/prefs"
	"notifyy/internal/shutdown"
	"notifyy/internal/startup"
)

const (
	titleSuccess = "Success"
	titleError   = "Error"
)

// ServerCloser stops the file server during teardown.
type ServerCloser interface {
	Close(ctx context.Context) error
}

// Options holds the Controller's collaborators.
type Options struct {
	Binding       fileserver.Binding
	Server        ServerCloser // optional
	Registrar     startup.Registrar
	Prefs         PreferenceStore
	Dispatcher    Dispatcher
	Opener        Opener
	Notifier      Notifier // optional
	LaunchCommand string
	AppName       string
	ShowOnStart   bool
	Logger        *zap.Logger

	// Shutdown receives the teardown handlers. Callers may register extra
	// PhaseCleanup handlers on it. A new coordinator is used when nil.
	Shutdown *shutdown.Coordinator
}

// Controller is the application lifecycle controller.
type Controller struct {
	opts     Options
	logger   *zap.Logger
	machine  *machine
	teardown *shutdown.Coordinator

	mu             sync.Mutex
	attached       bool
	panel          Panel
	tray           Tray
	record         prefs.Record
	startupEnabled bool

	// toggleMu serializes registrar calls from ToggleStartup and Reconcile.
	toggleMu sync.Mutex

	exitOnce sync.Once
	done     chan struct{}
}

// New creates a Controller in the Starting state.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("lifecycle")

	if opts.AppName == "" {
		opts.AppName = "Notifyy"
	}
	if opts.Shutdown == nil {
		opts.Shutdown = shutdown.NewCoordinator(logger)
	}

	c := &Controller{
		opts:     opts,
		logger:   logger,
		machine:  newMachine(logger),
		teardown: opts.Shutdown,
		done:     make(chan struct{}),
	}

	if opts.Server != nil {
		c.teardown.RegisterFunc("file-server", shutdown.PhaseServer, func(ctx context.Context) error {
			return opts.Server.Close(ctx)
		})
	}
	return c
}

// Attach wires the control surfaces and moves to a running state. tray may be
// nil when the desktop has no system tray. Preferences and the registrar are
// read exactly once here.
func (c *Controller) Attach(panel Panel, tray Tray) error {
	if panel == nil {
		return errors.New("lifecycle: panel is required")
	}

	if s := c.machine.State(); s != StateStarting {
		return fmt.Errorf("%w: attach while %s", ErrInvalidTransition, s)
	}

	c.mu.Lock()
	if c.attached {
		c.mu.Unlock()
		return errors.New("lifecycle: already attached")
	}

	c.record = c.opts.Prefs.Load()
	c.startupEnabled = c.opts.Registrar.IsEnabled()
	if c.record.StartupEnabled != c.startupEnabled {
		c.logger.Info("Stored auto-start preference differs from the OS entry; showing the OS state",
			zap.Bool("preference", c.record.StartupEnabled),
			zap.Bool("registered", c.startupEnabled))
	}

	c.panel = panel
	c.tray = tray
	c.attached = true
	c.mu.Unlock()

	// Registered before the transition so a concurrent Exit always finds them.
	if tray != nil {
		c.teardown.Register(&shutdown.Handler{
			Name:  "tray",
			Phase: shutdown.PhaseTray,
			Fn: func(ctx context.Context) error {
				c.dispatch(tray.Stop)
				return nil
			},
		})
	}
	c.teardown.Register(&shutdown.Handler{
		Name:  "panel",
		Phase: shutdown.PhasePanel,
		Fn: func(ctx context.Context) error {
			c.dispatch(panel.Close)
			return nil
		},
	})

	target := StateRunningHidden
	if tray == nil || c.opts.ShowOnStart {
		target = StateRunningVisible
	}
	if err := c.machine.TransitionTo(target); err != nil {
		// Exit won the race. Its teardown may already be past the surface
		// phases, so release the surfaces here. Stop and Close are idempotent.
		c.dispatch(func() {
			if tray != nil {
				tray.Stop()
			}
			panel.Close()
		})
		return fmt.Errorf("attach: %w", err)
	}

	view := c.View()
	c.dispatch(func() {
		panel.Render(view)
		if tray != nil {
			tray.Render(view)
		}
		if target == StateRunningVisible {
			panel.Show()
		}
	})

	c.logger.Info("Control surfaces attached",
		zap.Bool("tray", tray != nil),
		zap.String("state", target.String()),
		zap.Bool("startup_enabled", view.StartupEnabled))
	return nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.machine.State()
}

// View returns the snapshot the surfaces render.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		State:          c.machine.State(),
		URL:            c.opts.Binding.URL(),
		Port:           c.opts.Binding.Port,
		StartupEnabled: c.startupEnabled,
		TrayAvailable:  c.tray != nil,
	}
}

// Preferences returns the record loaded by Attach.
func (c *Controller) Preferences() prefs.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record
}

// Done is closed once teardown has finished and the state is Stopped.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// OpenApp opens the served site in the default browser.
func (c *Controller) OpenApp() {
	defer c.recoverIntent("open_app")

	if !c.machine.State().IsRunning() {
		return
	}

	url := c.opts.Binding.URL()
	if c.opts.Opener == nil {
		c.logger.Warn("No browser opener configured", zap.String("url", url))
		return
	}
	if err := c.opts.Opener(url); err != nil {
		c.logger.Warn("Failed to open browser", zap.String("url", url), zap.Error(err))
		c.reportError(titleError, fmt.Sprintf("Could not open %s in the browser", url))
		return
	}
	c.logger.Debug("Opened browser", zap.String("url", url))
}

// ShowPanel brings the control panel to the front.
func (c *Controller) ShowPanel() {
	defer c.recoverIntent("show_panel")

	panel, _, ok := c.surfaces()
	if !ok {
		return
	}
	if err := c.machine.TransitionTo(StateRunningVisible); err != nil {
		c.logger.Debug("Show panel ignored", zap.Error(err))
		return
	}
	c.dispatch(panel.Show)
}

// ClosePanel hides the panel when a tray exists to bring it back. Without a
// tray nothing could reopen it, so closing means exiting.
func (c *Controller) ClosePanel() {
	defer c.recoverIntent("close_panel")

	panel, tray, ok := c.surfaces()
	if !ok {
		return
	}
	if tray == nil {
		c.logger.Info("Panel closed without a tray, exiting")
		c.Exit()
		return
	}
	if err := c.machine.TransitionTo(StateRunningHidden); err != nil {
		c.logger.Debug("Close panel ignored", zap.Error(err))
		return
	}
	c.dispatch(panel.Hide)
}

// ToggleStartup asks the registrar to match desired. On failure the displayed
// flag and the preference file keep their previous values.
func (c *Controller) ToggleStartup(desired bool) {
	defer c.recoverIntent("toggle_startup")

	c.toggleMu.Lock()
	defer c.toggleMu.Unlock()

	if _, _, ok := c.surfaces(); !ok || !c.machine.State().IsRunning() {
		return
	}

	action := "disable"
	var err error
	if desired {
		action = "enable"
		err = c.opts.Registrar.Enable(c.opts.LaunchCommand)
	} else {
		err = c.opts.Registrar.Disable()
	}

	if err != nil {
		c.logger.Warn("Auto-start change failed",
			zap.String("action", action),
			zap.Error(err))
		// Re-render the unchanged flag so the checkbox reverts.
		c.render()
		c.reportError(titleError, fmt.Sprintf("Failed to %s auto-startup", action))
		return
	}

	c.mu.Lock()
	c.startupEnabled = desired
	c.record.StartupEnabled = desired
	rec := c.record
	c.mu.Unlock()

	if !c.opts.Prefs.Save(rec) {
		c.logger.Warn("Auto-start changed but the preference could not be saved")
	}

	c.render()

	if desired {
		c.reportInfo(titleSuccess, c.opts.AppName+" will now start automatically at login")
	} else {
		c.reportInfo(titleSuccess, c.opts.AppName+" will not start automatically at login")
	}
}

// Reconcile re-reads the registrar and re-renders when the entry was changed
// outside the application.
func (c *Controller) Reconcile() {
	defer c.recoverIntent("reconcile")

	c.toggleMu.Lock()
	defer c.toggleMu.Unlock()

	if _, _, ok := c.surfaces(); !ok || !c.machine.State().IsRunning() {
		return
	}

	actual := c.opts.Registrar.IsEnabled()

	c.mu.Lock()
	changed := actual != c.startupEnabled
	c.startupEnabled = actual
	c.mu.Unlock()

	if changed {
		c.logger.Info("Auto-start entry changed externally", zap.Bool("enabled", actual))
		c.render()
	}
}

// Exit starts teardown. Only the first call has any effect; teardown runs in
// the background and Done is closed when it finishes.
func (c *Controller) Exit() {
	defer c.recoverIntent("exit")

	c.exitOnce.Do(func() {
		if err := c.machine.TransitionTo(StateShuttingDown); err != nil {
			c.logger.Warn("Unexpected state at exit", zap.Error(err))
		}
		c.logger.Info("Exit requested")
		go c.runTeardown()
	})
}

func (c *Controller) runTeardown() {
	defer close(c.done)

	if err := c.teardown.Shutdown(context.Background()); err != nil {
		c.logger.Warn("Teardown finished with errors", zap.Error(err))
	}
	if err := c.machine.TransitionTo(StateStopped); err != nil {
		c.logger.Warn("Failed to enter stopped state", zap.Error(err))
	}
}

func (c *Controller) surfaces() (Panel, Tray, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panel, c.tray, c.attached
}

func (c *Controller) render() {
	panel, tray, ok := c.surfaces()
	if !ok {
		return
	}
	view := c.View()
	c.dispatch(func() {
		panel.Render(view)
		if tray != nil {
			tray.Render(view)
		}
	})
}

// reportError shows exactly one error: a dialog when the panel is visible,
// otherwise a desktop notification.
func (c *Controller) reportError(title, message string) {
	panel, _, ok := c.surfaces()
	if ok && c.machine.State() == StateRunningVisible {
		c.dispatch(func() { panel.ShowError(title, message) })
		return
	}
	c.notify(title, message)
}

func (c *Controller) reportInfo(title, message string) {
	panel, _, ok := c.surfaces()
	if ok && c.machine.State() == StateRunningVisible {
		c.dispatch(func() { panel.ShowInfo(title, message) })
		return
	}
	c.notify(title, message)
}

func (c *Controller) notify(title, message string) {
	if c.opts.Notifier == nil {
		c.logger.Info("Notification", zap.String("title", title), zap.String("message", message))
		return
	}
	if err := c.opts.Notifier.Notify(title, message); err != nil {
		c.logger.Debug("Desktop notification failed", zap.Error(err))
	}
}

// dispatch posts fn to the GUI thread. A panic inside fn is logged instead of
// taking down the event loop.
func (c *Controller) dispatch(fn func()) {
	c.opts.Dispatcher.Post(func() {
		defer c.recoverIntent("gui")
		fn()
	})
}

func (c *Controller) recoverIntent(name string) {
	if r := recover(); r != nil {
		c.logger.Error("Recovered from panic",
			zap.String("intent", name),
			zap.Any("panic", r))
	}
}
