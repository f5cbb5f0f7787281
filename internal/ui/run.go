//go:build !nogui

package ui

import (
	"context"
	_ "embed"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"go.uber.org/zap"

	"notifyy/internal/config"
	"notifyy/internal/fileserver"
	"notifyy/internal/lifecycle"
	"notifyy/internal/shutdown"
	"notifyy/internal/startup"
)

const appID = "com.notifyy.app"

//go:embed icon.png
var iconData []byte

// Deps is everything Run needs that was created before the GUI.
type Deps struct {
	Config        config.Config
	Binding       fileserver.Binding
	Server        lifecycle.ServerCloser
	Registrar     startup.Registrar
	Prefs         lifecycle.PreferenceStore
	Notifier      lifecycle.Notifier
	Opener        lifecycle.Opener
	LaunchCommand string
	Logger        *zap.Logger
}

// Run builds the panel and, when the driver supports it, the tray, then
// blocks in the fyne event loop. Cancelling ctx requests a normal exit.
func Run(ctx context.Context, deps Deps) error {
	logger := deps.Logger.Named("ui")

	a := app.NewWithID(appID)
	icon := fyne.NewStaticResource("icon.png", iconData)
	a.SetIcon(icon)

	teardown := shutdown.NewCoordinator(deps.Logger)
	ctrl := lifecycle.New(lifecycle.Options{
		Binding:       deps.Binding,
		Server:        deps.Server,
		Registrar:     deps.Registrar,
		Prefs:         deps.Prefs,
		Dispatcher:    Dispatcher{},
		Opener:        deps.Opener,
		Notifier:      deps.Notifier,
		LaunchCommand: deps.LaunchCommand,
		AppName:       deps.Config.AppName,
		ShowOnStart:   deps.Config.ShowOnStart,
		Logger:        deps.Logger,
		Shutdown:      teardown,
	})

	panel := NewPanel(a, deps.Config.AppName, ctrl)

	var tray lifecycle.Tray
	if desk, ok := a.(desktop.App); ok {
		tray = NewTray(desk, deps.Config.AppName, icon, ctrl)
		logger.Debug("System tray available")
	} else {
		logger.Info("Desktop features not available, running without a tray")
	}

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()

	teardown.Register(&shutdown.Handler{
		Name:     "autostart-watcher",
		Phase:    shutdown.PhaseCleanup,
		Priority: 10,
		Fn: func(context.Context) error {
			stopWatch()
			return nil
		},
	})
	teardown.RegisterFunc("event-loop", shutdown.PhaseCleanup, func(context.Context) error {
		fyne.Do(a.Quit)
		return nil
	})

	a.Lifecycle().SetOnStarted(func() {
		if err := ctrl.Attach(panel, tray); err != nil {
			logger.Error("Failed to attach control surfaces", zap.Error(err))
			ctrl.Exit()
			return
		}

		if w, ok := deps.Registrar.(startup.Watchable); ok {
			if err := w.Watch(watchCtx, ctrl.Reconcile); err != nil {
				logger.Warn("Auto-start entry will not be watched", zap.Error(err))
			}
		}

		if !ctrl.Preferences().Minimized {
			go ctrl.OpenApp()
		}
	})

	go func() {
		select {
		case <-ctx.Done():
			logger.Info("Exit requested by signal")
			ctrl.Exit()
		case <-ctrl.Done():
		}
	}()

	logger.Info("Starting GUI event loop")
	a.Run()
	logger.Info("GUI event loop returned")

	// The loop can also end from the OS side (e.g. Cmd+Q), so make sure
	// teardown has run before the process exits.
	ctrl.Exit()
	select {
	case <-ctrl.Done():
	case <-time.After(config.ExitWaitTimeout):
		logger.Warn("Teardown did not finish in time", zap.Duration("timeout", config.ExitWaitTimeout))
	}
	return nil
}
