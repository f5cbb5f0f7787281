//go:build !nogui

package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notifyy/internal/desktop"
	"notifyy/internal/ui"
)

func runGUI(cmd *cobra.Command, _ []string) error {
	env, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = env.logger.Sync() }()

	srv, binding, err := env.startServer()
	if err != nil {
		env.fatal(err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// On first launch the panel is shown even when a tray exists. Some
	// desktops accept the tray without displaying it.
	cfg := env.cfg
	store := env.preferenceStore()
	if store.EnsureExists() {
		cfg.ShowOnStart = true
	}

	err = ui.Run(ctx, ui.Deps{
		Config:        cfg,
		Binding:       binding,
		Server:        srv,
		Registrar:     env.registrar(false),
		Prefs:         store,
		Notifier:      desktop.NewNotifier(env.cfg.AppName, env.logger),
		Opener:        desktop.OpenURL,
		LaunchCommand: env.launchCommand(os.Args[1:]),
		Logger:        env.logger,
	})
	env.logger.Info("Notifyy exited", zap.Error(err))
	return err
}
