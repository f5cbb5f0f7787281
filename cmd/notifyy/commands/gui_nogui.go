//go:build nogui

package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// runGUI falls back to headless serving in builds without fyne.
func runGUI(cmd *cobra.Command, _ []string) error {
	env, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = env.logger.Sync() }()

	env.logger.Warn("Built without GUI support, serving headless")

	srv, binding, err := env.startServer()
	if err != nil {
		env.fatal(err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serveUntil(ctx, cmd, env, srv, binding)
}
