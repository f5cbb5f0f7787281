package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notifyy/internal/config"
	"notifyy/internal/desktop"
	"notifyy/internal/fileserver"
)

var openBrowser bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web app without the control panel",
	Long: `Serve the bundled web app on loopback until interrupted (Ctrl+C or SIGTERM).
No window or tray icon is created.

Examples:
  # Serve and print the URL
  notifyy serve

  # Serve on 9000 (or the next free port) and open the browser
  notifyy serve --port 9000 --open`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&openBrowser, "open", false, "open the site in the default browser once serving")
}

func runServe(cmd *cobra.Command, _ []string) error {
	env, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = env.logger.Sync() }()

	srv, binding, err := env.startServer()
	if err != nil {
		env.logger.Error("Fatal startup error", zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if openBrowser {
		if err := desktop.OpenURL(binding.URL()); err != nil {
			env.logger.Warn("Failed to open browser", zap.Error(err))
		}
	}

	return serveUntil(ctx, cmd, env, srv, binding)
}

// serveUntil blocks until ctx is cancelled, then shuts the server down.
func serveUntil(ctx context.Context, cmd *cobra.Command, env *runtimeEnv, srv *fileserver.Server, binding fileserver.Binding) error {
	cmd.Printf("Serving %s on %s\n", binding.Root, binding.URL())
	cmd.Println("Press Ctrl+C to stop")

	<-ctx.Done()
	env.logger.Info("Shutdown signal received")

	closeCtx, cancel := context.WithTimeout(context.Background(), config.ServerCloseTimeout)
	defer cancel()
	return srv.Close(closeCtx)
}
