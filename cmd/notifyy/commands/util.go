package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notifyy/internal/config"
	"notifyy/internal/desktop"
	"notifyy/internal/fileserver"
	"notifyy/internal/logs"
	"notifyy/internal/prefs"
	"notifyy/internal/startup"
)

// runtimeEnv is what every command builds before doing its own work.
type runtimeEnv struct {
	cfg    config.Config
	logger *zap.Logger
}

func bootstrap(cmd *cobra.Command) (*runtimeEnv, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := logs.New(cfg.Logging)
	if err != nil {
		logger = logs.Console(cfg.Logging.Level)
		logger.Warn("File logging unavailable, logging to stderr only",
			zap.String("log_dir", cfg.Logging.Dir), zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("version", Version),
		zap.String("app_dir", cfg.AppDir),
		zap.String("web_dir", cfg.WebDir),
		zap.String("preferences", cfg.PreferencesPath),
		zap.Int("port", cfg.Port))

	return &runtimeEnv{cfg: cfg, logger: logger}, nil
}

func (e *runtimeEnv) preferenceStore() *prefs.Store {
	return prefs.NewStore(afero.NewOsFs(), e.cfg.PreferencesPath, e.logger)
}

func (e *runtimeEnv) registrar(dryRun bool) startup.Registrar {
	if dryRun {
		e.logger.Info("Dry run: auto-start changes are kept in memory")
		return startup.NewMemory(false)
	}
	return startup.NewRegistrar(e.cfg.AppName, e.logger)
}

// launchCommand is the command stored in the auto-start entry.
func (e *runtimeEnv) launchCommand(args []string) string {
	exe := e.cfg.Executable
	if exe == "" {
		exe = os.Args[0]
	}
	return startup.LaunchCommand(exe, args)
}

// startServer binds the file server. Failures are fatal for every command
// that serves.
func (e *runtimeEnv) startServer() (*fileserver.Server, fileserver.Binding, error) {
	srv := fileserver.New(e.cfg.WebDir, e.logger)
	binding, err := srv.Start(e.cfg.Port)
	if err != nil {
		if errors.Is(err, fileserver.ErrRootMissing) {
			return nil, fileserver.Binding{}, fmt.Errorf("web directory not found at %s", e.cfg.WebDir)
		}
		return nil, fileserver.Binding{}, fmt.Errorf("failed to start server: %w", err)
	}
	return srv, binding, nil
}

// fatal logs err and pushes a best-effort notification, since a GUI user
// never sees stderr.
func (e *runtimeEnv) fatal(err error) {
	e.logger.Error("Fatal startup error", zap.Error(err))
	if nerr := desktop.NewNotifier(e.cfg.AppName, e.logger).Critical(e.cfg.AppName, err.Error()); nerr != nil {
		e.logger.Debug("Could not show fatal error notification", zap.Error(nerr))
	}
}
