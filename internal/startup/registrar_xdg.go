//go:build linux || freebsd || netbsd || openbsd || dragonfly

package startup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"go.uber.org/zap"

	"notifyy/internal/config"
)

const desktopSection = "Desktop Entry"

func init() {
	// Desktop entries are written as Key=Value without padding.
	ini.PrettyFormat = false
}

// xdgRegistrar manages $XDG_CONFIG_HOME/autostart/<app>.desktop.
type xdgRegistrar struct {
	appName string
	path    string
	logger  *zap.Logger
}

func newPlatformRegistrar(appName string, logger *zap.Logger) Registrar {
	return newXDGRegistrar(appName, autostartDir(), logger)
}

func newXDGRegistrar(appName, dir string, logger *zap.Logger) *xdgRegistrar {
	return &xdgRegistrar{
		appName: appName,
		path:    filepath.Join(dir, strings.ToLower(appName)+".desktop"),
		logger:  logger,
	}
}

func autostartDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "autostart")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "autostart")
	}
	return filepath.Join(os.TempDir(), "autostart")
}

func loadOptions() ini.LoadOptions {
	return ini.LoadOptions{
		IgnoreInlineComment:     true,
		PreserveSurroundedQuote: true,
	}
}

func (r *xdgRegistrar) IsEnabled() bool {
	f, err := ini.LoadSources(loadOptions(), r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Debug("Failed to read auto-start entry", zap.String("path", r.path), zap.Error(err))
		}
		return false
	}

	sec, err := f.GetSection(desktopSection)
	if err != nil {
		return false
	}
	if sec.Key("Hidden").MustBool(false) {
		return false
	}
	if !sec.Key("X-GNOME-Autostart-enabled").MustBool(true) {
		return false
	}
	return strings.TrimSpace(sec.Key("Exec").String()) != ""
}

// desktopExec encodes command as a desktop entry string value. A backtick or
// newline would make go-ini wrap the value in triple quotes, which desktop
// environments do not understand.
func desktopExec(command string) (string, error) {
	if strings.ContainsAny(command, "`\n") {
		return "", fmt.Errorf("command %q cannot be stored in a desktop entry", command)
	}
	return strings.ReplaceAll(command, `\`, `\\`), nil
}

func (r *xdgRegistrar) Enable(command string) error {
	exec, err := desktopExec(command)
	if err != nil {
		return err
	}

	f := ini.Empty(loadOptions())
	sec, err := f.NewSection(desktopSection)
	if err != nil {
		return fmt.Errorf("failed to build desktop entry: %w", err)
	}

	entries := []struct{ key, value string }{
		{"Type", "Application"},
		{"Name", r.appName},
		{"Comment", "Start " + r.appName + " at login"},
		{"Exec", exec},
		{"Terminal", "false"},
		{"X-GNOME-Autostart-enabled", "true"},
	}
	for _, e := range entries {
		if _, err := sec.NewKey(e.key, e.value); err != nil {
			return fmt.Errorf("failed to set %s: %w", e.key, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("failed to create autostart directory: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := f.SaveTo(tmp); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write desktop entry: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to install desktop entry: %w", err)
	}

	r.logger.Info("Auto-start enabled", zap.String("path", r.path))
	return nil
}

func (r *xdgRegistrar) Disable() error {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove desktop entry: %w", err)
	}
	r.logger.Info("Auto-start disabled", zap.String("path", r.path))
	return nil
}

func (r *xdgRegistrar) Watch(ctx context.Context, onChange func()) error {
	return watchEntry(ctx, r.path, config.AutostartDebounce, r.logger, onChange)
}
