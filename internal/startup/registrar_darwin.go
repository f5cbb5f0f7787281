//go:build darwin

package startup

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"notifyy/internal/config"
)

const plistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0"><dict>
  <key>Label</key><string>%s</string>
  <key>ProgramArguments</key><array><string>/bin/sh</string><string>-c</string><string>%s</string></array>
  <key>RunAtLoad</key><true/>
</dict></plist>
`

// launchAgentRegistrar manages ~/Library/LaunchAgents/<label>.plist.
type launchAgentRegistrar struct {
	label  string
	path   string
	logger *zap.Logger
}

func newPlatformRegistrar(appName string, logger *zap.Logger) Registrar {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	base := strings.ToLower(strings.ReplaceAll(appName, " ", "-"))
	label := "com." + base + ".autostart"

	return &launchAgentRegistrar{
		label:  label,
		path:   filepath.Join(home, "Library", "LaunchAgents", label+".plist"),
		logger: logger,
	}
}

func (r *launchAgentRegistrar) IsEnabled() bool {
	info, err := os.Stat(r.path)
	return err == nil && info.Mode().IsRegular()
}

func (r *launchAgentRegistrar) Enable(command string) error {
	var escaped strings.Builder
	if err := xml.EscapeText(&escaped, []byte(command)); err != nil {
		return fmt.Errorf("failed to encode command: %w", err)
	}
	content := fmt.Sprintf(plistTemplate, r.label, escaped.String())

	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("failed to create LaunchAgents directory: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write launch agent: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to install launch agent: %w", err)
	}

	r.logger.Info("Auto-start enabled", zap.String("path", r.path))
	return nil
}

func (r *launchAgentRegistrar) Disable() error {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove launch agent: %w", err)
	}
	r.logger.Info("Auto-start disabled", zap.String("path", r.path))
	return nil
}

func (r *launchAgentRegistrar) Watch(ctx context.Context, onChange func()) error {
	return watchEntry(ctx, r.path, config.AutostartDebounce, r.logger, onChange)
}
