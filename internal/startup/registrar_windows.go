//go:build windows

package startup

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

const runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

// runKeyRegistrar manages a REG_SZ value under HKCU\...\Run.
type runKeyRegistrar struct {
	valueName string
	logger    *zap.Logger
}

func newPlatformRegistrar(appName string, logger *zap.Logger) Registrar {
	return &runKeyRegistrar{valueName: appName, logger: logger}
}

func (r *runKeyRegistrar) IsEnabled() bool {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer key.Close()

	_, _, err = key.GetStringValue(r.valueName)
	return err == nil
}

func (r *runKeyRegistrar) Enable(command string) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open Run key: %w", err)
	}
	defer key.Close()

	if err := key.SetStringValue(r.valueName, command); err != nil {
		return fmt.Errorf("failed to set Run value: %w", err)
	}
	r.logger.Info("Auto-start enabled", zap.String("value", r.valueName))
	return nil
}

func (r *runKeyRegistrar) Disable() error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		if errors.Is(err, windows.ERROR_FILE_NOT_FOUND) {
			return nil
		}
		return fmt.Errorf("failed to open Run key: %w", err)
	}
	defer key.Close()

	if err := key.DeleteValue(r.valueName); err != nil && !errors.Is(err, windows.ERROR_FILE_NOT_FOUND) {
		return fmt.Errorf("failed to delete Run value: %w", err)
	}
	r.logger.Info("Auto-start disabled", zap.String("value", r.valueName))
	return nil
}
