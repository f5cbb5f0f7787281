//go:build !linux && !freebsd && !netbsd && !openbsd && !dragonfly && !darwin && !windows

package startup

import "go.uber.org/zap"

type unsupportedRegistrar struct{}

func newPlatformRegistrar(string, *zap.Logger) Registrar {
	return unsupportedRegistrar{}
}

func (unsupportedRegistrar) IsEnabled() bool { return false }

func (unsupportedRegistrar) Enable(string) error { return ErrUnsupported }

func (unsupportedRegistrar) Disable() error { return nil }
