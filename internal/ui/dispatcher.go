//go:build !nogui

package ui

import "fyne.io/fyne/v2"

// Dispatcher queues work onto the fyne main loop.
type Dispatcher struct{}

// Post schedules fn on the GUI thread without waiting for it.
func (Dispatcher) Post(fn func()) {
	fyne.Do(fn)
}
