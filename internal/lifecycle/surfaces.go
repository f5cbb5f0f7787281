package lifecycle

import "notifyy/internal/prefs"

// View is the snapshot both control surfaces render from.
type View struct {
	State          State
	URL            string
	Port           int
	StartupEnabled bool
	TrayAvailable  bool
}

// Panel is the control panel window. All methods are called on the GUI
// thread through the Dispatcher.
type Panel interface {
	Show()
	Hide()
	Close()
	Render(View)
	ShowError(title, message string)
	ShowInfo(title, message string)
}

// Tray is the optional system tray icon. Methods run on the GUI thread.
type Tray interface {
	Render(View)
	Stop()
}

// Dispatcher runs fn on the GUI thread. Post must not block.
type Dispatcher interface {
	Post(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

func (f DispatcherFunc) Post(fn func()) { f(fn) }

// Opener opens url in the default browser.
type Opener func(url string) error

// Notifier shows a desktop notification.
type Notifier interface {
	Notify(title, message string) error
}

// PreferenceStore is satisfied by *prefs.Store.
type PreferenceStore interface {
	Load() prefs.Record
	Save(prefs.Record) bool
}
