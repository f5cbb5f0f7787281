//go:build !nogui

package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"notifyy/internal/lifecycle"
)

// Tray is the system tray menu. It exists only when the fyne driver
// implements desktop.App.
type Tray struct {
	desk      desktop.App
	menu      *fyne.Menu
	startItem *fyne.MenuItem
	items     []*fyne.MenuItem
}

// NewTray installs the tray icon and menu.
func NewTray(desk desktop.App, appName string, icon fyne.Resource, intents Intents) *Tray {
	t := &Tray{desk: desk}

	openItem := fyne.NewMenuItem("Open "+appName, func() {
		go intents.OpenApp()
	})
	showItem := fyne.NewMenuItem("Show Control Panel", intents.ShowPanel)

	t.startItem = fyne.NewMenuItem("Start at Login", nil)
	t.startItem.Action = func() {
		go intents.ToggleStartup(!t.startItem.Checked)
	}

	// IsQuit stops fyne from adding its own Quit entry, which would skip
	// our teardown.
	exitItem := fyne.NewMenuItem("Exit", intents.Exit)
	exitItem.IsQuit = true

	t.items = []*fyne.MenuItem{openItem, showItem, t.startItem, exitItem}
	t.menu = fyne.NewMenu(appName,
		openItem,
		showItem,
		fyne.NewMenuItemSeparator(),
		t.startItem,
		fyne.NewMenuItemSeparator(),
		exitItem,
	)

	if icon != nil {
		desk.SetSystemTrayIcon(icon)
	}
	desk.SetSystemTrayMenu(t.menu)
	return t
}

// Render mirrors the auto-start flag as the item's check mark.
func (t *Tray) Render(v lifecycle.View) {
	if t.startItem.Checked == v.StartupEnabled {
		return
	}
	t.startItem.Checked = v.StartupEnabled
	t.menu.Refresh()
}

// Stop disables every item. fyne has no call that removes the icon on its
// own; it disappears when the event loop quits.
func (t *Tray) Stop() {
	for _, item := range t.items {
		item.Disabled = true
	}
	t.menu.Refresh()
}
