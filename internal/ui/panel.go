//go:build !nogui

// Package ui renders the control panel and the system tray with fyne.
//
// Widgets here never decide anything. Every click is forwarded to the
// lifecycle controller, which calls back through Render and friends on the GUI
// thread.
package ui

import (
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"notifyy/internal/lifecycle"
)

const (
	hintWithTray    = "Close this window to minimize to system tray"
	hintWithoutTray = "Closing this window exits %s"
)

// Intents is the subset of the lifecycle controller the widgets call.
type Intents interface {
	OpenApp()
	ShowPanel()
	ClosePanel()
	ToggleStartup(desired bool)
	Exit()
}

// Panel is the "Control Panel" window.
type Panel struct {
	appName string
	window  fyne.Window
	status  *widget.Label
	startup *widget.Check
	hint    *widget.Label
	open    *widget.Button
	exit    *widget.Button
	closed  bool
}

// NewPanel builds the window without showing it.
func NewPanel(a fyne.App, appName string, intents Intents) *Panel {
	p := &Panel{
		appName: appName,
		window:  a.NewWindow(appName + " Control Panel"),
	}

	title := widget.NewLabelWithStyle(appName, fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	title.SizeName = theme.SizeNameSubHeadingText

	p.status = widget.NewLabel("Server is starting…")
	p.status.Alignment = fyne.TextAlignCenter
	p.status.Importance = widget.SuccessImportance

	p.startup = widget.NewCheck("Start automatically at login", func(checked bool) {
		// Registrar calls do I/O, keep them off the GUI thread.
		go intents.ToggleStartup(checked)
	})

	p.open = widget.NewButton("Open "+appName, func() {
		go intents.OpenApp()
	})
	p.open.Importance = widget.HighImportance
	p.exit = widget.NewButton("Exit", intents.Exit)

	p.hint = widget.NewLabel(hintWithTray)
	p.hint.Alignment = fyne.TextAlignCenter
	p.hint.Importance = widget.LowImportance

	p.window.SetContent(container.NewVBox(
		title,
		p.status,
		container.NewCenter(p.startup),
		container.NewHBox(layout.NewSpacer(), p.open, p.exit, layout.NewSpacer()),
		p.hint,
	))
	p.window.Resize(fyne.NewSize(400, 200))
	p.window.SetFixedSize(true)
	p.window.CenterOnScreen()
	p.window.SetCloseIntercept(intents.ClosePanel)

	return p
}

// Render updates every widget from v. The checkbox is set without firing its
// change handler, so a revert never loops back into ToggleStartup.
func (p *Panel) Render(v lifecycle.View) {
	p.status.SetText(fmt.Sprintf("Server is running on http://localhost:%d", v.Port))

	if p.startup.Checked != v.StartupEnabled {
		p.startup.Checked = v.StartupEnabled
		p.startup.Refresh()
	}

	if v.TrayAvailable {
		p.hint.SetText(hintWithTray)
	} else {
		p.hint.SetText(fmt.Sprintf(hintWithoutTray, p.appName))
	}
}

func (p *Panel) Show() {
	if p.closed {
		return
	}
	p.window.Show()
	p.window.RequestFocus()
}

func (p *Panel) Hide() {
	if p.closed {
		return
	}
	p.window.Hide()
}

// Close destroys the window. Later Show and Hide calls are ignored.
func (p *Panel) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.window.Close()
}

func (p *Panel) ShowError(title, message string) {
	if p.closed {
		return
	}
	d := dialog.NewError(errors.New(message), p.window)
	d.Show()
}

func (p *Panel) ShowInfo(title, message string) {
	if p.closed {
		return
	}
	dialog.ShowInformation(title, message, p.window)
}
