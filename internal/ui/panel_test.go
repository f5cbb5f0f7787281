//go:build !nogui

package ui

import (
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notifyy/internal/lifecycle"
)

type fakeIntents struct {
	mu      sync.Mutex
	exits   int
	closes  int
	shows   int
	opens   chan struct{}
	toggles chan bool
}

func newFakeIntents() *fakeIntents {
	return &fakeIntents{
		opens:   make(chan struct{}, 4),
		toggles: make(chan bool, 4),
	}
}

func (f *fakeIntents) OpenApp()                { f.opens <- struct{}{} }
func (f *fakeIntents) ToggleStartup(want bool) { f.toggles <- want }
func (f *fakeIntents) ShowPanel()              { f.mu.Lock(); f.shows++; f.mu.Unlock() }
func (f *fakeIntents) ClosePanel()             { f.mu.Lock(); f.closes++; f.mu.Unlock() }
func (f *fakeIntents) Exit()                   { f.mu.Lock(); f.exits++; f.mu.Unlock() }

func (f *fakeIntents) exitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exits
}

func expectToggle(t *testing.T, f *fakeIntents, want bool) {
	t.Helper()
	select {
	case got := <-f.toggles:
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatal("expected ToggleStartup")
	}
}

func expectNoToggle(t *testing.T, f *fakeIntents) {
	t.Helper()
	select {
	case got := <-f.toggles:
		t.Fatalf("unexpected ToggleStartup(%v)", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPanel_RenderDoesNotFireToggle(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	intents := newFakeIntents()
	p := NewPanel(a, "Notifyy", intents)

	p.Render(lifecycle.View{Port: 8001, StartupEnabled: true, TrayAvailable: false})

	assert.Equal(t, "Server is running on http://localhost:8001", p.status.Text)
	assert.True(t, p.startup.Checked)
	assert.Equal(t, "Closing this window exits Notifyy", p.hint.Text)
	expectNoToggle(t, intents)

	p.Render(lifecycle.View{Port: 8001, StartupEnabled: false, TrayAvailable: true})
	assert.False(t, p.startup.Checked)
	assert.Equal(t, hintWithTray, p.hint.Text)
	expectNoToggle(t, intents)
}

func TestPanel_WidgetsForwardIntents(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	intents := newFakeIntents()
	p := NewPanel(a, "Notifyy", intents)

	test.Tap(p.startup)
	expectToggle(t, intents, true)

	test.Tap(p.open)
	select {
	case <-intents.opens:
	case <-time.After(2 * time.Second):
		t.Fatal("expected OpenApp")
	}

	test.Tap(p.exit)
	assert.Equal(t, 1, intents.exitCount())
}

func TestPanel_WindowShape(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	p := NewPanel(a, "Notifyy", newFakeIntents())

	assert.Equal(t, "Notifyy Control Panel", p.window.Title())
	assert.True(t, p.window.FixedSize())
}

func TestPanel_IgnoresCallsAfterClose(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	p := NewPanel(a, "Notifyy", newFakeIntents())

	p.Close()
	assert.NotPanics(t, func() {
		p.Close()
		p.Show()
		p.Hide()
		p.ShowError("Error", "late")
		p.ShowInfo("Success", "late")
	})
}

type fakeDesk struct {
	menu *fyne.Menu
	icon fyne.Resource
}

func (d *fakeDesk) SetSystemTrayMenu(menu *fyne.Menu)   { d.menu = menu }
func (d *fakeDesk) SetSystemTrayIcon(icon fyne.Resource) { d.icon = icon }

func TestTray_MenuAndRender(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	desk := &fakeDesk{}
	intents := newFakeIntents()
	icon := fyne.NewStaticResource("icon.png", iconData)

	tray := NewTray(desk, "Notifyy", icon, intents)
	require.NotNil(t, desk.menu)
	assert.Equal(t, icon, desk.icon)

	var labels []string
	for _, item := range desk.menu.Items {
		if !item.IsSeparator {
			labels = append(labels, item.Label)
		}
	}
	assert.Equal(t, []string{"Open Notifyy", "Show Control Panel", "Start at Login", "Exit"}, labels)

	exitItem := desk.menu.Items[len(desk.menu.Items)-1]
	assert.True(t, exitItem.IsQuit)

	tray.Render(lifecycle.View{StartupEnabled: true})
	assert.True(t, tray.startItem.Checked)

	tray.startItem.Action()
	expectToggle(t, intents, false)

	tray.Stop()
	for _, item := range tray.items {
		assert.True(t, item.Disabled)
	}
}
