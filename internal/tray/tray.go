// Package tray provides a system tray menu for the wave gesture detector.
package tray

import (
	"log"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/wavegest/internal/gesture"
)

// Controller is the part of the app the tray drives.
type Controller interface {
	Start() error
	Stop()
	IsRunning() bool
	SetEnabled(enabled bool)
	IsEnabled() bool
}

// Tray is the system tray application. It is also a gesture.Sink and shows
// the last notification in its menu.
type Tray struct {
	ctrl       Controller
	onSettings func()
	onQuit     func()
	last       string
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuRun         *systray.MenuItem
	menuLastGesture *systray.MenuItem
}

// New creates a Tray driving ctrl.
func New(ctrl Controller) *Tray {
	return &Tray{ctrl: ctrl}
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray, which makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Wave")
	systray.SetTooltip("Wave gesture detection")

	t.mu.Lock()
	t.menuRun = systray.AddMenuItem(runLabel(t.ctrl.IsRunning()), "Start or stop the camera")
	t.menuToggle = systray.AddMenuItem(toggleLabel(t.ctrl.IsEnabled()), "Pause or resume gesture detection")
	systray.AddSeparator()

	t.menuLastGesture = systray.AddMenuItem(lastLabel(t.last), "Last notification")
	t.menuLastGesture.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit")

	go func() {
		for {
			select {
			case <-t.menuRun.ClickedCh:
				t.handleRun()
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	t.ctrl.Stop()
}

// handleRun starts a stopped app or stops a running one.
func (t *Tray) handleRun() {
	if t.ctrl.IsRunning() {
		t.ctrl.Stop()
	} else if err := t.ctrl.Start(); err != nil {
		log.Printf("Tray start failed: %v", err)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuRun != nil {
		t.menuRun.SetTitle(runLabel(t.ctrl.IsRunning()))
	}
}

// handleToggle flips the enabled state of the app.
func (t *Tray) handleToggle() {
	enabled := !t.ctrl.IsEnabled()
	t.ctrl.SetEnabled(enabled)

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleLabel(enabled))
	}
}

func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Notify records the notification as the last one and updates the menu.
func (t *Tray) Notify(n gesture.Notification) {
	text := describe(n)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = text
	if t.menuLastGesture != nil {
		t.menuLastGesture.SetTitle(lastLabel(text))
	}
}

// Last returns the description of the last notification.
func (t *Tray) Last() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

func describe(n gesture.Notification) string {
	switch {
	case n.IsError():
		return "error: " + n.Error.Kind
	case n.Gesture != nil:
		return n.Gesture.Direction.String()
	default:
		return ""
	}
}

func lastLabel(text string) string {
	if text == "" {
		return "Last: none"
	}
	return "Last: " + text
}

func toggleLabel(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func runLabel(running bool) string {
	if running {
		return "Stop Camera"
	}
	return "Start Camera"
}
