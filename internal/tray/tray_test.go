package tray

import (
	"errors"
	"testing"

	"github.com/ayusman/wavegest/internal/gesture"
)

type fakeController struct {
	running  bool
	enabled  bool
	starts   int
	stops    int
	startErr error
}

func (f *fakeController) Start() error {
	f.starts++
	if f.startErr != nil {
		return f.startErr
	}
	f.running = true
	return nil
}

func (f *fakeController) Stop()                   { f.stops++; f.running = false }
func (f *fakeController) IsRunning() bool         { return f.running }
func (f *fakeController) SetEnabled(enabled bool) { f.enabled = enabled }
func (f *fakeController) IsEnabled() bool         { return f.enabled }

func TestTray_Notify(t *testing.T) {
	tr := New(&fakeController{})

	if got := tr.Last(); got != "" {
		t.Errorf("Last() = %q before any notification", got)
	}

	tr.Notify(gesture.Notification{Gesture: &gesture.Event{Direction: gesture.LongDown, Magnitude: 300}})
	if got := tr.Last(); got != "Long down" {
		t.Errorf("Last() = %q, want Long down", got)
	}

	tr.Notify(gesture.Notification{Error: gesture.NewError(gesture.CodePermissionDenied, nil).Payload()})
	if got := tr.Last(); got != "error: PermissionDenied" {
		t.Errorf("Last() = %q, want error: PermissionDenied", got)
	}
}

func TestTray_HandleRun(t *testing.T) {
	ctrl := &fakeController{}
	tr := New(ctrl)

	tr.handleRun()
	if !ctrl.running || ctrl.starts != 1 {
		t.Fatalf("first click should start, got running=%v starts=%d", ctrl.running, ctrl.starts)
	}

	tr.handleRun()
	if ctrl.running || ctrl.stops != 1 {
		t.Fatalf("second click should stop, got running=%v stops=%d", ctrl.running, ctrl.stops)
	}

	ctrl.startErr = errors.New("no camera")
	tr.handleRun()
	if ctrl.running {
		t.Error("failed start should leave the app stopped")
	}
}

func TestTray_HandleToggle(t *testing.T) {
	ctrl := &fakeController{enabled: true}
	tr := New(ctrl)

	tr.handleToggle()
	if ctrl.enabled {
		t.Error("toggle should disable")
	}
	tr.handleToggle()
	if !ctrl.enabled {
		t.Error("toggle should enable again")
	}
}

func TestLabels(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{lastLabel(""), "Last: none"},
		{lastLabel("Up"), "Last: Up"},
		{toggleLabel(true), "● Enabled"},
		{toggleLabel(false), "○ Disabled"},
		{runLabel(true), "Stop Camera"},
		{runLabel(false), "Start Camera"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("label = %q, want %q", tt.got, tt.want)
		}
	}
}
