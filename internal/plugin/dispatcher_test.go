package plugin

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/wavegest/internal/config"
	"github.com/ayusman/wavegest/internal/gesture"
)

func newTestDispatcher(t *testing.T, script string, bindings map[string]config.Binding) (*Dispatcher, chan Result) {
	t.Helper()
	skipOnWindows(t)

	root := t.TempDir()
	writePlugin(t, root, "keyboard", script, "keystroke")

	mgr := NewManager(root)
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	d, err := NewDispatcher(mgr, NewExecutor(5*time.Second), bindings)
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}
	t.Cleanup(d.Close)

	results := make(chan Result, 4)
	d.OnResult(func(r Result) { results <- r })
	return d, results
}

func waitResult(t *testing.T, results chan Result) Result {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for plugin result")
		return Result{}
	}
}

func TestDispatcher_RunsBoundAction(t *testing.T) {
	echo := "#!/bin/sh\nread -r line\nprintf '{\"success\":true,\"data\":%s}' \"$line\"\n"
	d, results := newTestDispatcher(t, echo, map[string]config.Binding{
		"left": {Plugin: "keyboard", Action: "keystroke", Params: json.RawMessage(`{"key":"right"}`)},
	})

	d.Notify(gesture.Notification{
		Gesture: &gesture.Event{Direction: gesture.Left, Magnitude: 500},
		Session: "s1",
	})

	r := waitResult(t, results)
	if r.Err != nil {
		t.Fatalf("plugin run error = %v", r.Err)
	}
	if r.Direction != gesture.Left || r.Plugin != "keyboard" || r.Action != "keystroke" {
		t.Errorf("result = %+v", r)
	}

	var req Request
	if err := json.Unmarshal(r.Response.Data, &req); err != nil {
		t.Fatalf("failed to parse echoed request: %v", err)
	}
	if req.Gesture != "Left" || req.Magnitude != 500 || req.Session != "s1" || string(req.Params) != `{"key":"right"}` {
		t.Errorf("plugin received %+v", req)
	}
}

func TestDispatcher_IgnoresUnboundAndErrors(t *testing.T) {
	d, results := newTestDispatcher(t, okScript, map[string]config.Binding{
		"Up": {Plugin: "keyboard", Action: "keystroke"},
	})

	d.Notify(gesture.Notification{Gesture: &gesture.Event{Direction: gesture.Down}})
	d.Notify(gesture.Notification{Error: &gesture.ErrorPayload{Code: gesture.CodePermissionDenied}})

	select {
	case r := <-results:
		t.Fatalf("unexpected plugin run %+v", r)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDispatcher_UnknownPluginOrAction(t *testing.T) {
	d, results := newTestDispatcher(t, okScript, map[string]config.Binding{
		"Right": {Plugin: "missing", Action: "keystroke"},
		"Down":  {Plugin: "keyboard", Action: "launch"},
	})

	d.Notify(gesture.Notification{Gesture: &gesture.Event{Direction: gesture.Right}})
	if r := waitResult(t, results); r.Err == nil || !strings.Contains(r.Err.Error(), "not found") {
		t.Errorf("missing plugin error = %v", r.Err)
	}

	d.Notify(gesture.Notification{Gesture: &gesture.Event{Direction: gesture.Down}})
	if r := waitResult(t, results); r.Err == nil || !strings.Contains(r.Err.Error(), "does not support") {
		t.Errorf("unsupported action error = %v", r.Err)
	}
}

func TestNewDispatcher_BadBinding(t *testing.T) {
	_, err := NewDispatcher(NewManager(""), NewExecutor(0), map[string]config.Binding{
		"sideways": {Plugin: "keyboard", Action: "keystroke"},
	})
	if err == nil {
		t.Fatal("expected error for unknown direction")
	}
}
