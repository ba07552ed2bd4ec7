package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/wavegest/internal/app"
	"github.com/ayusman/wavegest/internal/capture"
	"github.com/ayusman/wavegest/internal/config"
	"github.com/ayusman/wavegest/internal/gesture"
	"github.com/ayusman/wavegest/internal/plugin"
	"github.com/ayusman/wavegest/testdata"
)

func newTestApp(t *testing.T, cam *capture.MockCamera) *app.App {
	t.Helper()
	if cam == nil {
		cam = capture.NewMockCamera(testdata.Still(16, 12, 1), true)
	}
	a := app.New(config.DefaultConfig(), cam, nil)
	t.Cleanup(a.Stop)
	return a
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestControlHandler_StartStop(t *testing.T) {
	a := newTestApp(t, nil)
	h := NewControlHandler(a)

	rec := do(h, http.MethodPost, "/api/start", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d, body %s", rec.Code, rec.Body)
	}
	var status app.Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode status: %v", err)
	}
	if !status.Running || status.Session == "" {
		t.Errorf("status after start = %+v", status)
	}

	rec = do(h, http.MethodPost, "/api/start", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("second start status = %d, want 409", rec.Code)
	}
	var payload gesture.ErrorPayload
	json.NewDecoder(rec.Body).Decode(&payload)
	if payload.Code != gesture.CodeAlreadyRunning || payload.Kind != "AlreadyRunning" {
		t.Errorf("payload = %+v", payload)
	}

	if rec := do(h, http.MethodPost, "/api/stop", ""); rec.Code != http.StatusOK {
		t.Errorf("stop status = %d", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/api/stop", ""); rec.Code != http.StatusConflict {
		t.Errorf("stop when stopped status = %d, want 409", rec.Code)
	}
}

func TestControlHandler_StartFailure(t *testing.T) {
	cam := capture.NewMockCamera(nil, false)
	cam.FailOpen(capture.ErrPermissionDenied)
	h := NewControlHandler(newTestApp(t, cam))

	rec := do(h, http.MethodPost, "/api/start", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	var payload gesture.ErrorPayload
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.Code != gesture.CodePermissionDenied {
		t.Errorf("code = %d, want %d", payload.Code, gesture.CodePermissionDenied)
	}
}

func TestControlHandler_Enabled(t *testing.T) {
	a := newTestApp(t, nil)
	h := NewControlHandler(a)

	rec := do(h, http.MethodPut, "/api/enabled", `{"enabled": false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if a.IsEnabled() {
		t.Error("app should be disabled")
	}

	rec = do(h, http.MethodGet, "/api/enabled", "")
	if !strings.Contains(rec.Body.String(), `"enabled":false`) {
		t.Errorf("body = %s", rec.Body)
	}

	if rec := do(h, http.MethodPut, "/api/enabled", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing field status = %d, want 400", rec.Code)
	}
	if rec := do(h, http.MethodPut, "/api/enabled", `{`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad json status = %d, want 400", rec.Code)
	}
}

func TestControlHandler_Methods(t *testing.T) {
	h := NewControlHandler(newTestApp(t, nil))

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/start", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/stop", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/status", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/api/enabled", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/status", http.StatusOK},
		{http.MethodGet, "/api/other", http.StatusNotFound},
	}
	for _, tt := range tests {
		if rec := do(h, tt.method, tt.path, ""); rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}
}

func TestConfigHandler(t *testing.T) {
	a := newTestApp(t, nil)
	h := NewConfigHandler(a)

	rec := do(h, http.MethodGet, "/api/config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var cfg config.Config
	if err := json.NewDecoder(rec.Body).Decode(&cfg); err != nil {
		t.Fatalf("failed to decode config: %v", err)
	}
	if cfg.Detection.Sensitivity != 80 {
		t.Errorf("Sensitivity = %d, want 80", cfg.Detection.Sensitivity)
	}

	rec = do(h, http.MethodPut, "/api/config/detection", `{"sensitivity": 60, "min_total_change": 150}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body)
	}
	d := a.Config().Detection
	if d.Sensitivity != 60 || d.MinTotalChange != 150 || d.FilteringFactor != 0.9 {
		t.Errorf("detection after update = %+v", d)
	}

	rec = do(h, http.MethodPut, "/api/config/detection", `{"filtering_factor": 1.5}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "filtering_factor") {
		t.Errorf("invalid update = %d %s", rec.Code, rec.Body)
	}

	rec = do(h, http.MethodPut, "/api/config/lock", `{"lock_ms": 800}`)
	if rec.Code != http.StatusOK || a.Config().Lock.Milliseconds() != 800 {
		t.Errorf("lock update = %d, lock %s", rec.Code, a.Config().Lock)
	}
	if rec := do(h, http.MethodPut, "/api/config/lock", `{"lock_ms": -1}`); rec.Code != http.StatusBadRequest {
		t.Errorf("negative lock status = %d, want 400", rec.Code)
	}

	if rec := do(h, http.MethodPost, "/api/config", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/config = %d, want 405", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/api/config/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET /api/config/nope = %d, want 404", rec.Code)
	}
}

func TestPluginHandler(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "keyboard")
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, plugin.ManifestFile),
		[]byte(`{"name":"keyboard","version":"1.0.0","executable":"keyboard","actions":["keystroke"]}`), 0644)

	mgr := plugin.NewManager(root)
	h := NewPluginHandler(mgr)

	rec := do(h, http.MethodGet, "/api/plugins", "")
	var list listPluginsResponse
	json.NewDecoder(rec.Body).Decode(&list)
	if len(list.Plugins) != 0 {
		t.Errorf("plugins before discovery = %v", list.Plugins)
	}

	rec = do(h, http.MethodPost, "/api/plugins/rescan", "")
	json.NewDecoder(rec.Body).Decode(&list)
	if len(list.Plugins) != 1 || list.Plugins[0].Name != "keyboard" {
		t.Fatalf("plugins after rescan = %+v", list.Plugins)
	}

	rec = do(h, http.MethodGet, "/api/plugins/keyboard", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "keystroke") {
		t.Errorf("get = %d %s", rec.Code, rec.Body)
	}
	if rec := do(h, http.MethodGet, "/api/plugins/missing", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing plugin = %d, want 404", rec.Code)
	}
	if rec := do(h, http.MethodDelete, "/api/plugins/keyboard", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE = %d, want 405", rec.Code)
	}
}
