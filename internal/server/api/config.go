package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/wavegest/internal/app"
)

// ConfigHandler exposes the active configuration.
//
// Routes:
//
//	GET /api/config            full config.Config
//	GET /api/config/detection  config.Detection
//	PUT /api/config/detection  overlay a partial config.Detection
//	PUT /api/config/lock       {"lock_ms": n}
type ConfigHandler struct {
	app *app.App
}

// NewConfigHandler creates a ConfigHandler for a.
func NewConfigHandler(a *app.App) *ConfigHandler {
	return &ConfigHandler{app: a}
}

type lockRequest struct {
	LockMs *int64 `json:"lock_ms"`
}

type lockResponse struct {
	LockMs int64 `json:"lock_ms"`
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/config")
	path = strings.TrimPrefix(path, "/")

	switch path {
	case "":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.app.Config())

	case "detection":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, h.app.Config().Detection)
		case http.MethodPut:
			h.updateDetection(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}

	case "lock":
		if r.Method != http.MethodPut {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.updateLock(w, r)

	default:
		http.NotFound(w, r)
	}
}

// updateDetection decodes the body over the current knobs, so omitted
// fields keep their values.
func (h *ConfigHandler) updateDetection(w http.ResponseWriter, r *http.Request) {
	d := h.app.Config().Detection
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.app.SetDetection(d); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.app.Config().Detection)
}

func (h *ConfigHandler) updateLock(w http.ResponseWriter, r *http.Request) {
	var req lockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.LockMs == nil || *req.LockMs < 0 {
		writeError(w, http.StatusBadRequest, "lock_ms must be a non-negative number")
		return
	}

	h.app.SetLock(time.Duration(*req.LockMs) * time.Millisecond)
	writeJSON(w, http.StatusOK, lockResponse{LockMs: h.app.Config().Lock.Milliseconds()})
}
