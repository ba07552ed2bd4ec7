package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/wavegest/internal/app"
	"github.com/ayusman/wavegest/internal/gesture"
)

// ControlHandler starts, stops and inspects the detection run.
//
// Routes:
//
//	POST /api/start    start detection
//	POST /api/stop     stop detection
//	GET  /api/status   app.Status
//	GET  /api/enabled  {"enabled": bool}
//	PUT  /api/enabled  pause or resume detection
type ControlHandler struct {
	app *app.App
}

// NewControlHandler creates a ControlHandler for a.
func NewControlHandler(a *app.App) *ControlHandler {
	return &ControlHandler{app: a}
}

type enabledRequest struct {
	Enabled *bool `json:"enabled"`
}

type enabledResponse struct {
	Enabled bool `json:"enabled"`
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *ControlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := strings.TrimPrefix(r.URL.Path, "/api/")

	switch route {
	case "start":
		h.only(w, r, http.MethodPost, h.start)
	case "stop":
		h.only(w, r, http.MethodPost, h.stop)
	case "status":
		h.only(w, r, http.MethodGet, h.status)
	case "enabled":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, enabledResponse{Enabled: h.app.IsEnabled()})
		case http.MethodPut:
			h.setEnabled(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	default:
		http.NotFound(w, r)
	}
}

func (h *ControlHandler) only(w http.ResponseWriter, r *http.Request, method string, fn http.HandlerFunc) {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	fn(w, r)
}

// start handles POST /api/start. Failures answer with the error payload.
func (h *ControlHandler) start(w http.ResponseWriter, r *http.Request) {
	err := h.app.Start()
	if err == nil {
		writeJSON(w, http.StatusOK, h.app.Status())
		return
	}

	var gerr *gesture.Error
	if !errors.As(err, &gerr) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusServiceUnavailable
	switch gerr.Code {
	case gesture.CodeAlreadyRunning:
		status = http.StatusConflict
	case gesture.CodePermissionDenied:
		status = http.StatusForbidden
	}
	writeJSON(w, status, gerr.Payload())
}

// stop handles POST /api/stop.
func (h *ControlHandler) stop(w http.ResponseWriter, r *http.Request) {
	if !h.app.IsRunning() {
		writeError(w, http.StatusConflict, app.ErrNotRunning.Error())
		return
	}
	h.app.Stop()
	writeJSON(w, http.StatusOK, h.app.Status())
}

// status handles GET /api/status.
func (h *ControlHandler) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Status())
}

// setEnabled handles PUT /api/enabled.
func (h *ControlHandler) setEnabled(w http.ResponseWriter, r *http.Request) {
	var req enabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}

	h.app.SetEnabled(*req.Enabled)
	writeJSON(w, http.StatusOK, enabledResponse{Enabled: h.app.IsEnabled()})
}
