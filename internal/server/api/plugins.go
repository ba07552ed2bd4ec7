package api

import (
	"net/http"
	"strings"

	"github.com/ayusman/wavegest/internal/plugin"
)

// PluginHandler lists discovered plugins.
//
// Routes:
//
//	GET  /api/plugins         all plugins
//	GET  /api/plugins/{name}  one plugin
//	POST /api/plugins/rescan  discover again
type PluginHandler struct {
	mgr *plugin.Manager
}

// NewPluginHandler creates a PluginHandler for mgr.
func NewPluginHandler(mgr *plugin.Manager) *PluginHandler {
	return &PluginHandler{mgr: mgr}
}

type pluginResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

type listPluginsResponse struct {
	Plugins []pluginResponse `json:"plugins"`
}

func toResponse(p *plugin.Plugin) pluginResponse {
	actions := p.Manifest.Actions
	if actions == nil {
		actions = []string{}
	}
	return pluginResponse{
		Name:        p.Manifest.Name,
		Version:     p.Manifest.Version,
		Description: p.Manifest.Description,
		Actions:     actions,
	}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *PluginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/plugins")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "" && r.Method == http.MethodGet:
		h.list(w, r)
	case path == "rescan" && r.Method == http.MethodPost:
		h.rescan(w, r)
	case path != "" && path != "rescan" && r.Method == http.MethodGet:
		h.get(w, r, path)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PluginHandler) list(w http.ResponseWriter, r *http.Request) {
	plugins := h.mgr.List()
	response := listPluginsResponse{
		Plugins: make([]pluginResponse, 0, len(plugins)),
	}
	for _, p := range plugins {
		response.Plugins = append(response.Plugins, toResponse(p))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *PluginHandler) get(w http.ResponseWriter, r *http.Request, name string) {
	p, err := h.mgr.Get(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "Plugin not found")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(p))
}

func (h *PluginHandler) rescan(w http.ResponseWriter, r *http.Request) {
	if err := h.mgr.Discover(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to discover plugins")
		return
	}
	h.list(w, r)
}
