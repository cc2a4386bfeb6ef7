package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lexia/internal/models"
	"github.com/ternarybob/lexia/internal/services/reader"
	"github.com/ternarybob/lexia/internal/services/settings"
)

// SettingsHandler reads and writes the user settings snapshot and serves the
// derived reader stylesheet.
type SettingsHandler struct {
	settings *settings.Service
	logger   arbor.ILogger
}

func NewSettingsHandler(s *settings.Service, logger arbor.ILogger) *SettingsHandler {
	return &SettingsHandler{
		settings: s,
		logger:   logger,
	}
}

// SettingsHandler serves GET and PUT on /api/settings
func (h *SettingsHandler) SettingsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		current, err := h.settings.Get(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, current)

	case "PUT":
		var updated models.Settings
		if !DecodeJSON(w, r, &updated) {
			return
		}
		if err := h.settings.Update(r.Context(), &updated); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, &updated)

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// ReaderCSSHandler serves the stylesheet derived from the stored settings.
// GET /api/reader/css
func (h *SettingsHandler) ReaderCSSHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	current, err := h.settings.Get(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(reader.CSS(current)))
}
