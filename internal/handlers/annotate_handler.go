package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lexia/internal/services/annotator"
	"github.com/ternarybob/lexia/internal/services/pipeline"
	"github.com/ternarybob/lexia/internal/services/settings"
)

// AnnotateHandler exposes the fragment transforms: annotation plus bionic via
// the pipeline, the span-list view for non-HTML surfaces, and marker removal.
type AnnotateHandler struct {
	pipeline  *pipeline.Pipeline
	annotator *annotator.Annotator
	settings  *settings.Service
	logger    arbor.ILogger
}

func NewAnnotateHandler(p *pipeline.Pipeline, a *annotator.Annotator, s *settings.Service, logger arbor.ILogger) *AnnotateHandler {
	return &AnnotateHandler{
		pipeline:  p,
		annotator: a,
		settings:  s,
		logger:    logger,
	}
}

type annotateRequest struct {
	HTML string `json:"html"`
}

// AnnotateHandler transforms an HTML fragment according to the stored
// settings. POST /api/annotate
func (h *AnnotateHandler) AnnotateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req annotateRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.HTML == "" {
		WriteError(w, http.StatusBadRequest, "html is required")
		return
	}

	current, err := h.settings.Get(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := h.pipeline.Process(req.HTML, current)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Fragment processing failed")
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

type spansRequest struct {
	Text string `json:"text"`
}

// SpansHandler returns difficult-word spans with byte offsets for a plain
// text buffer. POST /api/annotate/spans
func (h *AnnotateHandler) SpansHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req spansRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	spans := h.annotator.AnnotateText(req.Text)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"spans": spans,
		"count": len(spans),
	})
}

// StripHandler removes all annotation markers from a fragment.
// POST /api/strip
func (h *AnnotateHandler) StripHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req annotateRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	html, err := h.annotator.StripHTML(req.HTML)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"html": html})
}
