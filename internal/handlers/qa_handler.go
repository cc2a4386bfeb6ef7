package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"

	"github.com/ternarybob/lexia/internal/interfaces"
	"github.com/ternarybob/lexia/internal/services/qa"
)

// QAHandler exposes page embedding and grounded question answering.
type QAHandler struct {
	qa       *qa.Service
	markdown goldmark.Markdown
	logger   arbor.ILogger
}

func NewQAHandler(s *qa.Service, logger arbor.ILogger) *QAHandler {
	return &QAHandler{
		qa:       s,
		markdown: goldmark.New(),
		logger:   logger,
	}
}

type embedRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

// EmbedHandler embeds a page unless it already is. POST /api/pages/embed
func (h *QAHandler) EmbedHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req embedRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.URL == "" || req.HTML == "" {
		WriteError(w, http.StatusBadRequest, "url and html are required")
		return
	}

	performed, err := h.qa.EnsureEmbedded(r.Context(), req.URL, req.HTML)
	if err != nil {
		if errors.Is(err, interfaces.ErrMissingCredential) {
			WriteError(w, http.StatusServiceUnavailable, "No embedding credential configured")
			return
		}
		h.logger.Warn().Err(err).Str("url", req.URL).Msg("Page embedding failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"performed": performed})
}

type askRequest struct {
	URL      string `json:"url"`
	Question string `json:"question"`
	Format   string `json:"format"` // "text" (default) or "html"
}

// AskHandler answers a question about an embedded page. POST /api/ask
func (h *QAHandler) AskHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req askRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.URL == "" || req.Question == "" {
		WriteError(w, http.StatusBadRequest, "url and question are required")
		return
	}

	answer, err := h.qa.Answer(r.Context(), req.URL, req.Question)
	if err != nil {
		if errors.Is(err, interfaces.ErrMissingCredential) {
			WriteError(w, http.StatusServiceUnavailable, "No LLM credential configured")
			return
		}
		h.logger.Warn().Err(err).Str("url", req.URL).Msg("Question answering failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	response := map[string]string{"answer": answer}

	// Model answers are markdown-ish; render them when the client wants HTML.
	if req.Format == "html" {
		var buf bytes.Buffer
		if err := h.markdown.Convert([]byte(answer), &buf); err == nil {
			response["html"] = buf.String()
		}
	}

	WriteJSON(w, http.StatusOK, response)
}

// ListPagesHandler lists embedded page snapshots. GET /api/pages
func (h *QAHandler) ListPagesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	pages, err := h.qa.Pages(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"pages": pages,
		"count": len(pages),
	})
}

// ForgetPageHandler removes a page so it can be re-embedded.
// DELETE /api/pages?url=...
func (h *QAHandler) ForgetPageHandler(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		WriteError(w, http.StatusBadRequest, "url query parameter is required")
		return
	}

	if err := h.qa.Forget(r.Context(), url); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteSuccess(w, "Page removed")
}
