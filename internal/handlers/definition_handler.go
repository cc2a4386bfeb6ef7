package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lexia/internal/services/definitions"
)

// DefinitionHandler resolves contextual word definitions through the tiered
// cache.
type DefinitionHandler struct {
	definitions *definitions.Service
	logger      arbor.ILogger
}

func NewDefinitionHandler(s *definitions.Service, logger arbor.ILogger) *DefinitionHandler {
	return &DefinitionHandler{
		definitions: s,
		logger:      logger,
	}
}

type defineRequest struct {
	Word     string `json:"word"`
	Sentence string `json:"sentence"`
}

// DefineHandler resolves one definition. POST /api/define
func (h *DefinitionHandler) DefineHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req defineRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Word == "" {
		WriteError(w, http.StatusBadRequest, "word is required")
		return
	}

	text, err := h.definitions.Define(r.Context(), req.Word, req.Sentence)
	if err != nil {
		h.logger.Warn().Err(err).Str("word", req.Word).Msg("Definition lookup failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"word":       req.Word,
		"sentence":   req.Sentence,
		"definition": text,
	})
}

// StatsHandler reports the durable cache size. GET /api/definitions/stats
func (h *DefinitionHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	count, err := h.definitions.CachedCount(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]int{"cached": count})
}

// ClearHandler drops both cache tiers. DELETE /api/definitions
func (h *DefinitionHandler) ClearHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}

	if err := h.definitions.ClearCache(r.Context()); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteSuccess(w, "Definition cache cleared")
}
