package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Fragment transforms
	mux.HandleFunc("/api/annotate", s.app.AnnotateHandler.AnnotateHandler)   // POST - annotate + bionic per settings
	mux.HandleFunc("/api/annotate/spans", s.app.AnnotateHandler.SpansHandler) // POST - span list for plain text
	mux.HandleFunc("/api/strip", s.app.AnnotateHandler.StripHandler)         // POST - remove markers

	// API routes - Definitions
	mux.HandleFunc("/api/define", s.app.DefinitionHandler.DefineHandler)           // POST - resolve one definition
	mux.HandleFunc("/api/definitions/stats", s.app.DefinitionHandler.StatsHandler) // GET - cache size
	mux.HandleFunc("/api/definitions", s.app.DefinitionHandler.ClearHandler)       // DELETE - clear cache

	// API routes - Page embedding and QA
	mux.HandleFunc("/api/pages/embed", s.app.QAHandler.EmbedHandler) // POST - embed once
	mux.HandleFunc("/api/ask", s.app.QAHandler.AskHandler)           // POST - grounded answer
	mux.HandleFunc("/api/pages", s.handlePagesRoute)                 // GET (list), DELETE (forget)

	// API routes - Settings and reader stylesheet
	mux.HandleFunc("/api/settings", s.app.SettingsHandler.SettingsHandler)    // GET, PUT
	mux.HandleFunc("/api/reader/css", s.app.SettingsHandler.ReaderCSSHandler) // GET

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handlePagesRoute dispatches /api/pages by method
func (s *Server) handlePagesRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.app.QAHandler.ListPagesHandler(w, r)
	case "DELETE":
		s.app.QAHandler.ForgetPageHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
