package server

import (
	"net/http"

	"github.com/ternarybob/sessionshell/internal/app"
	"github.com/ternarybob/sessionshell/internal/handlers"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Shell pages
	mux.HandleFunc(app.InstructionPath, s.app.PageHandler.InstructionHandler)
	mux.HandleFunc(app.SettingsPath, s.app.PageHandler.SettingsPageHandler)
	mux.HandleFunc("/", s.handleRoot)

	// Settings channel
	mux.HandleFunc(handlers.ChannelPath, s.app.WSHandler.HandleWebSocket)

	// API routes - Settings (REST mirror of the settings channel)
	mux.HandleFunc("/api/settings", s.handleSettingsRoute) // GET, PUT
	mux.HandleFunc("/api/url", s.handleURLRoute)           // GET, PUT

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	return mux
}

// handleRoot redirects the bare root to the instruction page; anything else is 404
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.app.APIHandler.NotFoundHandler(w, r)
		return
	}
	http.Redirect(w, r, app.InstructionPath, http.StatusFound)
}

func (s *Server) handleSettingsRoute(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		http.MethodGet: s.app.SettingsHandler.GetSettingsHandler,
		http.MethodPut: s.app.SettingsHandler.PutSettingsHandler,
	})
}

func (s *Server) handleURLRoute(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		http.MethodGet: s.app.SettingsHandler.GetURLHandler,
		http.MethodPut: s.app.SettingsHandler.PutURLHandler,
	})
}
