package api

import (
	"net/http"

	"github.com/rubiojr/triplog/pkg/render"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Content source endpoints, compatible with the original backend
	mux.HandleFunc("GET /content", s.HandleContent)
	mux.HandleFunc("GET /tracks", s.HandleTracks)
	mux.HandleFunc("GET /assets/gpx/{file}", s.HandleTrackFile)
	mux.HandleFunc("GET /assets/json/{file}", s.HandleDayContent)

	mux.HandleFunc("GET /api/search", s.HandleSearch)
	mux.HandleFunc("GET /api/overlay", s.HandleOverlay)
	mux.HandleFunc("GET /health", s.HandleHealth)

	// Pages
	mux.HandleFunc("GET /{$}", s.HandleIndex)
	mux.HandleFunc("GET /partials/journal", s.HandleJournal)
	mux.Handle("GET /static/", http.StripPrefix("/static/", render.StaticHandler()))
}

// Handler returns the complete HTTP handler: routes plus middleware. The
// websocket endpoint bypasses compression since it hijacks the connection.
func (s *Server) Handler(allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	root := http.NewServeMux()
	if s.hub != nil {
		root.Handle("GET /ws", s.hub)
	}
	root.Handle("/", Gzip(mux))

	return RequestID(CorsMiddleware(allowedOrigins)(root))
}
