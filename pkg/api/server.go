package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync/atomic"

	"github.com/rubiojr/triplog/pkg/journal"
	"github.com/rubiojr/triplog/pkg/log"
	"github.com/rubiojr/triplog/pkg/realtime"
	"github.com/rubiojr/triplog/pkg/render"
	"github.com/rubiojr/triplog/pkg/search"
	"github.com/rubiojr/triplog/pkg/source"
	"github.com/rubiojr/triplog/pkg/track"
	"github.com/rubiojr/triplog/pkg/ui"
)

var logger = log.ForService("api")

// Options configure a Server.
type Options struct {
	Source   source.Source
	Filter   *search.Filter
	UI       ui.Options
	Style    track.Style
	Sanitize bool
	Title    string
	// Hub enables live reload when set.
	Hub *realtime.Hub
}

// Server serves the journal: JSON endpoints, the HTML page and its
// fragments. Content and tracks are loaded by Reload and swapped atomically,
// so requests always see a complete snapshot.
type Server struct {
	src     source.Source
	store   *journal.Store
	overlay atomic.Pointer[track.Overlay]
	tracks  atomic.Pointer[[]string]
	filter  *search.Filter
	opts    ui.Options
	style   track.Style
	entries *render.EntryRenderer
	hub     *realtime.Hub
	title   string
}

func NewServer(opts Options) (*Server, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("a content source is required")
	}
	entries, err := render.NewEntryRenderer(opts.Sanitize)
	if err != nil {
		return nil, err
	}
	if opts.Filter == nil {
		opts.Filter = search.NewFilter(nil)
	}
	if opts.Title == "" {
		opts.Title = "Trip Journal"
	}
	opts.UI = opts.UI.WithDefaults()

	s := &Server{
		src:     opts.Source,
		store:   journal.NewStore(nil),
		filter:  opts.Filter,
		opts:    opts.UI,
		style:   opts.Style,
		entries: entries,
		hub:     opts.Hub,
		title:   opts.Title,
	}
	s.overlay.Store(track.NewOverlay(track.NewLoader(opts.Source), opts.Style))
	s.tracks.Store(&[]string{})
	return s, nil
}

// Reload fetches content and tracks from the source and swaps them in. Fetch
// failures leave that half empty; see source.Load.
func (s *Server) Reload(ctx context.Context) error {
	snap := source.Load(ctx, s.src)

	ov := track.NewOverlay(track.NewLoader(s.src), s.style)
	loaded := ov.LoadAll(ctx, snap.Tracks)

	tracks := append([]string(nil), snap.Tracks...)
	sort.Strings(tracks)

	s.store.Replace(snap.Content)
	s.overlay.Store(ov)
	s.tracks.Store(&tracks)
	logger.Infof("Loaded %d entries and %d/%d tracks", snap.Content.Len(), loaded, len(tracks))
	return nil
}

// Content returns the current journal snapshot.
func (s *Server) Content() *journal.AllContent {
	return s.store.Snapshot()
}

// Overlay returns the current track overlay. Callers that highlight a track
// should Fork it first.
func (s *Server) Overlay() *track.Overlay {
	return s.overlay.Load()
}

// Tracks returns the sorted track resources of the current snapshot.
func (s *Server) Tracks() []string {
	return *s.tracks.Load()
}

func (s *Server) controller(r *http.Request) *ui.Controller {
	state := ui.ParseURLState(r.URL.Query())
	if state.Viewport == 0 {
		state.Viewport = ui.ViewportWidth(r)
	}
	return ui.NewController(s.Content(), s.Overlay().Fork(), s.filter, s.opts, state)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Errorf("Error encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}
