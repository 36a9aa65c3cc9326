package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/rubiojr/triplog/pkg/journal"
	"github.com/rubiojr/triplog/pkg/render"
	"github.com/rubiojr/triplog/pkg/source"
	"github.com/rubiojr/triplog/pkg/ui"
	"github.com/rubiojr/triplog/pkg/version"
)

// HeaderURL carries the URL a journal fragment should be pushed to the
// browser history as.
const HeaderURL = "X-Triplog-URL"

func (s *Server) HandleContent(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Content())
}

func (s *Server) HandleTracks(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Tracks())
}

func (s *Server) HandleTrackFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("file")
	if name == "" || name != path.Base(name) || path.Ext(name) != ".gpx" {
		s.writeError(w, http.StatusBadRequest, "Invalid path", "A .gpx file name is required")
		return
	}

	rc, err := s.src.OpenTrack(r.Context(), source.TrackPrefix+name)
	if err != nil {
		logger.Debugf("opening track %s: %v", name, err)
		s.writeError(w, http.StatusNotFound, "Track not found", fmt.Sprintf("Track '%s' does not exist", name))
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/gpx+xml")
	if _, err := io.Copy(w, rc); err != nil {
		logger.Warnf("serving track %s: %v", name, err)
	}
}

// HandleDayContent serves the per-day fallback document. The loaded
// snapshot is tried first, then the source.
func (s *Server) HandleDayContent(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("file")
	day, err := journal.ParseDay(strings.TrimSuffix(name, ".json"))
	if err != nil || !strings.HasSuffix(name, ".json") {
		s.writeError(w, http.StatusBadRequest, "Invalid day", fmt.Sprintf("'%s' does not name a day", name))
		return
	}

	item, err := s.Content().Get(day)
	if err != nil {
		item, err = s.src.DayContent(r.Context(), day)
	}
	if err != nil {
		if !errors.Is(err, journal.ErrNoContent) {
			logger.Warnf("day %d: %v", day, err)
		}
		s.writeError(w, http.StatusNotFound, "Content not found", fmt.Sprintf("No content for day %d", day))
		return
	}

	s.writeJSON(w, http.StatusOK, DayContentResponse{Title: item.Title, Content: item.Content})
}

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "Missing query parameter", "Query parameter 'q' is required")
		return
	}

	res := s.filter.Apply(r.Context(), query, s.Content().Items())
	s.writeJSON(w, http.StatusOK, SearchResponse{
		Query:   res.Query,
		Entries: res.Items,
		Count:   len(res.Items),
	})
}

// HandleOverlay exports the tracks as GeoJSON with the requested day
// highlighted.
func (s *Server) HandleOverlay(w http.ResponseWriter, r *http.Request) {
	ov := s.Overlay().Fork()
	if raw := r.URL.Query().Get("day"); raw != "" {
		day, err := journal.ParseDay(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "Invalid day", err.Error())
			return
		}
		ov.Activate(day)
	}
	s.writeJSON(w, http.StatusOK, ov.FeatureCollection(s.Content()))
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
		Entries:   s.Content().Len(),
		Tracks:    s.Overlay().Len(),
	}

	s.writeJSON(w, http.StatusOK, health)
}

func (s *Server) entryHTML(v *ui.View) string {
	entry, err := s.entries.Render(v.Content)
	if err != nil {
		logger.Errorf("%v", err)
		return ""
	}
	return entry
}

// HandleIndex renders the full journal page for the URL state.
func (s *Server) HandleIndex(w http.ResponseWriter, r *http.Request) {
	v := s.controller(r).Init(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Add("Vary", "Sec-CH-Viewport-Width, Viewport-Width")
	w.Header().Set("Accept-CH", "Sec-CH-Viewport-Width, Viewport-Width")
	data := render.PageData{
		Title:      s.title,
		Version:    version.Version,
		View:       v,
		Entry:      s.entryHTML(v),
		LiveReload: s.hub != nil,
	}
	if err := render.Page(data).Render(r.Context(), w); err != nil {
		logger.Errorf("rendering page: %v", err)
	}
}

// Journal fragment actions, named by the action query parameter. They say
// what the user did so the trip log reacts the same way it would in place.
const (
	ParamAction  = "action"
	ActionSearch = "search"
	ActionPage   = "page"
	ActionEntry  = "entry"
	ActionMarker = "marker"
)

// HandleJournal renders the swappable journal fragment for the URL state,
// then applies the action: a search goes back to the first page, a page link
// shows that page, an entry click selects the day and a map marker click
// lists the whole journal again.
func (s *Server) HandleJournal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c := s.controller(r)
	v := c.Init(ctx)

	switch action := r.URL.Query().Get(ParamAction); action {
	case "":
	case ActionSearch:
		c.Search(ctx, c.State().Query)
		v = c.View()
	case ActionPage:
		c.GoToPage(c.State().Page)
		v = c.View()
	case ActionEntry:
		v = c.ClickEntry(c.State().Day)
	case ActionMarker:
		v = c.ClickMarker(c.State().Day)
	default:
		s.writeError(w, http.StatusBadRequest, "invalid_action", fmt.Sprintf("unknown action %q", action))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set(HeaderURL, v.URL)
	if err := render.Journal(v, s.entryHTML(v)).Render(ctx, w); err != nil {
		logger.Errorf("rendering journal: %v", err)
	}
}
