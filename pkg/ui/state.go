package ui

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rubiojr/triplog/pkg/journal"
)

// URL query parameters.
const (
	ParamDay      = "day"
	ParamPage     = "page"
	ParamQuery    = "q"
	ParamViewport = "vw"
)

// URLState is the shareable part of the journal view. Everything the page
// shows can be rebuilt from it, so back/forward and copied links work.
type URLState struct {
	Day      journal.Day
	Page     int
	Query    string
	Viewport int
}

// ParseURLState reads the state from query values. Missing or malformed
// values are left at their zero value.
func ParseURLState(v url.Values) URLState {
	var s URLState
	if day, err := journal.ParseDay(v.Get(ParamDay)); err == nil {
		s.Day = day
	}
	if page, err := strconv.Atoi(v.Get(ParamPage)); err == nil && page > 0 {
		s.Page = page
	}
	s.Query = strings.TrimSpace(v.Get(ParamQuery))
	if vw, err := strconv.Atoi(v.Get(ParamViewport)); err == nil && vw > 0 {
		s.Viewport = vw
	}
	return s
}

// Values encodes the non-zero fields.
func (s URLState) Values() url.Values {
	v := url.Values{}
	if s.Day.Valid() {
		v.Set(ParamDay, s.Day.String())
	}
	if s.Page > 0 {
		v.Set(ParamPage, strconv.Itoa(s.Page))
	}
	if s.Query != "" {
		v.Set(ParamQuery, s.Query)
	}
	if s.Viewport > 0 {
		v.Set(ParamViewport, strconv.Itoa(s.Viewport))
	}
	return v
}

// URL returns path with the state as its query string.
func (s URLState) URL(path string) string {
	q := s.Values().Encode()
	if q == "" {
		return path
	}
	return path + "?" + q
}

// WithDay returns a copy of s selecting day.
func (s URLState) WithDay(day journal.Day) URLState {
	s.Day = day
	return s
}

// WithPage returns a copy of s on page.
func (s URLState) WithPage(page int) URLState {
	s.Page = page
	return s
}

// ViewportWidth returns the client's viewport width in CSS pixels, or 0 when
// unknown. The vw query parameter wins over the Sec-CH-Viewport-Width and
// Viewport-Width client hints.
func ViewportWidth(r *http.Request) int {
	candidates := []string{
		r.URL.Query().Get(ParamViewport),
		r.Header.Get("Sec-CH-Viewport-Width"),
		r.Header.Get("Viewport-Width"),
	}
	for _, c := range candidates {
		if w, err := strconv.Atoi(strings.TrimSpace(c)); err == nil && w > 0 {
			return w
		}
	}
	return 0
}
