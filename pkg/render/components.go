package render

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/rubiojr/triplog/pkg/ui"
)

// PageData is what the full journal page needs.
type PageData struct {
	Title      string
	Version    string
	View       *ui.View
	Entry      string
	LiveReload bool
}

// pageState is handed to the map script.
type pageState struct {
	Day        int    `json:"day"`
	URL        string `json:"url"`
	Overlay    string `json:"overlay"`
	LiveReload bool   `json:"liveReload"`
}

type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(parts ...string) {
	for _, p := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, p)
	}
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

func esc(s string) string {
	return templ.EscapeString(s)
}

// Page is the full journal document.
func Page(d PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		state, err := templ.JSONString(pageState{
			Day:        int(d.View.State.Day),
			URL:        d.View.URL,
			Overlay:    OverlayURL(d.View),
			LiveReload: d.LiveReload,
		})
		if err != nil {
			return fmt.Errorf("encoding page state: %w", err)
		}

		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<meta name="generator" content="triplog `, esc(d.Version), `">`,
			`<title>`, esc(d.Title), `</title>`,
			`<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">`,
			`<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/glightbox/dist/css/glightbox.min.css">`,
			`<link rel="stylesheet" href="/static/style.css">`,
			`<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js" defer></script>`,
			`<script src="https://cdn.jsdelivr.net/npm/glightbox/dist/js/glightbox.min.js" defer></script>`,
			`<script src="/static/app.js" defer></script>`,
			`</head><body>`,
			`<header class="site-header"><h1><a href="/">`, esc(d.Title), `</a></h1></header>`,
			`<main><div id="map" aria-label="Trip map"></div>`)
		h.render(ctx, Journal(d.View, d.Entry))
		h.raw(`</main>`,
			`<script id="triplog-state" type="application/json">`, state, `</script>`,
			`</body></html>`)
		return h.err
	})
}

// OverlayURL is where the map script fetches the tracks for v.
func OverlayURL(v *ui.View) string {
	if v.State.Day.Valid() {
		return "/api/overlay?day=" + v.State.Day.String()
	}
	return "/api/overlay"
}

// Journal is the part of the page swapped on navigation: the trip log and
// the selected entry.
func Journal(v *ui.View, entry string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div id="journal" data-day="`, v.State.Day.String(), `" data-url="`, esc(v.URL), `">`)
		h.render(ctx, Nav(v.Nav, v.State))
		h.render(ctx, Content(v.Content, entry))
		h.raw(`</div>`)
		return h.err
	})
}

// Nav is the trip log: search box, entries and page buttons.
func Nav(n ui.NavView, state ui.URLState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		open := " open"
		if n.Collapsed {
			open = ""
		}
		h.raw(`<details id="trip-log" class="trip-log"`, open, `><summary>Trip Log</summary>`,
			`<form id="search" method="get" role="search">`,
			`<input type="search" name="q" value="`, esc(n.Query), `" placeholder="Search the journal" autocomplete="off">`)
		if state.Day.Valid() {
			h.raw(`<input type="hidden" name="day" value="`, state.Day.String(), `">`)
		}
		if state.Viewport > 0 {
			h.raw(`<input type="hidden" name="vw" value="`, strconv.Itoa(state.Viewport), `">`)
		}
		h.raw(`</form>`)

		if len(n.Entries) == 0 {
			if n.Query != "" {
				h.raw(`<p class="no-results">No entries match "`, esc(n.Query), `".</p>`)
			} else {
				h.raw(`<p class="no-results">The journal is empty.</p>`)
			}
		} else {
			h.raw(`<ol class="trip-log-entries">`)
			for _, e := range n.Entries {
				h.render(ctx, navEntry(e))
			}
			h.raw(`</ol>`)
		}
		h.render(ctx, Pagination(n.Pages))
		h.raw(`</details>`)
		return h.err
	})
}

func navEntry(e ui.NavEntry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		class := "entry"
		if e.Active {
			class += " active"
		}
		h.raw(`<li class="`, class, `" data-day="`, e.Day.String(), `" data-track="`, strconv.FormatBool(e.HasTrack), `">`,
			`<a href="`, esc(string(templ.URL(e.URL))), `">`,
			`<span class="day">Day `, e.Day.String(), `</span> `,
			`<span class="route">`, esc(e.Route), `</span></a></li>`)
		return h.err
	})
}

// Pagination renders the page buttons. A single page renders nothing.
func Pagination(pages []ui.PageLink) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(pages) < 2 {
			return nil
		}
		h := &htmlWriter{w: w}
		h.raw(`<nav class="pagination" aria-label="Trip log pages">`)
		for _, p := range pages {
			if p.Current {
				h.raw(`<a class="page current" aria-current="page" href="`, esc(p.URL), `">`, strconv.Itoa(p.Number), `</a>`)
				continue
			}
			h.raw(`<a class="page" href="`, esc(p.URL), `">`, strconv.Itoa(p.Number), `</a>`)
		}
		h.raw(`</nav>`)
		return h.err
	})
}

// Content wraps the rendered entry for v. entry is trusted HTML produced by
// EntryRenderer.
func Content(v ui.ContentView, entry string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		class := "entry-content"
		if !v.Found {
			class += " unavailable"
		}
		h.raw(`<article id="content" class="`, class, `" data-day="`, v.Day.String(), `">`)
		h.render(ctx, templ.Raw(entry))
		h.raw(`</article>`)
		return h.err
	})
}
