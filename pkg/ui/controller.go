// Package ui holds the journal's view state: which day is selected, which
// entries the trip log lists and on which page, and which track is
// highlighted. A Controller is built per request from the URL state and
// produces plain view models for pkg/render.
package ui

import (
	"context"

	"github.com/rubiojr/triplog/pkg/journal"
	"github.com/rubiojr/triplog/pkg/paginate"
	"github.com/rubiojr/triplog/pkg/search"
	"github.com/rubiojr/triplog/pkg/track"
)

// NavEntry is one line of the trip log.
type NavEntry struct {
	Day      journal.Day
	Route    string
	URL      string
	Active   bool
	HasTrack bool
}

// PageLink is one pagination button.
type PageLink struct {
	Number  int
	URL     string
	Current bool
}

// NavView is the rendered trip log: the entries on the current page and the
// page buttons.
type NavView struct {
	Entries   []NavEntry
	Pages     []PageLink
	Page      paginate.Result
	Query     string
	Collapsed bool
}

// ContentView is the selected day's entry. Found is false when the journal
// has no entry for Day.
type ContentView struct {
	Day      journal.Day
	Found    bool
	Item     journal.ContentItem
	Headings journal.Headings
	Stats    journal.Stats
	RestDay  bool
	Emoji    string
}

// View is everything a journal page renders.
type View struct {
	State   URLState
	URL     string
	Nav     NavView
	Content ContentView
	Overlay *track.Overlay
	Bounds  *track.Bounds
}

type Controller struct {
	opts    Options
	content *journal.AllContent
	overlay *track.Overlay
	filter  *search.Filter

	state     URLState
	list      []journal.ContentItem
	nav       NavView
	highlight journal.Day
	bounds    *track.Bounds
}

// NewController builds the view for state. overlay should be a fork private
// to the caller; it may be nil when no tracks are loaded.
func NewController(content *journal.AllContent, overlay *track.Overlay, filter *search.Filter, opts Options, state URLState) *Controller {
	if content == nil {
		content = journal.NewAllContent(nil)
	}
	if filter == nil {
		filter = search.NewFilter(nil)
	}
	return &Controller{
		opts:    opts,
		content: content,
		overlay: overlay,
		filter:  filter,
		state:   state,
		list:    content.Items(),
	}
}

// Init runs the initial load: apply the query from the URL, list the
// entries and select the day from the URL, or the default day.
func (c *Controller) Init(ctx context.Context) *View {
	day := c.state.Day
	if !day.Valid() {
		day = c.opts.DefaultDay
	}
	c.state.Day = day

	var page *int
	if c.state.Page > 0 {
		p := c.state.Page
		page = &p
	}

	if c.state.Query != "" {
		res := c.filter.Apply(ctx, c.state.Query, c.content.Items())
		c.list = res.Items
	}
	c.Navigation(c.list, page)
	c.SelectDay(day)
	c.activateTrack(day)
	return c.View()
}

// State returns the current URL state.
func (c *Controller) State() URLState {
	return c.state
}

// URL returns the shareable URL of the current state.
func (c *Controller) URL() string {
	return c.state.URL(c.opts.BasePath)
}

// SelectDay records day as the displayed day and moves the trip log
// highlight to it. The previous highlight is always cleared; when day is not
// in the listed entries nothing is highlighted. It returns the URL to push
// to the browser history.
func (c *Controller) SelectDay(day journal.Day) string {
	c.state.Day = day
	c.highlight = 0
	if journal.IndexOf(c.list, day) >= 0 {
		c.highlight = day
	}
	for i := range c.nav.Entries {
		c.nav.Entries[i].Active = c.nav.Entries[i].Day == c.highlight
	}
	return c.URL()
}

// Highlighted returns the highlighted trip log day, 0 when none.
func (c *Controller) Highlighted() journal.Day {
	return c.highlight
}

// Navigation lists contents, or the whole journal when contents is nil. With
// a nil page the page holding the selected day is shown, or the first page
// when the day is not listed.
func (c *Controller) Navigation(contents []journal.ContentItem, page *int) NavView {
	if contents == nil {
		contents = c.content.Items()
	}
	c.list = contents

	size := c.opts.PageSize(c.state.Viewport)
	current := 1
	if page != nil {
		current = *page
	} else if idx := journal.IndexOf(contents, c.state.Day); idx >= 0 {
		current = paginate.PageOf(idx, size)
	}

	res := paginate.Paginate(len(contents), current, size, c.opts.MaxPageButtons)
	if page != nil {
		c.state.Page = res.CurrentPage
	}

	nav := NavView{
		Page:      res,
		Query:     c.state.Query,
		Collapsed: c.opts.Collapsed(c.state.Viewport),
	}
	if journal.IndexOf(contents, c.state.Day) >= 0 {
		c.highlight = c.state.Day
	} else {
		c.highlight = 0
	}

	for i := res.StartIndex; i <= res.EndIndex; i++ {
		item := contents[i]
		day := item.Day()
		nav.Entries = append(nav.Entries, NavEntry{
			Day:      day,
			Route:    item.Fields.Locations.Route(),
			URL:      c.state.WithDay(day).WithPage(0).URL(c.opts.BasePath),
			Active:   day == c.highlight,
			HasTrack: c.hasTrack(day),
		})
	}
	for _, p := range res.Pages {
		nav.Pages = append(nav.Pages, PageLink{
			Number:  p,
			URL:     c.state.WithPage(p).URL(c.opts.BasePath),
			Current: p == res.CurrentPage,
		})
	}

	c.nav = nav
	return nav
}

// GoToPage shows page of the current list.
func (c *Controller) GoToPage(page int) NavView {
	return c.Navigation(c.list, &page)
}

// Search narrows the trip log to entries matching query and goes back to the
// first page, which the URL records. A blank query lists the whole journal
// again.
func (c *Controller) Search(ctx context.Context, query string) NavView {
	res := c.filter.Apply(ctx, query, c.content.Items())
	c.state.Query = res.Query
	c.state.Page = 0
	if !res.Filtered {
		return c.Navigation(res.Items, nil)
	}
	first := 1
	return c.Navigation(res.Items, &first)
}

// ClickEntry handles a trip log click: show the day, move the highlight and
// highlight its track when there is one.
func (c *Controller) ClickEntry(day journal.Day) *View {
	c.SelectDay(day)
	c.activateTrack(day)
	return c.View()
}

// ClickMarker handles a map marker click. Unlike ClickEntry the trip log is
// rebuilt over the whole journal, on the page holding day.
func (c *Controller) ClickMarker(day journal.Day) *View {
	c.state.Day = day
	c.state.Query = ""
	c.state.Page = 0
	c.Navigation(nil, nil)
	c.SelectDay(day)
	c.activateTrack(day)
	return c.View()
}

func (c *Controller) activateTrack(day journal.Day) {
	c.bounds = nil
	if c.overlay == nil {
		return
	}
	if b, ok := c.overlay.Activate(day); ok {
		c.bounds = &b
	}
}

func (c *Controller) hasTrack(day journal.Day) bool {
	if c.overlay == nil {
		return false
	}
	_, ok := c.overlay.Segment(day)
	return ok
}

// Content returns the selected day's entry.
func (c *Controller) Content() ContentView {
	return ContentFor(c.content, c.state.Day)
}

// ContentFor looks up day in content. A miss is reported through Found, not
// an error, so the page can show that the entry is unavailable.
func ContentFor(content *journal.AllContent, day journal.Day) ContentView {
	v := ContentView{Day: day}
	item, err := content.Get(day)
	if err != nil {
		return v
	}
	stats := item.Fields.MilesAndElevation
	v.Found = true
	v.Item = item
	v.RestDay = stats.RestDay
	v.Headings = journal.ParseHeadings(item.Title, stats.RestDay)
	v.Stats = stats.Stats()
	v.Emoji = journal.WeatherEmoji(item.Fields.Weather)
	return v
}

// View returns the current view model.
func (c *Controller) View() *View {
	return &View{
		State:   c.state,
		URL:     c.URL(),
		Nav:     c.nav,
		Content: c.Content(),
		Overlay: c.overlay,
		Bounds:  c.bounds,
	}
}
