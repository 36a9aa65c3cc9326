// Package track loads GPS tracks and keeps the map overlay: one segment per
// day with its markers, and which of them is highlighted.
package track

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rubiojr/triplog/pkg/journal"
	"github.com/rubiojr/triplog/pkg/log"
)

var logger = log.ForService("track")

const maxConcurrentLoads = 8

// Marker kinds.
const (
	MarkerStart = "start"
	MarkerEnd   = "end"
)

type Marker struct {
	Kind     string `json:"kind"`
	Position LatLng `json:"latlng"`
}

// SegmentAndMarker associates a day's rendered track with its markers. Start
// is only set for the trip's first day.
type SegmentAndMarker struct {
	Day      journal.Day `json:"day"`
	Geometry Geometry    `json:"geometry"`
	End      Marker      `json:"end"`
	Start    *Marker     `json:"start,omitempty"`
}

// Markers returns the start marker, if any, followed by the end marker.
func (s SegmentAndMarker) Markers() []Marker {
	if s.Start == nil {
		return []Marker{s.End}
	}
	return []Marker{*s.Start, s.End}
}

// Style names the colors tracks are drawn with.
type Style struct {
	Active  string
	Default string
}

// DefaultStyle draws the active track red and the rest blue.
var DefaultStyle = Style{Active: "red", Default: "blue"}

// registry holds loaded segments keyed by day. It only grows and each day is
// written once per load.
type registry struct {
	mu       sync.RWMutex
	segments map[journal.Day]SegmentAndMarker
	firstDay journal.Day
}

// Overlay is the set of loaded tracks plus the active one. Overlays returned
// by Fork share the loaded tracks but keep their own active day, so each
// request can highlight independently.
type Overlay struct {
	loader *Loader
	reg    *registry
	style  Style

	mu     sync.Mutex
	active journal.Day
}

func NewOverlay(loader *Loader, style Style) *Overlay {
	if style.Active == "" {
		style.Active = DefaultStyle.Active
	}
	if style.Default == "" {
		style.Default = DefaultStyle.Default
	}
	return &Overlay{
		loader: loader,
		reg:    &registry{segments: make(map[journal.Day]SegmentAndMarker)},
		style:  style,
	}
}

// Fork returns an overlay over the same tracks with nothing active.
func (o *Overlay) Fork() *Overlay {
	return &Overlay{loader: o.loader, reg: o.reg, style: o.style}
}

// LoadAll loads tracks concurrently and returns how many were added. Loads
// complete in any order; the lowest day among tracks gets the start marker
// whichever finishes first. Failures are logged and the day is left without
// a track.
func (o *Overlay) LoadAll(ctx context.Context, tracks []string) int {
	days := make(map[string]journal.Day, len(tracks))
	first := journal.Day(0)
	for _, res := range tracks {
		day, err := journal.DayFromResource(res)
		if err != nil {
			logger.Warnf("skipping track %s: %v", res, err)
			continue
		}
		days[res] = day
		if first == 0 || day < first {
			first = day
		}
	}

	o.reg.mu.Lock()
	if o.reg.firstDay == 0 || (first != 0 && first < o.reg.firstDay) {
		o.reg.firstDay = first
	}
	o.reg.mu.Unlock()

	var (
		wg    sync.WaitGroup
		sem   = make(chan struct{}, maxConcurrentLoads)
		added = make(chan bool, len(days))
	)
	for res, day := range days {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			g, err := o.loader.Load(ctx, res)
			if err != nil {
				logger.Warnf("loading track for day %s: %v", day, err)
				return
			}
			added <- o.add(day, g)
		}()
	}
	wg.Wait()
	close(added)

	n := 0
	for ok := range added {
		if ok {
			n++
		}
	}
	return n
}

func (o *Overlay) add(day journal.Day, g Geometry) bool {
	o.reg.mu.Lock()
	defer o.reg.mu.Unlock()

	if _, exists := o.reg.segments[day]; exists {
		logger.Warnf("day %s already has a track, ignoring %s", day, g.Resource)
		return false
	}

	seg := SegmentAndMarker{
		Day:      day,
		Geometry: g,
		End:      Marker{Kind: MarkerEnd, Position: g.End()},
	}
	if day == o.reg.firstDay {
		seg.Start = &Marker{Kind: MarkerStart, Position: g.Start()}
	}
	o.reg.segments[day] = seg
	return true
}

// Segment returns the loaded track for day.
func (o *Overlay) Segment(day journal.Day) (SegmentAndMarker, bool) {
	o.reg.mu.RLock()
	defer o.reg.mu.RUnlock()
	seg, ok := o.reg.segments[day]
	return seg, ok
}

// Segments returns every loaded track ordered by day.
func (o *Overlay) Segments() []SegmentAndMarker {
	o.reg.mu.RLock()
	segs := make([]SegmentAndMarker, 0, len(o.reg.segments))
	for _, seg := range o.reg.segments {
		segs = append(segs, seg)
	}
	o.reg.mu.RUnlock()

	sort.Slice(segs, func(i, j int) bool { return segs[i].Day < segs[j].Day })
	return segs
}

// Len returns the number of loaded tracks.
func (o *Overlay) Len() int {
	o.reg.mu.RLock()
	defer o.reg.mu.RUnlock()
	return len(o.reg.segments)
}

// Activate highlights day's track, resetting the previously active one, and
// returns the bounds to fit the map to. Days without a track leave the
// overlay unchanged.
func (o *Overlay) Activate(day journal.Day) (Bounds, bool) {
	seg, ok := o.Segment(day)
	if !ok {
		return Bounds{}, false
	}
	o.mu.Lock()
	o.active = day
	o.mu.Unlock()
	return seg.Geometry.Bounds, true
}

// Active returns the highlighted day, 0 when none.
func (o *Overlay) Active() journal.Day {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

// Color returns the color day's track is drawn with.
func (o *Overlay) Color(day journal.Day) string {
	if day != 0 && day == o.Active() {
		return o.style.Active
	}
	return o.style.Default
}

func (o *Overlay) String() string {
	return fmt.Sprintf("overlay(%d tracks, active %s)", o.Len(), o.Active())
}
