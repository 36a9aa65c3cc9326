package track

import (
	"fmt"
	"html"

	"github.com/rubiojr/triplog/pkg/journal"
)

const maxTooltipName = 31

// Tooltip is what the map shows when hovering a track.
type Tooltip struct {
	Name     string            `json:"name"`
	Resource string            `json:"resource"`
	Miles    string            `json:"miles"`
	Headings *journal.Headings `json:"headings,omitempty"`
	Stats    *journal.Stats    `json:"stats,omitempty"`
}

// TooltipFor describes seg, adding the day's headings and stats when content
// holds an entry for it.
func TooltipFor(seg SegmentAndMarker, content *journal.AllContent) Tooltip {
	tip := Tooltip{
		Name:     truncate(seg.Geometry.Name, maxTooltipName),
		Resource: seg.Geometry.Resource,
		Miles:    fmt.Sprintf("%.2f", seg.Geometry.Miles()),
	}
	if content == nil {
		return tip
	}
	if item, err := content.Get(seg.Day); err == nil {
		stats := item.Fields.MilesAndElevation
		h := journal.ParseHeadings(item.Title, stats.RestDay)
		// Titles carry HTML entities; the map script escapes plain text.
		h.Main = html.UnescapeString(h.Main)
		h.Sub = html.UnescapeString(h.Sub)
		h.From = html.UnescapeString(h.From)
		h.To = html.UnescapeString(h.To)
		s := stats.Stats()
		tip.Headings = &h
		tip.Stats = &s
	}
	return tip
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// FeatureCollection is the GeoJSON document the map script draws.
type FeatureCollection struct {
	Type         string    `json:"type"`
	Features     []Feature `json:"features"`
	Active       int       `json:"active,omitempty"`
	Bounds       *Bounds   `json:"bounds,omitempty"`
	ActiveColor  string    `json:"active_color"`
	DefaultColor string    `json:"default_color"`
}

type Feature struct {
	Type       string     `json:"type"`
	Geometry   LineString `json:"geometry"`
	Properties Properties `json:"properties"`
}

type LineString struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// Properties carry the per-track styling and markers. Marker positions are
// latitude first, unlike the GeoJSON coordinates.
type Properties struct {
	Day     journal.Day `json:"day"`
	Color   string      `json:"color"`
	Active  bool        `json:"active"`
	Markers []Marker    `json:"markers"`
	Tooltip Tooltip     `json:"tooltip"`
}

// FeatureCollection exports every loaded track with the current highlight.
// content, when not nil, enriches tooltips.
func (o *Overlay) FeatureCollection(content *journal.AllContent) FeatureCollection {
	active := o.Active()
	fc := FeatureCollection{
		Type:         "FeatureCollection",
		Features:     []Feature{},
		ActiveColor:  o.style.Active,
		DefaultColor: o.style.Default,
	}

	for _, seg := range o.Segments() {
		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			Geometry: LineString{
				Type:        "LineString",
				Coordinates: seg.Geometry.Coordinates,
			},
			Properties: Properties{
				Day:     seg.Day,
				Color:   o.Color(seg.Day),
				Active:  seg.Day == active,
				Markers: seg.Markers(),
				Tooltip: TooltipFor(seg, content),
			},
		})
		if seg.Day == active {
			b := seg.Geometry.Bounds
			fc.Bounds = &b
			fc.Active = int(active)
		}
	}
	return fc
}
