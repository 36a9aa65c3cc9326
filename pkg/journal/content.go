// Package journal holds the travel journal content model: one ContentItem per
// trip day, keyed by Day, and the immutable AllContent snapshot the rest of
// the application reads from.
package journal

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrNoContent is returned when no ContentItem exists for a requested day.
var ErrNoContent = errors.New("no content for day")

// ContentItem is one journal entry as published by the content source.
type ContentItem struct {
	ID      int    `json:"ID"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Date    string `json:"date"`
	Fields  Fields `json:"fields"`
}

// Fields carries the structured trip data attached to an entry.
type Fields struct {
	Date              string            `json:"date,omitempty"`
	DayNumber         Day               `json:"day_number"`
	Locations         Locations         `json:"locations"`
	MilesAndElevation MilesAndElevation `json:"miles_and_elevation"`
	Weather           string            `json:"weather"`
}

// Locations names where a day started and ended. Single marks days spent in
// one place, in which case only Start is meaningful.
type Locations struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Single bool   `json:"single"`
}

// MilesAndElevation holds the day's stats. Values are free-form strings as
// entered in the source CMS.
type MilesAndElevation struct {
	ElevationGain string `json:"elevation_gain"`
	ElevationLoss string `json:"elevation_loss"`
	Flats         string `json:"flats"`
	Miles         string `json:"miles"`
	RestDay       bool   `json:"rest_day"`
}

// Day returns the entry's day number.
func (c ContentItem) Day() Day {
	return c.Fields.DayNumber
}

// Route returns the navigation label for the entry's locations.
func (l Locations) Route() string {
	if l.Single || l.End == "" {
		return l.Start
	}
	return l.Start + " to " + l.End
}

// Headings splits an entry title into a main heading and a subheading. Titles
// use an en dash (often HTML-encoded) as separator, e.g.
// "Day 3 &#8211; Moab to Green River". Unless it is a rest day the
// subheading is further split into its "from" and "to" parts.
type Headings struct {
	Main string `json:"main"`
	Sub  string `json:"sub,omitempty"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// HasRoute reports whether the subheading was split into from/to parts.
func (h Headings) HasRoute() bool {
	return h.From != "" && h.To != ""
}

// ParseHeadings builds Headings from a raw title.
func ParseHeadings(title string, restDay bool) Headings {
	normalized := strings.ReplaceAll(title, "&#8211;", "–")
	parts := strings.SplitN(normalized, "–", 2)
	h := Headings{Main: strings.TrimSpace(parts[0])}
	if len(parts) < 2 {
		return h
	}
	h.Sub = strings.TrimSpace(parts[1])
	if restDay {
		return h
	}
	if from, to, ok := strings.Cut(h.Sub, " to "); ok {
		h.From = strings.TrimSpace(from)
		h.To = strings.TrimSpace(to)
	}
	return h
}

// Stats is the display form of MilesAndElevation with metric conversions.
type Stats struct {
	Miles           string `json:"miles"`
	Kilometers      int    `json:"kilometers"`
	ElevationGainFt string `json:"elevation_gain_ft"`
	ElevationGainM  int    `json:"elevation_gain_m"`
	ElevationLossFt string `json:"elevation_loss_ft"`
	ElevationLossM  int    `json:"elevation_loss_m"`
	Flats           string `json:"flats"`
	RestDay         bool   `json:"rest_day"`
}

const (
	kmPerMile   = 1.609344
	metersPerFt = 0.3048
)

// Stats converts the raw stats into their display form. Unparseable numbers
// convert to zero and an empty flat-tire count reads as "0".
func (m MilesAndElevation) Stats() Stats {
	flats := strings.TrimSpace(m.Flats)
	if flats == "" {
		flats = "0"
	}
	return Stats{
		Miles:           m.Miles,
		Kilometers:      int(math.Floor(parseFloat(m.Miles) * kmPerMile)),
		ElevationGainFt: m.ElevationGain,
		ElevationGainM:  int(math.Floor(parseFloat(m.ElevationGain) * metersPerFt)),
		ElevationLossFt: m.ElevationLoss,
		ElevationLossM:  int(math.Floor(parseFloat(m.ElevationLoss) * metersPerFt)),
		Flats:           flats,
		RestDay:         m.RestDay,
	}
}

func parseFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// WeatherEmoji picks an emoji for a free-form weather description. The first
// matching keyword wins; unknown weather yields "".
func WeatherEmoji(weather string) string {
	w := strings.ToLower(weather)
	switch {
	case strings.Contains(w, "sunny"):
		return "🌞"
	case strings.Contains(w, "hot"):
		return "🥵"
	case strings.Contains(w, "perfect"):
		return "👌"
	case strings.Contains(w, "storm"):
		return "⛈️"
	case strings.Contains(w, "cloudy"):
		return "☁️"
	}
	return ""
}
