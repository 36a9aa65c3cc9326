package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
)

// ErrInvalidDay is returned when a value cannot be interpreted as a day number.
var ErrInvalidDay = errors.New("invalid day number")

// Day is the canonical day number of a journal entry. Every boundary (URL
// query, resource identifiers, JSON keys) normalizes to it.
type Day int

// String returns the decimal form used in URLs and JSON keys.
func (d Day) String() string {
	return strconv.Itoa(int(d))
}

// Valid reports whether d can identify a journal day.
func (d Day) Valid() bool {
	return d > 0
}

// ParseDay parses a day number from user or wire input. Surrounding spaces
// and a "day-" prefix are accepted, so element ids like "day-3" round-trip.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.ToLower(s), "day-")
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidDay)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	d := Day(n)
	if !d.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDay, n)
	}
	return d, nil
}

// DayFromResource derives the day from the trailing path segment of a track
// resource identifier, e.g. "https://example.com/assets/gpx/5.gpx" or
// "track/5". Query strings and file extensions are ignored.
func DayFromResource(resource string) (Day, error) {
	r := resource
	if i := strings.IndexAny(r, "?#"); i >= 0 {
		r = r[:i]
	}
	r = strings.TrimRight(r, "/")
	base := path.Base(r)
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	d, err := ParseDay(base)
	if err != nil {
		return 0, fmt.Errorf("resource %q: %w", resource, err)
	}
	return d, nil
}

// UnmarshalJSON accepts both JSON numbers and strings. null and "" leave
// the day unset.
func (d *Day) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = 0
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil && strings.TrimSpace(s) == "" {
		*d = 0
		return nil
	} else if err != nil {
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidDay, data)
		}
		s = strconv.Itoa(n)
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON writes the day as a string, matching the content source.
func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalText lets Day be used as a JSON map key.
func (d *Day) UnmarshalText(text []byte) error {
	parsed, err := ParseDay(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalText lets Day be used as a JSON map key.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
