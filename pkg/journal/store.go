package journal

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/rubiojr/triplog/pkg/log"
)

var logger = log.ForService("journal")

// AllContent is an immutable snapshot of every journal entry, keyed by day.
// It is built once from fetched data and never mutated; reloads produce a new
// snapshot.
type AllContent struct {
	byDay   map[Day]ContentItem
	ordered []ContentItem
}

// NewAllContent builds a snapshot from a day-keyed map. Entries whose
// fields.day_number is missing inherit the map key; entries that disagree
// with their key are stored under the key, which is what the source indexes by.
func NewAllContent(items map[Day]ContentItem) *AllContent {
	byDay := make(map[Day]ContentItem, len(items))
	ordered := make([]ContentItem, 0, len(items))
	for day, item := range items {
		if !day.Valid() {
			continue
		}
		item.Fields.DayNumber = day
		byDay[day] = item
		ordered = append(ordered, item)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Day() < ordered[j].Day()
	})
	return &AllContent{byDay: byDay, ordered: ordered}
}

// NewAllContentFromList builds a snapshot from a list, keying by each item's
// day number. Later duplicates are dropped so keys stay unique.
func NewAllContentFromList(items []ContentItem) *AllContent {
	m := make(map[Day]ContentItem, len(items))
	for _, item := range items {
		if _, exists := m[item.Day()]; exists {
			continue
		}
		m[item.Day()] = item
	}
	return NewAllContent(m)
}

// DecodeAllContent parses the content source's JSON: an object mapping day
// numbers to entries. A JSON array of entries is accepted too. Entries that
// do not decode, or whose key is not a day, are skipped with a warning so one
// bad record never empties the journal.
func DecodeAllContent(data []byte) (*AllContent, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err == nil {
		items := make(map[Day]ContentItem, len(m))
		for key, raw := range m {
			day, err := ParseDay(key)
			if err != nil {
				logger.Warnf("skipping entry %q: %v", key, err)
				continue
			}
			item, err := decodeItem(raw)
			if err != nil {
				logger.Warnf("skipping day %s: %v", day, err)
				continue
			}
			items[day] = item
		}
		return NewAllContent(items), nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decoding content: %w", err)
	}
	items := make([]ContentItem, 0, len(list))
	for i, raw := range list {
		item, err := decodeItem(raw)
		if err != nil {
			logger.Warnf("skipping entry %d: %v", i, err)
			continue
		}
		items = append(items, item)
	}
	return NewAllContentFromList(items), nil
}

func decodeItem(raw json.RawMessage) (ContentItem, error) {
	var item ContentItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return ContentItem{}, fmt.Errorf("decoding entry: %w", err)
	}
	return item, nil
}

// Get returns the entry for day or ErrNoContent.
func (a *AllContent) Get(day Day) (ContentItem, error) {
	if a != nil {
		if item, ok := a.byDay[day]; ok {
			return item, nil
		}
	}
	return ContentItem{}, fmt.Errorf("%w %d", ErrNoContent, day)
}

// Has reports whether an entry exists for day.
func (a *AllContent) Has(day Day) bool {
	if a == nil {
		return false
	}
	_, ok := a.byDay[day]
	return ok
}

// Items returns every entry ordered by ascending day. The slice is a copy.
func (a *AllContent) Items() []ContentItem {
	if a == nil {
		return nil
	}
	out := make([]ContentItem, len(a.ordered))
	copy(out, a.ordered)
	return out
}

// Days returns every day number in ascending order.
func (a *AllContent) Days() []Day {
	if a == nil {
		return nil
	}
	days := make([]Day, len(a.ordered))
	for i, item := range a.ordered {
		days[i] = item.Day()
	}
	return days
}

// Len returns the number of entries.
func (a *AllContent) Len() int {
	if a == nil {
		return 0
	}
	return len(a.ordered)
}

// MarshalJSON writes the snapshot in the content source's day-keyed form.
func (a *AllContent) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a.byDay)
}

// IndexOf returns the position of day within items, or -1.
func IndexOf(items []ContentItem, day Day) int {
	for i, item := range items {
		if item.Day() == day {
			return i
		}
	}
	return -1
}

// Store holds the current AllContent snapshot. Readers always see a complete
// snapshot; Replace swaps it atomically.
type Store struct {
	current atomic.Pointer[AllContent]
}

// NewStore returns a store holding content, or an empty snapshot when nil.
func NewStore(content *AllContent) *Store {
	s := &Store{}
	if content == nil {
		content = NewAllContent(nil)
	}
	s.current.Store(content)
	return s
}

// Snapshot returns the current content.
func (s *Store) Snapshot() *AllContent {
	return s.current.Load()
}

// Replace installs a new snapshot. A nil snapshot is ignored so a failed
// reload never blanks the journal.
func (s *Store) Replace(content *AllContent) {
	if content == nil {
		return
	}
	s.current.Store(content)
}
