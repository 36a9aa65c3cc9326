// Package search narrows the journal to the entries matching a query.
//
// Matching itself is delegated: FuzzyMatcher uses github.com/sahilm/fuzzy over
// entry titles and content words, FTSMatcher uses the SQLite FTS5 index built
// by `triplog import`. Filter wraps either one with the journal's rules: a
// blank query restores the full list and a failing matcher yields no results
// instead of an error.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rubiojr/triplog/pkg/config"
	"github.com/rubiojr/triplog/pkg/journal"
	"github.com/rubiojr/triplog/pkg/log"
	"github.com/sahilm/fuzzy"
)

var logger = log.ForService("search")

// Matcher returns the items matching query, best first.
type Matcher interface {
	Match(ctx context.Context, query string, items []journal.ContentItem) ([]journal.ContentItem, error)
}

var (
	_ Matcher = FuzzyMatcher{}
	_ Matcher = (*FTSMatcher)(nil)
)

// FuzzyMatcher matches every query term as a fuzzy subsequence of the title
// or of a single word of the content. Entries with more terms found in the
// title rank first, then by fuzzy score; ties keep their input order.
type FuzzyMatcher struct{}

type scored struct {
	item      journal.ContentItem
	titleHits int
	score     int
}

func (FuzzyMatcher) Match(ctx context.Context, query string, items []journal.ContentItem) ([]journal.ContentItem, error) {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return nil, nil
	}

	var results []scored
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s, ok := scoreItem(terms, item); ok {
			results = append(results, s)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].titleHits != results[j].titleHits {
			return results[i].titleHits > results[j].titleHits
		}
		return results[i].score > results[j].score
	})

	matched := make([]journal.ContentItem, len(results))
	for i, r := range results {
		matched[i] = r.item
	}
	return matched, nil
}

func scoreItem(terms []string, item journal.ContentItem) (scored, bool) {
	s := scored{item: item}
	title := []string{journal.PlainText(item.Title)}
	var words []string

	for _, term := range terms {
		if m := fuzzy.Find(term, title); len(m) > 0 {
			s.titleHits++
			s.score += m[0].Score
			continue
		}
		if words == nil {
			words = item.Words()
		}
		// Find sorts by score, so the first match is the best word.
		m := fuzzy.Find(term, words)
		if len(m) == 0 {
			return s, false
		}
		s.score += m[0].Score
	}
	return s, true
}

// DaySearcher looks up matching days in a full text index.
type DaySearcher interface {
	SearchDays(ctx context.Context, query string, limit int) ([]journal.Day, error)
}

// FTSMatcher ranks entries by the SQLite full text index. Days the index
// returns that are not among the candidate items are dropped.
type FTSMatcher struct {
	index DaySearcher
}

func NewFTSMatcher(index DaySearcher) *FTSMatcher {
	return &FTSMatcher{index: index}
}

func (m *FTSMatcher) Match(ctx context.Context, query string, items []journal.ContentItem) ([]journal.ContentItem, error) {
	days, err := m.index.SearchDays(ctx, query, 0)
	if err != nil {
		return nil, fmt.Errorf("full text search: %w", err)
	}

	byDay := make(map[journal.Day]journal.ContentItem, len(items))
	for _, item := range items {
		byDay[item.Day()] = item
	}

	matched := make([]journal.ContentItem, 0, len(days))
	for _, day := range days {
		if item, ok := byDay[day]; ok {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// NewMatcher returns the matcher for a configured engine. The fts engine
// needs an index; without one it falls back to fuzzy matching.
func NewMatcher(engine string, index DaySearcher) Matcher {
	if engine == config.EngineFTS {
		if index != nil {
			return NewFTSMatcher(index)
		}
		logger.Warnf("fts search needs the sqlite index, using fuzzy matching")
	}
	return FuzzyMatcher{}
}

// Result is the list the navigation should show for a query.
type Result struct {
	Query string
	Items []journal.ContentItem
	// Filtered is set when a non-blank query was applied. Navigation resets
	// to the first page for filtered results.
	Filtered bool
}

// Filter applies a Matcher with the journal's blank-query and failure rules.
type Filter struct {
	matcher Matcher
}

func NewFilter(matcher Matcher) *Filter {
	if matcher == nil {
		matcher = FuzzyMatcher{}
	}
	return &Filter{matcher: matcher}
}

// Apply narrows items to those matching query. A blank query returns items
// unchanged. A matcher error is logged and yields an empty result.
func (f *Filter) Apply(ctx context.Context, query string, items []journal.ContentItem) Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{Items: items}
	}

	matched, err := f.matcher.Match(ctx, query, items)
	if err != nil {
		logger.Warnf("search for %q failed: %v", query, err)
		matched = nil
	}
	if matched == nil {
		matched = []journal.ContentItem{}
	}
	return Result{Query: query, Items: matched, Filtered: true}
}
