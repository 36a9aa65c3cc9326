// Package source loads journal content and track listings from the configured
// backend: a remote HTTP server, a local data directory or the SQLite index.
package source

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/rubiojr/triplog/pkg/config"
	"github.com/rubiojr/triplog/pkg/journal"
	"github.com/rubiojr/triplog/pkg/log"
)

var logger = log.ForService("source")

// Source supplies the journal. Track resources are opaque identifiers whose
// trailing path segment names the day; OpenTrack returns the GPX behind one.
type Source interface {
	Content(ctx context.Context) (*journal.AllContent, error)
	Tracks(ctx context.Context) ([]string, error)
	DayContent(ctx context.Context, day journal.Day) (journal.ContentItem, error)
	OpenTrack(ctx context.Context, resource string) (io.ReadCloser, error)
	Close() error
}

// Factory builds a Source from configuration.
type Factory func(cfg *config.Config) (Source, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register makes a source type available to New. Sources call it from init.
func Register(kind string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("source type %s already registered", kind))
	}
	factories[kind] = factory
}

// Types lists the registered source types.
func Types() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]string, 0, len(factories))
	for kind := range factories {
		types = append(types, kind)
	}
	sort.Strings(types)
	return types
}

// New builds the source named by cfg.Source.Type.
func New(cfg *config.Config) (Source, error) {
	registryMu.RLock()
	factory, ok := factories[cfg.Source.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("source type %q not registered", cfg.Source.Type)
	}
	src, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating %s source: %w", cfg.Source.Type, err)
	}
	return src, nil
}

// Snapshot is what a journal page needs from a source.
type Snapshot struct {
	Content *journal.AllContent
	Tracks  []string
}

// Load fetches content and tracks. Either half failing degrades to an empty
// result and a warning, never an error, so the journal renders with whatever
// did load.
func Load(ctx context.Context, src Source) Snapshot {
	snap := Snapshot{}

	content, err := src.Content(ctx)
	if err != nil {
		logger.Warnf("loading content: %v", err)
		content = nil
	}
	if content == nil {
		content = journal.NewAllContent(nil)
	}
	snap.Content = content

	tracks, err := src.Tracks(ctx)
	if err != nil {
		logger.Warnf("loading tracks: %v", err)
		tracks = nil
	}
	snap.Tracks = tracks

	logger.Debugf("loaded %d entries and %d tracks", content.Len(), len(tracks))
	return snap
}
