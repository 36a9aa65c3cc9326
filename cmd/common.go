package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rubiojr/triplog/pkg/config"
	"github.com/rubiojr/triplog/pkg/journal"
	"github.com/rubiojr/triplog/pkg/search"
	"github.com/rubiojr/triplog/pkg/source"
	"github.com/rubiojr/triplog/pkg/storage"
)

// journalEnv is what most commands need: the config, an open source and,
// when full text search is on, the index.
type journalEnv struct {
	cfg   *config.Config
	src   source.Source
	index *storage.Storage
	// ownIndex is set when index was opened here rather than borrowed from
	// the SQLite source, so it must be kept in sync and closed.
	ownIndex bool
}

func openJournal(configPath string) (*journalEnv, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Source.Type == config.SourceSQLite || cfg.Search.Engine == config.EngineFTS {
		if err := os.MkdirAll(cfg.StorageDir, 0755); err != nil {
			return nil, fmt.Errorf("creating storage directory: %w", err)
		}
	}

	src, err := source.New(cfg)
	if err != nil {
		return nil, err
	}
	env := &journalEnv{cfg: cfg, src: src}

	if cfg.Search.Engine == config.EngineFTS {
		if sq, ok := src.(*source.SQLiteSource); ok {
			env.index = sq.Storage()
		} else {
			index, err := storage.Open(cfg.DBPath())
			if err != nil {
				src.Close()
				return nil, fmt.Errorf("opening search index: %w", err)
			}
			env.index = index
			env.ownIndex = true
		}
	}
	return env, nil
}

// filter builds the search filter for the configured engine.
func (e *journalEnv) filter() *search.Filter {
	var index search.DaySearcher
	if e.index != nil {
		index = e.index
	}
	return search.NewFilter(search.NewMatcher(e.cfg.Search.Engine, index))
}

// indexEntries refreshes an index this env owns with the loaded entries, so
// full text search works over any source. Borrowed indexes are left alone.
func (e *journalEnv) indexEntries(ctx context.Context, items []journal.ContentItem) error {
	if !e.ownIndex || len(items) == 0 {
		return nil
	}
	return e.index.StoreEntries(ctx, items)
}

func (e *journalEnv) Close() {
	if e.ownIndex {
		if err := e.index.Close(); err != nil {
			fmt.Printf("Warning: failed to close search index: %v\n", err)
		}
	}
	if err := e.src.Close(); err != nil {
		fmt.Printf("Warning: failed to close source: %v\n", err)
	}
}
