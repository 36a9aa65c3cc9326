package source

import (
	"context"
	"io"

	"github.com/rubiojr/triplog/pkg/config"
	"github.com/rubiojr/triplog/pkg/journal"
	"github.com/rubiojr/triplog/pkg/storage"
)

func init() {
	Register(config.SourceSQLite, func(cfg *config.Config) (Source, error) {
		st, err := storage.Open(cfg.DBPath())
		if err != nil {
			return nil, err
		}
		return NewSQLiteSource(st, cfg.DataDir), nil
	})
}

var _ Source = (*SQLiteSource)(nil)

// SQLiteSource serves entries imported with `triplog import`. Tracks still
// come from the data directory's gpx/ folder.
type SQLiteSource struct {
	store   *storage.Storage
	dataDir string
}

// NewSQLiteSource takes ownership of store; Close closes it.
func NewSQLiteSource(store *storage.Storage, dataDir string) *SQLiteSource {
	return &SQLiteSource{store: store, dataDir: dataDir}
}

// Storage exposes the underlying index, e.g. for full text search.
func (s *SQLiteSource) Storage() *storage.Storage {
	return s.store
}

func (s *SQLiteSource) Content(ctx context.Context) (*journal.AllContent, error) {
	items, err := s.store.Entries(ctx)
	if err != nil {
		return nil, err
	}
	return journal.NewAllContentFromList(items), nil
}

func (s *SQLiteSource) Tracks(ctx context.Context) ([]string, error) {
	dir, err := s.tracks()
	if err != nil {
		return nil, nil
	}
	return dir.Tracks(ctx)
}

func (s *SQLiteSource) DayContent(ctx context.Context, day journal.Day) (journal.ContentItem, error) {
	return s.store.Entry(ctx, day)
}

func (s *SQLiteSource) OpenTrack(ctx context.Context, resource string) (io.ReadCloser, error) {
	dir, err := s.tracks()
	if err != nil {
		return nil, err
	}
	return dir.OpenTrack(ctx, resource)
}

// tracks fails when the data directory does not exist, which just means the
// journal has no tracks.
func (s *SQLiteSource) tracks() (*DirSource, error) {
	return NewDirSource(s.dataDir)
}

func (s *SQLiteSource) Close() error {
	return s.store.Close()
}
