package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rubiojr/triplog/pkg/config"
	"github.com/rubiojr/triplog/pkg/journal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

func init() {
	Register(config.SourceDir, func(cfg *config.Config) (Source, error) {
		return NewDirSource(cfg.DataDir)
	})
}

// Track resources served by the web server for a data directory live under
// this prefix.
const TrackPrefix = "/assets/gpx/"

var _ Source = (*DirSource)(nil)

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	// Entries embed raw <figure> markup; sanitizing happens at render time.
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// DirSource reads a local data directory laid out as:
//
//	content.json          day map, as served by /content
//	content/*.md          one entry per file, YAML front matter
//	json/{day}.json       optional per-day {title, content} records
//	gpx/*.gpx             tracks, one per day
//
// content.json wins over content/ when both exist.
type DirSource struct {
	root string
}

func NewDirSource(root string) (*DirSource, error) {
	if root == "" {
		return nil, fmt.Errorf("data directory not configured")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data directory %s is not a directory", root)
	}
	return &DirSource{root: root}, nil
}

// Root returns the data directory.
func (s *DirSource) Root() string {
	return s.root
}

// TrackDir returns the directory holding GPX files.
func (s *DirSource) TrackDir() string {
	return filepath.Join(s.root, "gpx")
}

func (s *DirSource) Content(ctx context.Context) (*journal.AllContent, error) {
	data, err := os.ReadFile(filepath.Join(s.root, "content.json"))
	if err == nil {
		return journal.DecodeAllContent(data)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading content.json: %w", err)
	}

	items, err := s.markdownEntries(ctx)
	if err != nil {
		return nil, err
	}
	return journal.NewAllContentFromList(items), nil
}

func (s *DirSource) markdownEntries(ctx context.Context) ([]journal.ContentItem, error) {
	files, err := filepath.Glob(filepath.Join(s.root, "content", "*.md"))
	if err != nil {
		return nil, fmt.Errorf("listing markdown entries: %w", err)
	}
	sort.Strings(files)

	items := make([]journal.ContentItem, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		item, err := ParseMarkdownEntry(filepath.Base(file), raw)
		if err != nil {
			logger.Warnf("skipping %s: %v", file, err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// frontMatter is the YAML header of a markdown entry.
type frontMatter struct {
	ID        int    `yaml:"id"`
	Title     string `yaml:"title"`
	Date      string `yaml:"date"`
	Day       int    `yaml:"day"`
	Weather   string `yaml:"weather"`
	Locations struct {
		Start  string `yaml:"start"`
		End    string `yaml:"end"`
		Single bool   `yaml:"single"`
	} `yaml:"locations"`
	Stats struct {
		Miles         string `yaml:"miles"`
		ElevationGain string `yaml:"elevation_gain"`
		ElevationLoss string `yaml:"elevation_loss"`
		Flats         string `yaml:"flats"`
		RestDay       bool   `yaml:"rest_day"`
	} `yaml:"miles_and_elevation"`
}

// ParseMarkdownEntry builds an entry from a markdown file with YAML front
// matter. When the front matter has no day, the file name supplies it
// (e.g. "03.md" or "day-3.md").
func ParseMarkdownEntry(name string, raw []byte) (journal.ContentItem, error) {
	var meta frontMatter
	body := bytes.TrimPrefix(raw, []byte("\ufeff"))
	if bytes.HasPrefix(body, []byte("---")) {
		parts := bytes.SplitN(body, []byte("---"), 3)
		if len(parts) < 3 {
			return journal.ContentItem{}, fmt.Errorf("unterminated front matter")
		}
		if err := yaml.Unmarshal(parts[1], &meta); err != nil {
			return journal.ContentItem{}, fmt.Errorf("parsing front matter: %w", err)
		}
		body = parts[2]
	}

	day := journal.Day(meta.Day)
	if !day.Valid() {
		var err error
		day, err = journal.DayFromResource(name)
		if err != nil {
			return journal.ContentItem{}, err
		}
	}

	var rendered bytes.Buffer
	if err := markdownRenderer.Convert(body, &rendered); err != nil {
		return journal.ContentItem{}, fmt.Errorf("rendering markdown: %w", err)
	}

	return journal.ContentItem{
		ID:      meta.ID,
		Title:   meta.Title,
		Content: rendered.String(),
		Date:    meta.Date,
		Fields: journal.Fields{
			Date:      meta.Date,
			DayNumber: day,
			Locations: journal.Locations{
				Start:  meta.Locations.Start,
				End:    meta.Locations.End,
				Single: meta.Locations.Single,
			},
			MilesAndElevation: journal.MilesAndElevation{
				ElevationGain: meta.Stats.ElevationGain,
				ElevationLoss: meta.Stats.ElevationLoss,
				Flats:         meta.Stats.Flats,
				Miles:         meta.Stats.Miles,
				RestDay:       meta.Stats.RestDay,
			},
			Weather: meta.Weather,
		},
	}, nil
}

// Tracks lists gpx/*.gpx as web resources, sorted by name.
func (s *DirSource) Tracks(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.TrackDir())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing tracks: %w", err)
	}

	var tracks []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".gpx") {
			continue
		}
		tracks = append(tracks, TrackPrefix+entry.Name())
	}
	sort.Strings(tracks)
	return tracks, nil
}

// DayContent returns json/{day}.json when present, otherwise the day's entry.
func (s *DirSource) DayContent(ctx context.Context, day journal.Day) (journal.ContentItem, error) {
	data, err := os.ReadFile(filepath.Join(s.root, "json", day.String()+".json"))
	if err == nil {
		var item journal.ContentItem
		if err := json.Unmarshal(data, &item); err != nil {
			return journal.ContentItem{}, fmt.Errorf("decoding day %s: %w", day, err)
		}
		item.Fields.DayNumber = day
		return item, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return journal.ContentItem{}, fmt.Errorf("reading day %s: %w", day, err)
	}

	content, err := s.Content(ctx)
	if err != nil {
		return journal.ContentItem{}, err
	}
	return content.Get(day)
}

// OpenTrack opens the GPX file named by the resource's last path segment.
func (s *DirSource) OpenTrack(ctx context.Context, resource string) (io.ReadCloser, error) {
	name := path.Base(strings.SplitN(resource, "?", 2)[0])
	if name == "." || name == "/" || !strings.HasSuffix(name, ".gpx") {
		return nil, fmt.Errorf("invalid track resource %q", resource)
	}
	f, err := os.Open(filepath.Join(s.TrackDir(), name))
	if err != nil {
		return nil, fmt.Errorf("opening track: %w", err)
	}
	return f, nil
}

func (s *DirSource) Close() error {
	return nil
}
