package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rubiojr/triplog/pkg/config"
	"github.com/rubiojr/triplog/pkg/journal"
	"github.com/rubiojr/triplog/pkg/source"
	"github.com/rubiojr/triplog/pkg/storage"
	"github.com/rubiojr/triplog/pkg/track"
)

const testContent = `{
  "1": {"ID": 11, "title": "Day 1 &#8211; Denver to Fruita", "content": "<p>Left Denver early.</p>", "date": "2023-06-01",
        "fields": {"day_number": "1", "locations": {"start": "Denver", "end": "Fruita"}, "weather": "sunny",
                   "miles_and_elevation": {"miles": "52.3"}}},
  "2": {"ID": 12, "title": "Day 2 &#8211; Fruita to Moab", "content": "<p>Desert heat in Moab.</p>", "date": "2023-06-02",
        "fields": {"day_number": 2, "locations": {"start": "Fruita", "end": "Moab"}, "weather": "hot",
                   "miles_and_elevation": {"rest_day": true}}}
}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// writeConfig sets up a storage and data dir plus a config pointing at them.
func writeConfig(t *testing.T, extra string) (string, string) {
	t.Helper()
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	writeFile(t, filepath.Join(dataDir, "content.json"), testContent)

	cfgPath := filepath.Join(root, "config.toml")
	cfg := "storage_dir = \"" + filepath.Join(root, "storage") + "\"\n" +
		"data_dir = \"" + dataDir + "\"\n" + extra
	writeFile(t, cfgPath, cfg)
	return cfgPath, dataDir
}

func TestFormatEntry(t *testing.T) {
	content, err := journal.DecodeAllContent([]byte(testContent))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		day      journal.Day
		contains []string
	}{
		{1, []string{"Day 1", "Denver to Fruita", "2023-06-01", "52.3 mi", "Sunny 🌞"}},
		{2, []string{"Day 2", "Fruita to Moab", "Rest Day", "Hot 🥵"}},
	}
	for _, tt := range tests {
		item, err := content.Get(tt.day)
		if err != nil {
			t.Fatal(err)
		}
		line := formatEntry(item)
		for _, s := range tt.contains {
			if !strings.Contains(line, s) {
				t.Errorf("day %d: %q missing %q", tt.day, line, s)
			}
		}
	}
}

func TestFormatEntryFallsBackToTitle(t *testing.T) {
	item := journal.ContentItem{Title: "Day 7 &#8211; Somewhere"}
	item.Fields.DayNumber = 7
	if line := formatEntry(item); !strings.Contains(line, "Day 7") {
		t.Errorf("formatEntry() = %q", line)
	}
}

func TestFormatSegment(t *testing.T) {
	seg := track.SegmentAndMarker{
		Day: 1,
		Geometry: track.Geometry{
			Name:         "Denver to Fruita",
			Coordinates:  [][2]float64{{-105, 39.7}, {-108.7, 39.1}},
			LengthMeters: 1609.344,
		},
		Start: &track.Marker{Kind: track.MarkerStart},
	}
	line := formatSegment(seg)
	for _, s := range []string{"Day 1", "Denver to Fruita", "1.00 mi", "2 points", "trip start"} {
		if !strings.Contains(line, s) {
			t.Errorf("%q missing %q", line, s)
		}
	}
}

func TestImportSource(t *testing.T) {
	cfg, err := config.Parse([]byte(`data_dir = "` + t.TempDir() + `"`))
	if err != nil {
		t.Fatal(err)
	}

	src, err := importSource(cfg, "https://journal.example.com")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(*source.HTTPSource); !ok {
		t.Errorf("URL should import over HTTP, got %T", src)
	}

	src, err = importSource(cfg, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(*source.DirSource); !ok {
		t.Errorf("path should import from a directory, got %T", src)
	}

	cfg.Source.Type = config.SourceSQLite
	if _, err := importSource(cfg, ""); err == nil {
		t.Error("importing the index into itself should fail")
	}
}

func TestImportEntries(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "content.json"), testContent)
	src, err := source.NewDirSource(dir)
	if err != nil {
		t.Fatal(err)
	}

	st, err := storage.Open(filepath.Join(t.TempDir(), "triplog.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	stats, err := importEntries(ctx, src, st)
	if err != nil {
		t.Fatalf("importEntries() error = %v", err)
	}
	if stats.Entries != 2 || stats.FirstDay != 1 || stats.LastDay != 2 || stats.LastImport.IsZero() {
		t.Errorf("unexpected stats: %+v", stats)
	}

	days, err := st.SearchDays(ctx, "moab", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 1 || days[0] != 2 {
		t.Errorf("SearchDays(moab) = %v, want [2]", days)
	}
}

func TestImportEntriesEmpty(t *testing.T) {
	src, err := source.NewDirSource(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	st, err := storage.Open(filepath.Join(t.TempDir(), "triplog.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	if _, err := importEntries(context.Background(), src, st); err == nil {
		t.Error("expected an error for a journal without entries")
	}
}

func TestOpenJournalFTS(t *testing.T) {
	ctx := context.Background()
	cfgPath, _ := writeConfig(t, "[search]\nengine = \"fts\"\n")

	env, err := openJournal(cfgPath)
	if err != nil {
		t.Fatalf("openJournal() error = %v", err)
	}
	defer env.Close()

	if env.index == nil || !env.ownIndex {
		t.Fatal("fts over a directory source should open its own index")
	}

	items := source.Load(ctx, env.src).Content.Items()
	if err := env.indexEntries(ctx, items); err != nil {
		t.Fatal(err)
	}
	res := env.filter().Apply(ctx, "desert", items)
	if len(res.Items) != 1 || res.Items[0].Day() != 2 {
		t.Errorf("fts search = %+v", res.Items)
	}
}

func TestOpenJournalFuzzy(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")

	env, err := openJournal(cfgPath)
	if err != nil {
		t.Fatalf("openJournal() error = %v", err)
	}
	defer env.Close()

	if env.index != nil {
		t.Error("fuzzy search should not open an index")
	}
	res := env.filter().Apply(context.Background(), "fruita", source.Load(context.Background(), env.src).Content.Items())
	if len(res.Items) != 2 {
		t.Errorf("fuzzy search for fruita = %d entries, want 2", len(res.Items))
	}
}

func TestCommandsRun(t *testing.T) {
	ctx := context.Background()
	cfgPath, dataDir := writeConfig(t, "")
	writeFile(t, filepath.Join(dataDir, "gpx", "1.gpx"), `<?xml version="1.0"?><gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1"><trk><name>ride</name><trkseg>
<trkpt lat="39.7" lon="-105.0"></trkpt><trkpt lat="39.1" lon="-108.7"></trkpt>
</trkseg></trk></gpx>`)

	if err := listDays(ctx, cfgPath, 1, 1); err != nil {
		t.Errorf("listDays() error = %v", err)
	}
	if err := listTracks(ctx, cfgPath); err != nil {
		t.Errorf("listTracks() error = %v", err)
	}
	if err := searchJournal(ctx, cfgPath, "moab", 5); err != nil {
		t.Errorf("searchJournal() error = %v", err)
	}
	if err := runImport(ctx, cfgPath, ""); err != nil {
		t.Errorf("runImport() error = %v", err)
	}
}

func TestInitConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "triplog", "config.toml")

	if err := initConfig(path, false); err != nil {
		t.Fatalf("initConfig() error = %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Source.Type != config.SourceDir {
		t.Errorf("source type = %s", cfg.Source.Type)
	}
	if _, err := os.Stat(cfg.DataDir); err != nil {
		t.Errorf("data dir not created: %v", err)
	}

	if err := initConfig(path, false); err == nil {
		t.Error("initConfig should not overwrite without force")
	}
	if err := initConfig(path, true); err != nil {
		t.Errorf("initConfig(force) error = %v", err)
	}
}
