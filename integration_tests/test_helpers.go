package integration_tests

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rubiojr/triplog/pkg/config"
)

const testContent = `{
  "1": {"ID": 1, "title": "Day 1 &#8211; Denver to Fruita", "content": "<p>Left Denver early, sunny and windy.</p>", "date": "2023-06-01",
        "fields": {"day_number": 1, "locations": {"start": "Denver", "end": "Fruita"}, "weather": "sunny"}},
  "2": {"ID": 2, "title": "Day 2 &#8211; Fruita to Moab", "content": "<p>Desert heat, DROP TABLE users jokes at camp.</p>", "date": "2023-06-02",
        "fields": {"day_number": 2, "locations": {"start": "Fruita", "end": "Moab"}, "weather": "hot"}},
  "3": {"ID": 3, "title": "Day 3 &#8211; Moab", "content": "<p>Rest and laundry.</p>", "date": "2023-06-03",
        "fields": {"day_number": 3, "locations": {"start": "Moab", "single": true}, "miles_and_elevation": {"rest_day": true}}}
}`

// TrackGPX is a two point track between lat,lon pairs.
func TrackGPX(from, to [2]float64) string {
	return `<?xml version="1.0"?><gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1"><trk><name>ride</name><trkseg>` +
		trkpt(from) + trkpt(to) + `</trkseg></trk></gpx>`
}

func trkpt(p [2]float64) string {
	return `<trkpt lat="` + ftoa(p[0]) + `" lon="` + ftoa(p[1]) + `"></trkpt>`
}

func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// CreateTestJournal lays out a data directory with three days and tracks for
// days 1 and 2.
func CreateTestJournal(t *testing.T, dataDir string) {
	t.Helper()
	WriteFile(t, filepath.Join(dataDir, "content.json"), testContent)
	WriteFile(t, filepath.Join(dataDir, "gpx", "1.gpx"), TrackGPX([2]float64{39.74, -104.99}, [2]float64{39.16, -108.73}))
	WriteFile(t, filepath.Join(dataDir, "gpx", "2.gpx"), TrackGPX([2]float64{39.16, -108.73}, [2]float64{38.57, -109.55}))
}

// CreateTestConfig returns a config serving tempDir/data through the
// directory source.
func CreateTestConfig(t *testing.T, tempDir string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(`
storage_dir = "` + filepath.ToSlash(filepath.Join(tempDir, "storage")) + `"

[source]
type = "dir"
`))
	if err != nil {
		t.Fatalf("parsing test config: %v", err)
	}
	CreateTestJournal(t, cfg.DataDir)
	if err := os.MkdirAll(cfg.StorageDir, 0755); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
