package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`storage_dir = "/tmp/triplog"`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.DataDir != "/tmp/triplog/data" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Source.Type != SourceDir {
		t.Errorf("Source.Type = %q, want %q", cfg.Source.Type, SourceDir)
	}
	if cfg.Source.Timeout.Duration != 10*time.Second {
		t.Errorf("Source.Timeout = %v", cfg.Source.Timeout)
	}
	if cfg.Journal.DefaultDay != 1 || cfg.Journal.MaxPageButtons != 999 {
		t.Errorf("journal defaults = %+v", cfg.Journal)
	}
	if cfg.Journal.WidePageSize != 20 || cfg.Journal.NarrowPageSize != 7 {
		t.Errorf("page sizes = %d/%d", cfg.Journal.WidePageSize, cfg.Journal.NarrowPageSize)
	}
	if !cfg.Journal.Sanitize {
		t.Error("Sanitize should default to true")
	}
	if cfg.Addr() != "localhost:8080" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if cfg.DBPath() != filepath.Join("/tmp/triplog", "triplog.db") {
		t.Errorf("DBPath() = %q", cfg.DBPath())
	}
}

func TestParseOverrides(t *testing.T) {
	data := `
storage_dir = "/srv/triplog"
data_dir = "/srv/journal"

[source]
type = "http"
url = "https://journal.example.com"
timeout = "3s"

[journal]
wide_page_size = 12
sanitize = false

[search]
engine = "fts"
`
	cfg, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.DataDir != "/srv/journal" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Source.Timeout.Duration != 3*time.Second {
		t.Errorf("Timeout = %v", cfg.Source.Timeout)
	}
	if cfg.Journal.WidePageSize != 12 {
		t.Errorf("WidePageSize = %d", cfg.Journal.WidePageSize)
	}
	if cfg.Journal.Sanitize {
		t.Error("Sanitize should be false")
	}
	if cfg.Search.Engine != EngineFTS {
		t.Errorf("Engine = %q", cfg.Search.Engine)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"http without url", "[source]\ntype = \"http\"", "requires source.url"},
		{"unknown source", "[source]\ntype = \"ftp\"", "unknown source type"},
		{"unknown engine", "[search]\nengine = \"regex\"", "unknown search engine"},
		{"bad duration", "[source]\ntimeout = \"soon\"", "unmarshaling config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestTemplateConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	cfg := &Config{StorageDir: filepath.Join(dir, "store")}
	cfg.applyDefaults()
	if err := cfg.SaveTemplateConfig(path); err != nil {
		t.Fatalf("SaveTemplateConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.StorageDir != cfg.StorageDir {
		t.Errorf("StorageDir = %q, want %q", loaded.StorageDir, cfg.StorageDir)
	}
	if loaded.DataDir != cfg.DataDir {
		t.Errorf("DataDir = %q, want %q", loaded.DataDir, cfg.DataDir)
	}
	if loaded.Map.ActiveColor != "red" || loaded.Map.DefaultColor != "blue" {
		t.Errorf("map colors = %+v", loaded.Map)
	}
}

func TestSaveConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := &Config{StorageDir: dir}
	cfg.applyDefaults()
	cfg.Server.Port = "9999"
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if loaded.Server.Port != "9999" {
		t.Errorf("Port = %q", loaded.Server.Port)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !strings.HasSuffix(cfg.StorageDir, "triplog") {
		t.Errorf("StorageDir = %q", cfg.StorageDir)
	}
}
