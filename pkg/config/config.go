package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

// Source types understood by pkg/source.
const (
	SourceDir    = "dir"
	SourceHTTP   = "http"
	SourceSQLite = "sqlite"
)

// Search engines understood by pkg/search.
const (
	EngineFuzzy = "fuzzy"
	EngineFTS   = "fts"
)

type Config struct {
	StorageDir string        `toml:"storage_dir"`
	DataDir    string        `toml:"data_dir"`
	Source     SourceConfig  `toml:"source"`
	Server     ServerConfig  `toml:"server"`
	Journal    JournalConfig `toml:"journal"`
	Search     SearchConfig  `toml:"search"`
	Map        MapConfig     `toml:"map"`
}

type SourceConfig struct {
	Type    string   `toml:"type"`
	URL     string   `toml:"url,omitempty"`
	Timeout Duration `toml:"timeout"`
}

type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// JournalConfig controls navigation and content presentation.
type JournalConfig struct {
	DefaultDay     int `toml:"default_day"`
	MaxPageButtons int `toml:"max_page_buttons"`

	// WidePageSize entries are listed per page on viewports at least
	// WideBreakpoint pixels wide, NarrowPageSize otherwise.
	WidePageSize   int `toml:"wide_page_size"`
	NarrowPageSize int `toml:"narrow_page_size"`
	WideBreakpoint int `toml:"wide_breakpoint"`

	// Below PhoneBreakpoint the trip log starts collapsed.
	PhoneBreakpoint int  `toml:"phone_breakpoint"`
	Sanitize        bool `toml:"sanitize"`
}

type SearchConfig struct {
	Engine string `toml:"engine"`
}

type MapConfig struct {
	ActiveColor  string `toml:"active_color"`
	DefaultColor string `toml:"default_color"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func GetDefaultConfig() (*Config, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return nil, fmt.Errorf("getting default storage directory: %w", err)
	}
	cfg := &Config{StorageDir: storageDir, Journal: JournalConfig{Sanitize: true}}
	cfg.applyDefaults()
	return cfg, nil
}

func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if cfg.StorageDir == "" {
		storageDir, err := GetDefaultStorageDir()
		if err != nil {
			return nil, fmt.Errorf("getting default storage directory: %w", err)
		}
		cfg.StorageDir = storageDir
		if cfg.DataDir == "" {
			cfg.DataDir = filepath.Join(storageDir, "data")
		}
	}

	return cfg, nil
}

// Parse decodes TOML configuration and fills in defaults. Sanitize defaults
// to true unless the file sets it explicitly.
func Parse(data []byte) (*Config, error) {
	cfg := Config{Journal: JournalConfig{Sanitize: true}}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" && c.StorageDir != "" {
		c.DataDir = filepath.Join(c.StorageDir, "data")
	}
	if c.Source.Type == "" {
		c.Source.Type = SourceDir
	}
	if c.Source.Timeout.Duration == 0 {
		c.Source.Timeout = Duration{10 * time.Second}
	}
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Journal.DefaultDay <= 0 {
		c.Journal.DefaultDay = 1
	}
	if c.Journal.MaxPageButtons <= 0 {
		c.Journal.MaxPageButtons = 999
	}
	if c.Journal.WidePageSize <= 0 {
		c.Journal.WidePageSize = 20
	}
	if c.Journal.NarrowPageSize <= 0 {
		c.Journal.NarrowPageSize = 7
	}
	if c.Journal.WideBreakpoint <= 0 {
		c.Journal.WideBreakpoint = 900
	}
	if c.Journal.PhoneBreakpoint <= 0 {
		c.Journal.PhoneBreakpoint = 600
	}
	if c.Search.Engine == "" {
		c.Search.Engine = EngineFuzzy
	}
	if c.Map.ActiveColor == "" {
		c.Map.ActiveColor = "red"
	}
	if c.Map.DefaultColor == "" {
		c.Map.DefaultColor = "blue"
	}
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.Source.Type {
	case SourceDir, SourceSQLite:
	case SourceHTTP:
		if c.Source.URL == "" {
			return fmt.Errorf("source type %q requires source.url", SourceHTTP)
		}
	default:
		return fmt.Errorf("unknown source type %q", c.Source.Type)
	}
	switch c.Search.Engine {
	case EngineFuzzy, EngineFTS:
	default:
		return fmt.Errorf("unknown search engine %q", c.Search.Engine)
	}
	return nil
}

// Addr returns the host:port the web server listens on.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// DBPath returns the SQLite index location.
func (c *Config) DBPath() string {
	return filepath.Join(c.StorageDir, "triplog.db")
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return os.WriteFile(configPath, []byte(c.generateConfigTemplate()), 0644)
}

func (c *Config) generateConfigTemplate() string {
	template := strings.ReplaceAll(configTemplate, "/home/user/.local/share/triplog/data", c.DataDir)
	return strings.ReplaceAll(template, "/home/user/.local/share/triplog", c.StorageDir)
}

// GetDefaultStorageDir returns the default storage directory for the index
func GetDefaultStorageDir() (string, error) {
	// Use XDG_DATA_HOME if set, otherwise use ~/.local/share
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	dir := filepath.Join(dataDir, "triplog")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", dir, err)
	}

	return dir, nil
}

// GetConfigDir returns the configuration directory for triplog
func GetConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, "triplog")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	return dir, nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
