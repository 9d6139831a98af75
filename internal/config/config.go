// Package config loads and validates the jlawgrep client configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/srndpty/j-law-grep/internal/api"
)

// Config is the complete client configuration.
type Config struct {
	// Endpoint is the search backend base URL.
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds a single search round trip.
	Timeout time.Duration `yaml:"timeout"`

	// PageSize is the number of hits requested per page (1-100).
	PageSize int `yaml:"page_size"`

	// LiveSearch resubmits automatically when mode or a filter changes.
	// Off by default: edits are staged until the next explicit submit.
	LiveSearch bool `yaml:"live_search"`

	// Defaults seed the interaction state of a new session.
	Defaults DefaultsConfig `yaml:"defaults"`

	History HistoryConfig `yaml:"history"`
	Cache   CacheConfig   `yaml:"cache"`
	Log     LogConfig     `yaml:"log"`
}

// DefaultsConfig seeds the first search of a session.
type DefaultsConfig struct {
	Query string `yaml:"query"`
	Mode  string `yaml:"mode"`
	Law   string `yaml:"law"`
	Year  string `yaml:"year"`
}

// HistoryConfig configures the recent-query history.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	// Max is the number of entries kept on disk.
	Max int `yaml:"max"`
}

// CacheConfig configures the in-memory response cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	// Size is the number of responses kept.
	Size int `yaml:"size"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// New returns a config populated with defaults. The default query and
// filter mirror the search screen's initial state so a fresh session
// shows results immediately.
func New() *Config {
	return &Config{
		Endpoint: "http://localhost:8000",
		Timeout:  api.DefaultTimeout,
		PageSize: api.DefaultSize,
		Defaults: DefaultsConfig{
			Query: "民法 709条",
			Mode:  string(api.ModeLiteral),
			Law:   "民法",
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    defaultHistoryPath(),
			Max:     200,
		},
		Cache: CacheConfig{
			Size: 64,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Path returns the user configuration file path, following XDG:
//   - $XDG_CONFIG_HOME/jlawgrep/client.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/jlawgrep/client.yaml (default)
func Path() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "jlawgrep", "client.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "jlawgrep", "client.yaml")
	}
	return filepath.Join(home, ".config", "jlawgrep", "client.yaml")
}

// Dir returns the directory containing the user configuration.
func Dir() string {
	return filepath.Dir(Path())
}

func defaultHistoryPath() string {
	return filepath.Join(Dir(), "history.jsonl")
}

// Load builds the effective configuration in order of increasing
// precedence:
//  1. Hardcoded defaults
//  2. Config file (explicit path, or the user config if path is empty)
//  3. Environment variables (JLAWGREP_*)
func Load(path string) (*Config, error) {
	cfg := New()

	if path == "" {
		path = Path()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// fileConfig mirrors Config for YAML parsing. Booleans are pointers so
// that a key the file omits is distinguishable from an explicit false and
// leaves the default alone.
type fileConfig struct {
	Endpoint   string         `yaml:"endpoint"`
	Timeout    time.Duration  `yaml:"timeout"`
	PageSize   int            `yaml:"page_size"`
	LiveSearch *bool          `yaml:"live_search"`
	Defaults   DefaultsConfig `yaml:"defaults"`
	History    struct {
		Enabled *bool  `yaml:"enabled"`
		Path    string `yaml:"path"`
		Max     int    `yaml:"max"`
	} `yaml:"history"`
	Cache struct {
		Enabled *bool `yaml:"enabled"`
		Size    int   `yaml:"size"`
	} `yaml:"cache"`
	Log LogConfig `yaml:"log"`
}

// loadYAML merges configuration from a YAML file. A missing file is fine;
// defaults apply.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed fileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges values the file actually set into c.
func (c *Config) mergeWith(other *fileConfig) {
	if other.Endpoint != "" {
		c.Endpoint = other.Endpoint
	}
	if other.Timeout != 0 {
		c.Timeout = other.Timeout
	}
	if other.PageSize != 0 {
		c.PageSize = other.PageSize
	}
	if other.LiveSearch != nil {
		c.LiveSearch = *other.LiveSearch
	}

	if other.Defaults.Query != "" {
		c.Defaults.Query = other.Defaults.Query
	}
	if other.Defaults.Mode != "" {
		c.Defaults.Mode = other.Defaults.Mode
	}
	if other.Defaults.Law != "" {
		c.Defaults.Law = other.Defaults.Law
	}
	if other.Defaults.Year != "" {
		c.Defaults.Year = other.Defaults.Year
	}

	if other.History.Enabled != nil {
		c.History.Enabled = *other.History.Enabled
	}
	if other.History.Path != "" {
		c.History.Path = other.History.Path
	}
	if other.History.Max != 0 {
		c.History.Max = other.History.Max
	}

	if other.Cache.Enabled != nil {
		c.Cache.Enabled = *other.Cache.Enabled
	}
	if other.Cache.Size != 0 {
		c.Cache.Size = other.Cache.Size
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.File != "" {
		c.Log.File = other.Log.File
	}
}

// applyEnvOverrides applies JLAWGREP_* environment variables.
// Env vars have the highest precedence.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("JLAWGREP_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("JLAWGREP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
	if v := os.Getenv("JLAWGREP_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.PageSize = n
		}
	}
	if v := os.Getenv("JLAWGREP_LIVE_SEARCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.LiveSearch = b
		}
	}
	if v := os.Getenv("JLAWGREP_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks the final configuration.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.PageSize < api.MinSize || c.PageSize > api.MaxSize {
		return fmt.Errorf("page_size must be between %d and %d, got %d", api.MinSize, api.MaxSize, c.PageSize)
	}
	if !api.Mode(c.Defaults.Mode).Valid() {
		return fmt.Errorf("defaults.mode must be literal or regex, got %q", c.Defaults.Mode)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache.size must not be negative, got %d", c.Cache.Size)
	}
	return nil
}

// Save writes the configuration to the given path, creating parent
// directories as needed. An empty path targets the user config.
func (c *Config) Save(path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}
