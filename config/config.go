// Package config loads reelscout's settings from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Gaurav-Gosain/reelscout/source"
)

// Config holds application configuration.
type Config struct {
	Source         string        `yaml:"source"`
	GistURL        string        `yaml:"gist_url"`
	BackendURL     string        `yaml:"backend_url"`
	OMDBURL        string        `yaml:"omdb_url"`
	OMDBAPIKey     string        `yaml:"omdb_api_key"`
	DBPath         string        `yaml:"db_path"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	LogLevel       string        `yaml:"log_level"`
	LogFile        string        `yaml:"log_file"`
	WordWrap       int           `yaml:"word_wrap"`
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Source:         source.KindGist,
		GistURL:        source.DefaultGistURL,
		BackendURL:     source.DefaultBackendURL,
		OMDBURL:        source.DefaultOMDBURL,
		DBPath:         defaultDBPath(),
		RequestTimeout: 15 * time.Second,
		LogLevel:       "info",
		WordWrap:       80,
	}
}

func defaultDBPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "reelscout", "reelscout.db")
	}
	return "reelscout.db"
}

// configPaths returns the list of paths to search for a config file.
func configPaths() []string {
	paths := []string{
		".reelscout.yaml",
		".reelscout.yml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "reelscout", "config.yaml"),
			filepath.Join(home, ".config", "reelscout", "config.yml"),
		)
	}
	return paths
}

// Load loads configuration from file or returns defaults.
// Priority: explicit path > env REELSCOUT_CONFIG > search paths > defaults,
// with REELSCOUT_* overrides applied last.
func Load(explicit string) (*Config, error) {
	cfg := DefaultConfig()

	path := explicit
	if path == "" {
		path = os.Getenv("REELSCOUT_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, err
		}
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			if err := cfg.loadFromFile(p); err != nil {
				return nil, err
			}
			break
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("REELSCOUT_SOURCE"); v != "" {
		c.Source = v
	}
	if v := os.Getenv("REELSCOUT_OMDB_API_KEY"); v != "" {
		c.OMDBAPIKey = v
	}
	if v := os.Getenv("REELSCOUT_DB"); v != "" {
		c.DBPath = v
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	kind := strings.ToLower(strings.TrimSpace(c.Source))
	if !slices.Contains([]string{source.KindGist, source.KindBackend, source.KindOMDB}, kind) {
		return fmt.Errorf("unknown source %q (want gist, backend or omdb)", c.Source)
	}
	if kind == source.KindOMDB && c.OMDBAPIKey == "" {
		return fmt.Errorf("source omdb needs an API key (omdb_api_key or REELSCOUT_OMDB_API_KEY)")
	}
	if c.WordWrap < 0 {
		return fmt.Errorf("word_wrap must not be negative")
	}
	return nil
}

// SourceSettings maps the config onto source.Settings.
func (c *Config) SourceSettings() source.Settings {
	return source.Settings{
		Kind:       c.Source,
		GistURL:    c.GistURL,
		BackendURL: c.BackendURL,
		OMDBURL:    c.OMDBURL,
		APIKey:     c.OMDBAPIKey,
		Timeout:    c.RequestTimeout,
	}
}

// GetDBPath returns the database path, applying defaults.
func (c *Config) GetDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return defaultDBPath()
}
