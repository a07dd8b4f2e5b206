package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gaurav-Gosain/reelscout/source"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"REELSCOUT_CONFIG", "REELSCOUT_SOURCE", "REELSCOUT_OMDB_API_KEY", "REELSCOUT_DB"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, source.KindGist, cfg.Source)
	assert.Equal(t, source.DefaultGistURL, cfg.GistURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 80, cfg.WordWrap)
	assert.NotEmpty(t, cfg.DBPath)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ExplicitFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	content := `
source: omdb
omdb_api_key: abc123
db_path: /tmp/reel.db
request_timeout: 3s
log_level: debug
word_wrap: 100
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "omdb", cfg.Source)
	assert.Equal(t, "abc123", cfg.OMDBAPIKey)
	assert.Equal(t, "/tmp/reel.db", cfg.GetDBPath())
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 100, cfg.WordWrap)
	assert.Equal(t, source.DefaultOMDBURL, cfg.OMDBURL, "unset keys keep defaults")
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvConfigPathAndOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: gist\ndb_path: file.db\n"), 0o644))

	t.Setenv("REELSCOUT_CONFIG", path)
	t.Setenv("REELSCOUT_SOURCE", "omdb")
	t.Setenv("REELSCOUT_OMDB_API_KEY", "from-env")
	t.Setenv("REELSCOUT_DB", "env.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "omdb", cfg.Source)
	assert.Equal(t, "from-env", cfg.OMDBAPIKey)
	assert.Equal(t, "env.db", cfg.DBPath)
}

func TestLoad_SearchPathInWorkingDir(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(".reelscout.yml", []byte("source: backend\nbackend_url: http://127.0.0.1:9999/movies\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "backend", cfg.Source)
	assert.Equal(t, "http://127.0.0.1:9999/movies", cfg.SourceSettings().BackendURL)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("source: [unterminated"), 0o644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"backend", func(c *Config) { c.Source = "backend" }, ""},
		{"case insensitive", func(c *Config) { c.Source = "GIST" }, ""},
		{"unknown source", func(c *Config) { c.Source = "tmdb" }, "unknown source"},
		{"omdb without key", func(c *Config) { c.Source = "omdb" }, "needs an API key"},
		{"omdb with key", func(c *Config) { c.Source = "omdb"; c.OMDBAPIKey = "k" }, ""},
		{"negative wrap", func(c *Config) { c.WordWrap = -1 }, "word_wrap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestSourceSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source = "omdb"
	cfg.OMDBAPIKey = "k"
	cfg.RequestTimeout = time.Second

	s := cfg.SourceSettings()
	assert.Equal(t, "omdb", s.Kind)
	assert.Equal(t, "k", s.APIKey)
	assert.Equal(t, time.Second, s.Timeout)

	src, err := source.New(s)
	require.NoError(t, err)
	assert.Equal(t, source.KindOMDB, src.Name())
}
