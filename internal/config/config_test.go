package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600))
	return dir
}

func TestLoad_MissingDatabaseURLFailsFast(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BOOKREVIEW_DB_URL", "")

	_, err := Load(t.TempDir())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissingDatabaseURL), "got %v", err)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://books.db")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("BOOKREVIEW_SESSION_SECRET", "")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, "sqlite://books.db", cfg.Database.URL)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "memory", cfg.Session.Store)
	require.Equal(t, 24*time.Hour, cfg.Session.TTL)
	require.Equal(t, "pbkdf2", cfg.Auth.HashScheme)
	require.Equal(t, 8, cfg.Auth.SaltLength)
	require.Equal(t, 1, cfg.Review.MinRating)
	require.Equal(t, 5, cfg.Review.MaxRating)
	require.Equal(t, 5, cfg.Review.PageSize)
	require.Equal(t, 10*time.Second, cfg.Ratings.Timeout)
	require.True(t, cfg.Session.UsesDefaultSecret())
}

func TestSessionConfig_UsesDefaultSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://books.db")
	t.Setenv("SESSION_SECRET", "s3cr3t-from-env")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "s3cr3t-from-env", cfg.Session.Secret)
	require.False(t, cfg.Session.UsesDefaultSecret())

	require.True(t, SessionConfig{Secret: DefaultSessionSecret}.UsesDefaultSecret())
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	dir := writeConfig(t, `
port: "9090"
log:
  level: warn
db:
  url: postgres://file/books
session:
  store: redis
  ttl: 30m
review:
  max_rating: 10
ratings:
  api_key: from-file
`)
	t.Setenv("DATABASE_URL", "postgres://env/books")
	t.Setenv("GOODREADS_KEY", "from-env")
	t.Setenv("BOOKREVIEW_SESSION_SECURE", "true")

	cfg, err := Load(dir)
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, "postgres://env/books", cfg.Database.URL, "env must win over file")
	require.Equal(t, "redis", cfg.Session.Store)
	require.Equal(t, 30*time.Minute, cfg.Session.TTL)
	require.True(t, cfg.Session.Secure)
	require.Equal(t, 10, cfg.Review.MaxRating)
	require.Equal(t, "from-env", cfg.Ratings.APIKey)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Database: DatabaseConfig{URL: "sqlite://x.db"},
			Session:  SessionConfig{Store: "memory"},
			Auth:     AuthConfig{HashScheme: "pbkdf2", Iterations: 1, SaltLength: 8},
			Review:   ReviewConfig{MinRating: 1, MaxRating: 5},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown store", mutate: func(c *Config) { c.Session.Store = "filesystem" }, wantErr: true},
		{name: "unknown scheme", mutate: func(c *Config) { c.Auth.HashScheme = "md5" }, wantErr: true},
		{name: "inverted rating range", mutate: func(c *Config) { c.Review.MinRating = 6 }, wantErr: true},
		{name: "zero salt", mutate: func(c *Config) { c.Auth.SaltLength = 0 }, wantErr: true},
		{name: "bcrypt allowed", mutate: func(c *Config) { c.Auth.HashScheme = "bcrypt" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
