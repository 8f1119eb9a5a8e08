// Package config loads runtime settings from configs/config.yml, environment
// variables and built-in defaults, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingDatabaseURL is returned when no database connection string is configured.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")

// envPrefix namespaces automatic env lookups: db.url -> BOOKREVIEW_DB_URL.
const envPrefix = "BOOKREVIEW"

// DefaultSessionSecret is the placeholder signing key used when none is configured.
const DefaultSessionSecret = "change-me"

// Config holds runtime settings for the web application.
type Config struct {
	Port     string
	LogLevel string
	Database DatabaseConfig
	Session  SessionConfig
	Auth     AuthConfig
	Review   ReviewConfig
	Ratings  RatingsConfig
}

type DatabaseConfig struct {
	URL string
}

// SessionConfig controls the session cookie and its server-side store.
//   - Store: "memory" or "redis".
//   - TTL: lifetime of the server-side entry.
type SessionConfig struct {
	Store         string
	Secret        string
	CookieName    string
	Secure        bool
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type AuthConfig struct {
	HashScheme string
	Iterations int
	SaltLength int
}

type ReviewConfig struct {
	MinRating int
	MaxRating int
	PageSize  int
}

type RatingsConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")

	v.SetDefault("session.store", "memory")
	v.SetDefault("session.secret", DefaultSessionSecret)
	v.SetDefault("session.cookie_name", "session")
	v.SetDefault("session.secure", false)
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.redis_addr", "127.0.0.1:6379")
	v.SetDefault("session.redis_db", 0)

	v.SetDefault("auth.hash_scheme", "pbkdf2")
	v.SetDefault("auth.iterations", 260000)
	v.SetDefault("auth.salt_length", 8)

	v.SetDefault("review.min_rating", 1)
	v.SetDefault("review.max_rating", 5)
	v.SetDefault("review.page_size", 5)

	v.SetDefault("ratings.base_url", "https://www.goodreads.com/book/review_counts.json")
	v.SetDefault("ratings.timeout", 10*time.Second)
}

// bindEnv maps the well-known, unprefixed variables onto config keys.
func bindEnv(v *viper.Viper) error {
	binds := map[string]string{
		"db.url":             "DATABASE_URL",
		"port":               "PORT",
		"session.secret":     "SESSION_SECRET",
		"session.store":      "SESSION_STORE",
		"session.redis_addr": "REDIS_ADDR",
		"ratings.api_key":    "GOODREADS_KEY",
	}
	for key, env := range binds {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(strings.NewReplacer(".", "_").Replace(key)), env); err != nil {
			return fmt.Errorf("bind env %s: %w", env, err)
		}
	}
	return nil
}

// Load reads config.yml from the given directories (default "configs"),
// overlays environment variables and validates the result.
// A missing config file is not an error; a missing database URL is.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	if len(paths) == 0 {
		paths = []string{"configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:     v.GetString("port"),
		LogLevel: v.GetString("log.level"),
		Database: DatabaseConfig{URL: strings.TrimSpace(v.GetString("db.url"))},
		Session: SessionConfig{
			Store:         strings.ToLower(v.GetString("session.store")),
			Secret:        v.GetString("session.secret"),
			CookieName:    v.GetString("session.cookie_name"),
			Secure:        v.GetBool("session.secure"),
			TTL:           v.GetDuration("session.ttl"),
			RedisAddr:     v.GetString("session.redis_addr"),
			RedisPassword: v.GetString("session.redis_password"),
			RedisDB:       v.GetInt("session.redis_db"),
		},
		Auth: AuthConfig{
			HashScheme: strings.ToLower(v.GetString("auth.hash_scheme")),
			Iterations: v.GetInt("auth.iterations"),
			SaltLength: v.GetInt("auth.salt_length"),
		},
		Review: ReviewConfig{
			MinRating: v.GetInt("review.min_rating"),
			MaxRating: v.GetInt("review.max_rating"),
			PageSize:  v.GetInt("review.page_size"),
		},
		Ratings: RatingsConfig{
			BaseURL: v.GetString("ratings.base_url"),
			APIKey:  v.GetString("ratings.api_key"),
			Timeout: v.GetDuration("ratings.timeout"),
		},
	}
}

// UsesDefaultSecret reports whether tokens are signed with the built-in placeholder key.
func (s SessionConfig) UsesDefaultSecret() bool {
	return s.Secret == DefaultSessionSecret
}

// Validate checks the settings the process cannot start without.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return ErrMissingDatabaseURL
	}
	switch c.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}
	switch c.Auth.HashScheme {
	case "pbkdf2", "bcrypt":
	default:
		return fmt.Errorf("unknown password hash scheme %q", c.Auth.HashScheme)
	}
	if c.Review.MinRating > c.Review.MaxRating {
		return fmt.Errorf("review.min_rating %d exceeds review.max_rating %d", c.Review.MinRating, c.Review.MaxRating)
	}
	if c.Auth.SaltLength <= 0 || c.Auth.Iterations <= 0 {
		return errors.New("auth.salt_length and auth.iterations must be positive")
	}
	return nil
}
