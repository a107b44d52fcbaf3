// Package config loads the server's settings from the environment.
//
// Values come from process environment variables, optionally seeded from a
// .env file in the working directory. Variables already set in the
// environment win over the file. After parsing, Load normalizes and
// validates the result so the rest of the program can trust it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Cache backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Cache failure policies. See service.CachePolicy.
const (
	CacheFailuresStrict = "strict"
	CacheFailuresLegacy = "legacy"
)

// Config holds every setting the server reads at startup.
type Config struct {
	// Server
	Port        int    `env:"PORT" envDefault:"8080"`
	TemplateDir string `env:"TEMPLATE_DIR" envDefault:"web/templates"`
	StaticDir   string `env:"STATIC_DIR" envDefault:"web/static"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"` // debug|info|warn|error

	// Cache storage
	CacheBackend  string `env:"CACHE_BACKEND" envDefault:"sqlite"` // sqlite|redis
	DBPath        string `env:"DB_PATH" envDefault:"data/cache.db"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// GitHub
	GitHubAPIURL  string        `env:"GITHUB_API_URL" envDefault:"https://api.github.com"`
	GitHubToken   string        `env:"GITHUB_TOKEN"`
	GitHubTimeout time.Duration `env:"GITHUB_TIMEOUT" envDefault:"0s"` // 0 = no client timeout

	// Sessions
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"30m"`

	// Lookup behavior
	ErrorDismiss  time.Duration `env:"ERROR_DISMISS" envDefault:"5s"`
	CacheFailures string        `env:"CACHE_FAILURES" envDefault:"strict"` // strict|legacy

	// Rate limiting on /api/lookup and POST /
	RateRPS   float64 `env:"RATE_RPS" envDefault:"2"`
	RateBurst int     `env:"RATE_BURST" envDefault:"5"`
}

// Load reads .env (if present) and the environment, applies defaults,
// normalizes values and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv parses the process environment only, without reading .env.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("config: parse env: %w", err)
	}

	// --- normalization ---
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(cfg.CacheBackend))
	cfg.CacheFailures = strings.ToLower(strings.TrimSpace(cfg.CacheFailures))
	cfg.GitHubAPIURL = strings.TrimRight(strings.TrimSpace(cfg.GitHubAPIURL), "/")

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("config: LOG_LEVEL must be one of: debug, info, warn, error")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("config: PORT must be between 1 and 65535")
	}
	switch c.CacheBackend {
	case BackendSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			return errors.New("config: DB_PATH must not be empty")
		}
	case BackendRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return errors.New("config: REDIS_ADDR must not be empty")
		}
	default:
		return errors.New("config: CACHE_BACKEND must be one of: sqlite, redis")
	}
	if c.GitHubAPIURL == "" {
		return errors.New("config: GITHUB_API_URL must not be empty")
	}
	if c.GitHubTimeout < 0 {
		return errors.New("config: GITHUB_TIMEOUT must be >= 0")
	}
	if c.SessionSecret != "" && len(c.SessionSecret) < 16 {
		return errors.New("config: SESSION_SECRET must be at least 16 characters")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: SESSION_TTL must be > 0")
	}
	if c.ErrorDismiss <= 0 {
		return errors.New("config: ERROR_DISMISS must be > 0")
	}
	switch c.CacheFailures {
	case CacheFailuresStrict, CacheFailuresLegacy:
	default:
		return errors.New("config: CACHE_FAILURES must be one of: strict, legacy")
	}
	if c.RateRPS <= 0 {
		return errors.New("config: RATE_RPS must be > 0")
	}
	if c.RateBurst < 1 {
		return errors.New("config: RATE_BURST must be >= 1")
	}
	return nil
}
