package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allVars = []string{
	"PORT", "TEMPLATE_DIR", "STATIC_DIR", "LOG_LEVEL",
	"CACHE_BACKEND", "DB_PATH", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"GITHUB_API_URL", "GITHUB_TOKEN", "GITHUB_TIMEOUT",
	"SESSION_SECRET", "SESSION_TTL", "ERROR_DISMISS", "CACHE_FAILURES",
	"RATE_RPS", "RATE_BURST",
}

// clearEnv unsets every variable Config reads. t.Setenv registers the
// restore, so the outer environment comes back after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allVars {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "web/templates", cfg.TemplateDir)
	assert.Equal(t, "web/static", cfg.StaticDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, BackendSQLite, cfg.CacheBackend)
	assert.Equal(t, "data/cache.db", cfg.DBPath)
	assert.Equal(t, "https://api.github.com", cfg.GitHubAPIURL)
	assert.Empty(t, cfg.GitHubToken)
	assert.Zero(t, cfg.GitHubTimeout)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.ErrorDismiss)
	assert.Equal(t, CacheFailuresStrict, cfg.CacheFailures)
	assert.Equal(t, 2.0, cfg.RateRPS)
	assert.Equal(t, 5, cfg.RateBurst)
}

func TestFromEnv_OverridesAndNormalization(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("CACHE_BACKEND", " Redis ")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("GITHUB_API_URL", "http://localhost:9999/")
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GITHUB_TIMEOUT", "10s")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123")
	t.Setenv("ERROR_DISMISS", "2s")
	t.Setenv("CACHE_FAILURES", "Legacy")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, BackendRedis, cfg.CacheBackend)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "http://localhost:9999", cfg.GitHubAPIURL)
	assert.Equal(t, "ghp_test", cfg.GitHubToken)
	assert.Equal(t, 10*time.Second, cfg.GitHubTimeout)
	assert.Equal(t, 2*time.Second, cfg.ErrorDismiss)
	assert.Equal(t, CacheFailuresLegacy, cfg.CacheFailures)
}

func TestFromEnv_ParseError(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-number")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: parse env")
}

func TestFromEnv_Validation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"bad log level", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"port out of range", "PORT", "70000", "PORT"},
		{"unknown backend", "CACHE_BACKEND", "memcached", "CACHE_BACKEND"},
		{"negative timeout", "GITHUB_TIMEOUT", "-1s", "GITHUB_TIMEOUT"},
		{"short secret", "SESSION_SECRET", "short", "SESSION_SECRET"},
		{"zero session ttl", "SESSION_TTL", "0s", "SESSION_TTL"},
		{"zero dismiss", "ERROR_DISMISS", "0s", "ERROR_DISMISS"},
		{"unknown policy", "CACHE_FAILURES", "sometimes", "CACHE_FAILURES"},
		{"negative rps", "RATE_RPS", "-1", "RATE_RPS"},
		{"zero rps", "RATE_RPS", "0", "RATE_RPS"},
		{"zero burst", "RATE_BURST", "0", "RATE_BURST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("PORT=7070\nCACHE_FAILURES=legacy\n"), 0o600))
	t.Chdir(dir)

	// Set in the environment: wins over the file.
	t.Setenv("CACHE_FAILURES", "strict")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, CacheFailuresStrict, cfg.CacheFailures)

	// godotenv sets PORT in the process environment; clearEnv's restore
	// covers it since PORT is in allVars.
}

func TestLoad_NoDotEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
}
