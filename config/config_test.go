package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "tradedesk", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, ":8080", cfg.App.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "gateway", cfg.LLM.Provider)
	assert.Equal(t, 30*time.Second, cfg.Market.QuoteTTL)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tradedesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  addr: ":9090"
database:
  driver: postgres
  dsn: host=db user=trader dbname=tradedesk
market:
  finnhub_key: file-key
  quote_ttl: 1m
llm:
  provider: gemini
`), 0o600))

	t.Setenv("TRADEDESK_MARKET_FINNHUB_KEY", "env-key")
	t.Setenv("TRADEDESK_REDIS_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.App.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "env-key", cfg.Market.FinnhubKey, "env overrides the file")
	assert.Equal(t, time.Minute, cfg.Market.QuoteTTL)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      AppConfig{Env: "development"},
			Log:      LogConfig{Format: "json"},
			Database: DatabaseConfig{Driver: "sqlite"},
			LLM:      LLMConfig{Provider: "gateway"},
			Retry:    RetryConfig{MaxAttempts: 3},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "claude" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
		{"short secret in production", func(c *Config) { c.App.Env = "production"; c.Auth.JWTSecret = "short" }},
		{"no attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }},
		{"fallback without path", func(c *Config) { c.Market.FallbackURL = "http://x/{symbol}" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
