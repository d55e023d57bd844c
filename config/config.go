// Package config loads the tradedesk settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all settings of the server and the CLI.
type Config struct {
	App      AppConfig
	Log      LogConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Market   MarketConfig
	LLM      LLMConfig
	Retry    RetryConfig
}

type AppConfig struct {
	Name string
	Env  string // development, production
	Addr string // listen address of the HTTP server
}

// IsProduction reports whether the app runs in production.
func (a AppConfig) IsProduction() bool { return a.Env == "production" }

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

type DatabaseConfig struct {
	Driver          string // sqlite, postgres
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
	// WebhookPassphraseHash is the bcrypt hash of the passphrase TradingView
	// alerts must carry. Empty disables the check.
	WebhookPassphraseHash string
}

type MarketConfig struct {
	FinnhubKey   string
	FinnhubURL   string
	QuoteTTL     time.Duration
	FallbackName string
	FallbackURL  string // may contain {symbol}
	FallbackPath string // jsonpath to the price
	CacheDir     string
}

type LLMConfig struct {
	Provider string // gateway, gemini
	BaseURL  string // OpenAI compatible gateway endpoint
	APIKey   string
	Model    string
	Timeout  time.Duration
}

type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "tradedesk")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.addr", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "tradedesk.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.issuer", "tradedesk")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("market.finnhub_url", "https://finnhub.io/api/v1")
	v.SetDefault("market.quote_ttl", 30*time.Second)
	v.SetDefault("market.fallback_name", "fallback")

	v.SetDefault("llm.provider", "gateway")
	v.SetDefault("llm.base_url", "https://ai.gateway.lovable.dev/v1")
	v.SetDefault("llm.model", "google/gemini-2.5-flash")
	v.SetDefault("llm.timeout", 60*time.Second)

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_delay", 500*time.Millisecond)
	v.SetDefault("retry.max_delay", 5*time.Second)
}

// Load reads the configuration.
//
// Priority (highest to lowest):
//  1. Environment variables with TRADEDESK_ prefix (e.g., TRADEDESK_AUTH_JWT_SECRET)
//  2. the config file: path when given, else tradedesk.{yaml,toml,json} in the
//     current directory or in the user config directory
//  3. Built-in defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tradedesk")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "tradedesk"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("TRADEDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Addr: v.GetString("app.addr"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			DSN:             v.GetString("database.dsn"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			JWTSecret:             v.GetString("auth.jwt_secret"),
			Issuer:                v.GetString("auth.issuer"),
			TokenTTL:              v.GetDuration("auth.token_ttl"),
			WebhookPassphraseHash: v.GetString("auth.webhook_passphrase_hash"),
		},
		Market: MarketConfig{
			FinnhubKey:   v.GetString("market.finnhub_key"),
			FinnhubURL:   v.GetString("market.finnhub_url"),
			QuoteTTL:     v.GetDuration("market.quote_ttl"),
			FallbackName: v.GetString("market.fallback_name"),
			FallbackURL:  v.GetString("market.fallback_url"),
			FallbackPath: v.GetString("market.fallback_path"),
			CacheDir:     v.GetString("market.cache_dir"),
		},
		LLM: LLMConfig{
			Provider: v.GetString("llm.provider"),
			BaseURL:  v.GetString("llm.base_url"),
			APIKey:   v.GetString("llm.api_key"),
			Model:    v.GetString("llm.model"),
			Timeout:  v.GetDuration("llm.timeout"),
		},
		Retry: RetryConfig{
			MaxAttempts:  v.GetInt("retry.max_attempts"),
			InitialDelay: v.GetDuration("retry.initial_delay"),
			MaxDelay:     v.GetDuration("retry.max_delay"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q, want sqlite or postgres", c.Database.Driver)
	}
	switch c.LLM.Provider {
	case "gateway", "gemini":
	default:
		return fmt.Errorf("unsupported llm provider %q, want gateway or gemini", c.LLM.Provider)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported log format %q, want json or console", c.Log.Format)
	}
	if c.App.IsProduction() && len(c.Auth.JWTSecret) < 32 {
		return errors.New("auth.jwt_secret must be at least 32 characters in production")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Market.FallbackURL != "" && c.Market.FallbackPath == "" {
		return errors.New("market.fallback_path is required with market.fallback_url")
	}
	return nil
}
