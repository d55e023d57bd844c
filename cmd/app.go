// Package cmd implements the tradedesk command line.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/tradedesk/agent"
	"github.com/etnz/tradedesk/cache"
	"github.com/etnz/tradedesk/config"
	"github.com/etnz/tradedesk/logger"
	"github.com/etnz/tradedesk/market"
	"github.com/etnz/tradedesk/retry"
	"github.com/etnz/tradedesk/store"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for group, cmds := range Groups() {
		for _, cmd := range cmds {
			c.Register(cmd, group)
		}
	}
}

// Groups returns the subcommands by group.
func Groups() map[string][]subcommands.Command {
	return map[string][]subcommands.Command{
		"paycheck": {&paycheckCmd{}, &whatIfCmd{}, &variablesCmd{}},
		"planning": {&rmdCmd{}, &fireCmd{}, &mortgageCmd{}, &rentalCmd{}},
		"options":  {&coveredCallCmd{}, &optionCmd{}},
		"trading":  {&quoteCmd{}, &planCmd{}, &backtestCmd{}, &tradeCmd{}, &assistCmd{}},
		"server":   {&serveCmd{}, &tokenCmd{}},
		"help":     {&topicCmd{}},
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the configuration file, tradedesk.yaml in the current or user config directory by default")

// loadConfig reads the configuration and builds the logger it describes.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func retryPolicy(cfg *config.Config, log *zap.Logger) retry.Policy {
	return retry.Policy{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialDelay,
		MaxDelay:     cfg.Retry.MaxDelay,
		Logger:       log,
	}
}

// quoteCache is redis when enabled, else a process local memory cache.
func quoteCache(ctx context.Context, cfg *config.Config, log *zap.Logger) cache.Store {
	if cfg.Redis.Enabled {
		r, err := cache.NewRedis(ctx, cache.RedisConfig{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err == nil {
			return r
		}
		log.Warn("redis unavailable, caching quotes in memory", zap.Error(err))
	}
	return cache.NewMemory()
}

// marketData builds the quote provider chain: Finnhub first, then the
// configured jsonpath fallback, behind a cache. The Finnhub client is nil
// without an API key.
func marketData(ctx context.Context, cfg *config.Config, log *zap.Logger) (market.Provider, *market.Finnhub) {
	policy := retryPolicy(cfg, log)
	var chain market.Fallback
	var finnhub *market.Finnhub
	if cfg.Market.FinnhubKey != "" {
		opts := []market.FinnhubOption{market.WithRetry(policy), market.WithLogger(log)}
		if cfg.Market.FinnhubURL != "" {
			opts = append(opts, market.WithBaseURL(cfg.Market.FinnhubURL))
		}
		if cfg.Market.CacheDir != "" {
			opts = append(opts, market.WithCacheDir(cfg.Market.CacheDir))
		}
		finnhub = market.NewFinnhub(cfg.Market.FinnhubKey, opts...)
		chain = append(chain, finnhub)
	}
	if cfg.Market.FallbackURL != "" {
		chain = append(chain, &market.PathProvider{
			Name:   cfg.Market.FallbackName,
			URL:    cfg.Market.FallbackURL,
			Path:   cfg.Market.FallbackPath,
			Policy: policy,
		})
	}
	if len(chain) == 0 {
		return nil, nil
	}
	return &market.Cached{Provider: chain, Store: quoteCache(ctx, cfg, log), TTL: cfg.Market.QuoteTTL, Logger: log}, finnhub
}

var errNoQuotes = errors.New("no quote provider configured, set market.finnhub_key or market.fallback_url")

// planner returns the trade plan generator of the configured LLM provider.
func planner(ctx context.Context, cfg *config.Config, quotes market.Provider, log *zap.Logger) (agent.Planner, error) {
	if cfg.LLM.APIKey == "" {
		return nil, errors.New("no LLM API key configured, set llm.api_key")
	}
	policy := retryPolicy(cfg, log)
	switch cfg.LLM.Provider {
	case "gemini":
		return agent.NewGeminiPlanner(ctx, cfg.LLM, quotes, policy, log)
	default:
		return agent.NewGatewayPlanner(cfg.LLM, quotes, policy, log), nil
	}
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*store.Store, error) {
	return store.Open(ctx, cfg.Database, log)
}

// fail prints err and returns the failure status.
func fail(format string, args ...any) subcommands.ExitStatus {
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(os.Stderr, msg)
	return subcommands.ExitFailure
}
