package market

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/etnz/tradedesk"
	"github.com/etnz/tradedesk/cache"
)

// Cached keeps quotes of an underlying Provider in a cache.Store for TTL.
// Cache failures are logged and never fail a quote.
type Cached struct {
	Provider Provider
	Store    cache.Store
	TTL      time.Duration
	Logger   *zap.Logger
}

func (c *Cached) log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *Cached) Quote(ctx context.Context, symbol string) (Quote, error) {
	symbol, err := tradedesk.NormalizeTicker(symbol)
	if err != nil {
		return Quote{}, err
	}
	key := "quote:" + symbol
	if b, ok, err := c.Store.Get(ctx, key); err != nil {
		c.log().Warn("quote cache read failed", zap.String("symbol", symbol), zap.Error(err))
	} else if ok {
		var q Quote
		if err := json.Unmarshal(b, &q); err == nil {
			return q, nil
		}
	}

	q, err := c.Provider.Quote(ctx, symbol)
	if err != nil {
		return Quote{}, err
	}
	b, err := json.Marshal(q)
	if err == nil {
		err = c.Store.Set(ctx, key, b, c.TTL)
	}
	if err != nil {
		c.log().Warn("quote cache write failed", zap.String("symbol", symbol), zap.Error(err))
	}
	return q, nil
}

var _ Provider = (*Cached)(nil)
