package market

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/etnz/tradedesk"
	"github.com/etnz/tradedesk/date"
	"github.com/etnz/tradedesk/retry"
	"go.uber.org/zap"
)

// DefaultFinnhubURL is the public Finnhub REST endpoint.
const DefaultFinnhubURL = "https://finnhub.io/api/v1"

// Finnhub is a Provider backed by the Finnhub REST API. Quotes are always
// fetched live, company profiles and daily candles go through a disk cache
// that expires every day.
type Finnhub struct {
	key      string
	base     string
	live     *http.Client
	daily    *http.Client
	policy   retry.Policy
	cacheDir string
	log      *zap.Logger
}

// FinnhubOption customizes a Finnhub client.
type FinnhubOption func(*Finnhub)

// WithBaseURL points the client to another endpoint, such as a test server.
func WithBaseURL(u string) FinnhubOption { return func(f *Finnhub) { f.base = u } }

// WithRetry replaces the retry policy.
func WithRetry(p retry.Policy) FinnhubOption { return func(f *Finnhub) { f.policy = p } }

// WithCacheDir stores the daily cache in dir instead of the temp dir.
func WithCacheDir(dir string) FinnhubOption {
	return func(f *Finnhub) { f.cacheDir = dir }
}

// WithLogger logs the requests that miss the disk cache.
func WithLogger(log *zap.Logger) FinnhubOption { return func(f *Finnhub) { f.log = log } }

// NewFinnhub returns a client authenticated with key.
func NewFinnhub(key string, opts ...FinnhubOption) *Finnhub {
	f := &Finnhub{
		key:    key,
		base:   DefaultFinnhubURL,
		live:   &http.Client{Timeout: 10 * time.Second},
		policy: retry.DefaultPolicy,
		log:    zap.NewNop(),
	}
	for _, o := range opts {
		o(f)
	}
	f.daily = cachingClient(f.live, date.Daily, f.cacheDir, f.log)
	return f
}

func (f *Finnhub) url(path string, q url.Values) string {
	q.Set("token", f.key)
	return f.base + path + "?" + q.Encode()
}

type finnhubQuote struct {
	C  float64 `json:"c"`
	D  float64 `json:"d"`
	DP float64 `json:"dp"`
	H  float64 `json:"h"`
	L  float64 `json:"l"`
	O  float64 `json:"o"`
	PC float64 `json:"pc"`
	T  int64   `json:"t"`
}

// Quote returns the real time quote of symbol.
func (f *Finnhub) Quote(ctx context.Context, symbol string) (Quote, error) {
	symbol, err := tradedesk.NormalizeTicker(symbol)
	if err != nil {
		return Quote{}, err
	}
	addr := f.url("/quote", url.Values{"symbol": {symbol}})
	res := retry.Do(ctx, f.policy, func(ctx context.Context) (finnhubQuote, error) {
		var q finnhubQuote
		err := jwget(ctx, f.live, "finnhub", addr, &q)
		return q, err
	})
	if res.Err != nil {
		return Quote{}, fmt.Errorf("quote %s: %w", symbol, res.Err)
	}
	q := res.Data
	// finnhub answers unknown symbols with an all zero quote.
	if q.C == 0 && q.T == 0 {
		return Quote{}, fmt.Errorf("quote %s: %w", symbol, ErrUnknownSymbol)
	}
	return Quote{
		Symbol:        symbol,
		Price:         q.C,
		Change:        q.D,
		ChangePercent: q.DP,
		Open:          q.O,
		High:          q.H,
		Low:           q.L,
		PreviousClose: q.PC,
		Time:          time.Unix(q.T, 0).UTC(),
		Source:        "finnhub",
	}, nil
}

// Profile describes a listed company.
type Profile struct {
	Ticker    string  `json:"ticker"`
	Name      string  `json:"name"`
	Exchange  string  `json:"exchange"`
	Currency  string  `json:"currency"`
	Industry  string  `json:"finnhubIndustry"`
	MarketCap float64 `json:"marketCapitalization"`
	WebURL    string  `json:"weburl"`
}

// Profile returns the company profile of symbol, cached for the day.
func (f *Finnhub) Profile(ctx context.Context, symbol string) (Profile, error) {
	symbol, err := tradedesk.NormalizeTicker(symbol)
	if err != nil {
		return Profile{}, err
	}
	addr := f.url("/stock/profile2", url.Values{"symbol": {symbol}})
	res := retry.Do(ctx, f.policy, func(ctx context.Context) (Profile, error) {
		var p Profile
		err := jwget(ctx, f.daily, "finnhub", addr, &p)
		return p, err
	})
	if res.Err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", symbol, res.Err)
	}
	if res.Data.Ticker == "" {
		return Profile{}, fmt.Errorf("profile %s: %w", symbol, ErrUnknownSymbol)
	}
	return res.Data, nil
}

// QuoteWithProfile is Quote with the company name and currency filled from
// the cached profile. A failing profile only leaves them empty.
func (f *Finnhub) QuoteWithProfile(ctx context.Context, symbol string) (Quote, error) {
	q, err := f.Quote(ctx, symbol)
	if err != nil {
		return q, err
	}
	if p, err := f.Profile(ctx, q.Symbol); err == nil {
		q.Name, q.Currency = p.Name, p.Currency
	}
	return q, nil
}

type finnhubCandles struct {
	C []float64 `json:"c"`
	T []int64   `json:"t"`
	S string    `json:"s"`
}

// Closes returns the daily closing prices of symbol within r, both ends
// included.
func (f *Finnhub) Closes(ctx context.Context, symbol string, r date.Range) (*date.History[float64], error) {
	symbol, err := tradedesk.NormalizeTicker(symbol)
	if err != nil {
		return nil, err
	}
	addr := f.url("/stock/candle", url.Values{
		"symbol":     {symbol},
		"resolution": {"D"},
		"from":       {fmt.Sprint(r.From.Time().Unix())},
		"to":         {fmt.Sprint(r.To.Add(1).Time().Unix() - 1)},
	})
	res := retry.Do(ctx, f.policy, func(ctx context.Context) (finnhubCandles, error) {
		var c finnhubCandles
		err := jwget(ctx, f.daily, "finnhub", addr, &c)
		return c, err
	})
	if res.Err != nil {
		return nil, fmt.Errorf("closes %s: %w", symbol, res.Err)
	}
	c := res.Data
	if c.S != "ok" || len(c.C) != len(c.T) {
		return nil, fmt.Errorf("closes %s %s: %w", symbol, r.Identifier(), ErrUnknownSymbol)
	}
	h := new(date.History[float64])
	for i, ts := range c.T {
		h.Append(date.Of(time.Unix(ts, 0).UTC()), c.C[i])
	}
	return h, nil
}

// HistoryProvider returns daily closes.
type HistoryProvider interface {
	Closes(ctx context.Context, symbol string, r date.Range) (*date.History[float64], error)
}

var (
	_ Provider        = (*Finnhub)(nil)
	_ HistoryProvider = (*Finnhub)(nil)
)
