// Package market fetches stock quotes and daily closes from remote providers.
package market

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownSymbol is returned when a provider has no data for a symbol.
var ErrUnknownSymbol = errors.New("unknown symbol")

// Quote is the latest trading data of a symbol.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Open          float64   `json:"open,omitempty"`
	High          float64   `json:"high,omitempty"`
	Low           float64   `json:"low,omitempty"`
	PreviousClose float64   `json:"previous_close,omitempty"`
	Time          time.Time `json:"time"`
	Name          string    `json:"name,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	Source        string    `json:"source"`
}

// String is a one line summary such as "AAPL 190.12 (+1.25%)".
func (q Quote) String() string {
	return fmt.Sprintf("%s %.2f (%+.2f%%)", q.Symbol, q.Price, q.ChangePercent)
}

// Provider returns the latest quote of a symbol.
type Provider interface {
	Quote(ctx context.Context, symbol string) (Quote, error)
}

// Fallback asks each provider in turn and returns the first quote.
type Fallback []Provider

func (f Fallback) Quote(ctx context.Context, symbol string) (Quote, error) {
	if len(f) == 0 {
		return Quote{}, errors.New("no quote provider configured")
	}
	var errs []error
	for _, p := range f {
		q, err := p.Quote(ctx, symbol)
		if err == nil {
			return q, nil
		}
		if ctx.Err() != nil {
			return Quote{}, ctx.Err()
		}
		errs = append(errs, err)
	}
	return Quote{}, fmt.Errorf("quote %s: %w", symbol, errors.Join(errs...))
}
