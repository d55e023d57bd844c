package market

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/etnz/tradedesk"
	"github.com/etnz/tradedesk/retry"
)

// PathProvider reads a price out of any JSON endpoint with a jsonpath
// expression. URL may contain a {symbol} placeholder.
type PathProvider struct {
	Name   string
	URL    string
	Path   string // e.g. $.chart.result[0].meta.regularMarketPrice
	Client *http.Client
	Policy retry.Policy
}

// Quote fetches URL for symbol and evaluates Path on the answer. Only the
// price is known from such sources.
func (p *PathProvider) Quote(ctx context.Context, symbol string) (Quote, error) {
	symbol, err := tradedesk.NormalizeTicker(symbol)
	if err != nil {
		return Quote{}, err
	}
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	addr := strings.ReplaceAll(p.URL, "{symbol}", url.PathEscape(symbol))
	res := retry.Do(ctx, p.Policy, func(ctx context.Context) (any, error) {
		var jobj any
		err := jwget(ctx, client, p.Name, addr, &jobj)
		return jobj, err
	})
	if res.Err != nil {
		return Quote{}, fmt.Errorf("quote %s: %w", symbol, res.Err)
	}
	jval, err := jsonpath.Get(p.Path, res.Data)
	if err != nil {
		return Quote{}, fmt.Errorf("quote %s: evaluating %q: %w", symbol, p.Path, err)
	}
	// jsonpath returns a list for filters and slices, keep the first item.
	if list, ok := jval.([]any); ok {
		if len(list) == 0 {
			return Quote{}, fmt.Errorf("quote %s: %w", symbol, ErrUnknownSymbol)
		}
		jval = list[0]
	}
	price, err := toFloat(jval)
	if err != nil || price <= 0 {
		return Quote{}, fmt.Errorf("quote %s: %q is not a price: %v", symbol, p.Path, jval)
	}
	return Quote{Symbol: symbol, Price: price, Time: time.Now().UTC(), Source: p.Name}, nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		return strconv.ParseFloat(strings.ReplaceAll(x, ",", ""), 64)
	}
	return 0, fmt.Errorf("unexpected %T", v)
}

var _ Provider = (*PathProvider)(nil)
