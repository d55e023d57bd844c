package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/tradedesk"
	"github.com/etnz/tradedesk/config"
	"github.com/etnz/tradedesk/market"
	"github.com/etnz/tradedesk/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type stubQuotes map[string]float64

func (s stubQuotes) Quote(_ context.Context, symbol string) (market.Quote, error) {
	p, ok := s[symbol]
	if !ok {
		return market.Quote{}, market.ErrUnknownSymbol
	}
	return market.Quote{Symbol: symbol, Price: p}, nil
}

var fastRetry = retry.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func completion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "test",
		"choices": []any{map[string]any{
			"index": 0, "finish_reason": "stop",
			"message": map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(b)
}

// gateway serves the given statuses in order, then the answer.
func gateway(t *testing.T, answer string, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		n := int(calls.Add(1))
		w.Header().Set("Content-Type", "application/json")
		if n <= len(statuses) {
			w.WriteHeader(statuses[n-1])
			fmt.Fprintf(w, `{"error":{"message":"status %d","type":"test"}}`, statuses[n-1])
			return
		}
		fmt.Fprint(w, completion(answer))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

const longPlan = `{"direction":"long","entry":100,"stopLoss":95,"targets":[110,120],"confidence":70,"rationale":"breakout","risks":["earnings"]}`

func newGateway(url string) *GatewayPlanner {
	return NewGatewayPlanner(config.LLMConfig{BaseURL: url, APIKey: "k", Model: "test", Timeout: 5 * time.Second},
		stubQuotes{"AAPL": 101}, fastRetry, nil)
}

func TestGatewayPlanner_Plan(t *testing.T) {
	srv, _ := gateway(t, "```json\n"+longPlan+"\n```")
	plan, err := newGateway(srv.URL).Plan(context.Background(), TradePlanRequest{Ticker: "aapl", PortfolioSize: 10000, RiskPercent: 1})
	require.NoError(t, err)

	assert.Equal(t, "AAPL", plan.Ticker)
	assert.Equal(t, "long", plan.Direction)
	// 100 risk budget over 5 per share.
	assert.Equal(t, 20, plan.PositionSize)
	assert.InDelta(t, 100, plan.RiskAmount, 1e-9)
	assert.InDelta(t, 2, plan.RiskReward, 1e-9)
	require.NotNil(t, plan.Quote)
	assert.Equal(t, 101.0, plan.Quote.Price)
}

func TestGatewayPlanner_RetriesTransientFailures(t *testing.T) {
	srv, calls := gateway(t, longPlan, http.StatusServiceUnavailable)
	_, err := newGateway(srv.URL).Plan(context.Background(), TradePlanRequest{Ticker: "AAPL", PortfolioSize: 10000, RiskPercent: 1})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGatewayPlanner_Errors(t *testing.T) {
	tests := []struct {
		status int
		want   error
		code   int
		calls  int32
	}{
		{http.StatusUnauthorized, ErrUnauthorized, 401, 1},
		{http.StatusBadRequest, ErrInvalidRequest, 400, 1},
		{http.StatusPaymentRequired, ErrPaymentRequired, 402, 1},
		{http.StatusTooManyRequests, ErrRateLimited, 429, 3},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv, calls := gateway(t, longPlan, tt.status, tt.status, tt.status)
			_, err := newGateway(srv.URL).Plan(context.Background(), TradePlanRequest{Ticker: "AAPL", PortfolioSize: 10000, RiskPercent: 1})
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.code, StatusCode(err))
			assert.Equal(t, tt.calls, calls.Load())
		})
	}
}

func TestGatewayPlanner_InvalidRequest(t *testing.T) {
	srv, calls := gateway(t, longPlan)
	p := newGateway(srv.URL)
	for _, req := range []TradePlanRequest{
		{Ticker: "AAPL1", PortfolioSize: 10000, RiskPercent: 1},
		{Ticker: "AAPL", PortfolioSize: 50, RiskPercent: 1},
		{Ticker: "AAPL", PortfolioSize: 10000, RiskPercent: 11},
	} {
		_, err := p.Plan(context.Background(), req)
		assert.Equal(t, http.StatusBadRequest, StatusCode(err), "%+v", req)
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestGatewayPlanner_MissingQuote(t *testing.T) {
	srv, _ := gateway(t, longPlan)
	plan, err := newGateway(srv.URL).Plan(context.Background(), TradePlanRequest{Ticker: "MSFT", PortfolioSize: 10000, RiskPercent: 1})
	require.NoError(t, err)
	assert.Nil(t, plan.Quote)
}

func TestFinalize(t *testing.T) {
	req := TradePlanRequest{Ticker: "TSLA", PortfolioSize: 50000, RiskPercent: 2}
	t.Run("short", func(t *testing.T) {
		plan, err := finalize(req, proposal{Direction: "sell", Entry: 200, StopLoss: 210, Targets: []float64{180}, Confidence: 140}, nil)
		require.NoError(t, err)
		assert.Equal(t, "short", plan.Direction)
		assert.Equal(t, 100, plan.PositionSize)
		assert.Equal(t, 100, plan.Confidence)
		assert.InDelta(t, 2, plan.RiskReward, 1e-9)
	})
	for name, p := range map[string]proposal{
		"stop above long entry": {Direction: "long", Entry: 100, StopLoss: 101},
		"stop below short":      {Direction: "short", Entry: 100, StopLoss: 99},
		"unknown direction":     {Direction: "sideways", Entry: 100, StopLoss: 99},
		"no entry":              {Direction: "long", StopLoss: 99},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := finalize(req, p, nil)
			assert.ErrorIs(t, err, ErrBadResponse)
			assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
		})
	}
}

func TestParseProposal(t *testing.T) {
	_, err := parseProposal("I cannot help with that")
	assert.ErrorIs(t, err, ErrBadResponse)

	p, err := parseProposal("Here is the plan: " + longPlan)
	require.NoError(t, err)
	assert.Equal(t, []float64{110, 120}, p.Targets)
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 200, StatusCode(nil))
	assert.Equal(t, 500, StatusCode(errors.New("boom")))
	assert.Equal(t, 400, StatusCode(tradedesk.ValidationError{Field: "ticker"}))
	assert.Equal(t, 500, StatusCode(classify(&retry.StatusError{Service: "x", Code: 502})))
	badSide := fmt.Errorf("%w: %w", ErrBadResponse, tradedesk.ValidationError{Field: "side", Message: "unknown side"})
	assert.Equal(t, 500, StatusCode(badSide))
}

func TestTools(t *testing.T) {
	ctx := context.Background()
	lib := NewLibrary([]Function{QuoteTool(stubQuotes{"SPY": 512.5}), SizePositionTool, PaycheckWhatIfTool})

	resp := lib(ctx, &genai.FunctionCall{ID: "1", Name: "get_quote", Args: map[string]any{"symbol": "spy"}})
	assert.Equal(t, 512.5, resp.Response["price"])

	resp = lib(ctx, &genai.FunctionCall{ID: "2", Name: "get_quote", Args: map[string]any{"symbol": "QQQ"}})
	assert.Contains(t, resp.Response["error"], "no quote for QQQ")

	resp = lib(ctx, &genai.FunctionCall{ID: "3", Name: "size_position", Args: map[string]any{
		"account_size": 10000.0, "risk_percent": 1.0, "entry": 50.0, "stop": 48.0, "max_position_percent": 20.0,
	}})
	assert.Equal(t, 40, resp.Response["shares"])
	assert.Equal(t, true, resp.Response["capped_by_limit"])

	resp = lib(ctx, &genai.FunctionCall{ID: "4", Name: "paycheck_whatif", Args: map[string]any{
		"gross_pay": 2000.0, "frequency": "biweekly", "state": "TX", "variable": "traditional_401k", "adjustment_percent": 6.0,
	}})
	require.Nil(t, resp.Response["error"])
	assert.Equal(t, 0.22, resp.Response["federal_marginal_rate"])
	assert.Equal(t, tradedesk.USD(93.60).String(), resp.Response["net_cost"])

	resp = lib(ctx, &genai.FunctionCall{ID: "5", Name: "size_position", Args: map[string]any{"entry": "fifty"}})
	assert.NotNil(t, resp.Response["error"])

	resp = lib(ctx, &genai.FunctionCall{ID: "6", Name: "launch_rocket"})
	assert.Equal(t, "unknown function launch_rocket", resp.Response["error"])
}

func TestNewFacilitator(t *testing.T) {
	a := New(nil, nil, NewTrader(), NewAnalyst(stubQuotes{}))
	decls := a.Facilitator.Config.Tools[0].FunctionDeclarations
	require.Len(t, decls, 2)
	assert.Equal(t, "Trader", decls[0].Name)
	assert.Equal(t, "Analyst", decls[1].Name)
}
