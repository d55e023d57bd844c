package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/etnz/tradedesk"
	"github.com/etnz/tradedesk/market"
	"go.uber.org/zap"
)

// TradePlanRequest asks for a plan on one ticker.
type TradePlanRequest struct {
	Ticker        string  `json:"ticker"`
	PortfolioSize float64 `json:"portfolioSize"`
	RiskPercent   float64 `json:"riskPercent"`
	Strategy      string  `json:"strategy,omitempty"`
	Timeframe     string  `json:"timeframe,omitempty"`
}

// Validate normalizes the ticker, checks the bounds and fills defaults.
func (r *TradePlanRequest) Validate() error {
	t, err := tradedesk.NormalizeTicker(r.Ticker)
	if err != nil {
		return err
	}
	r.Ticker = t
	if err := tradedesk.ValidatePortfolioSize(r.PortfolioSize); err != nil {
		return err
	}
	if err := tradedesk.ValidateRiskPercent(r.RiskPercent); err != nil {
		return err
	}
	if r.Strategy == "" {
		r.Strategy = "swing"
	}
	if r.Timeframe == "" {
		r.Timeframe = "1D"
	}
	return nil
}

// TradePlan is a plan proposed by the LLM, sized locally.
type TradePlan struct {
	Ticker        string        `json:"ticker"`
	Direction     string        `json:"direction"`
	Entry         float64       `json:"entry"`
	StopLoss      float64       `json:"stopLoss"`
	Targets       []float64     `json:"targets"`
	PositionSize  int           `json:"positionSize"`
	PositionValue float64       `json:"positionValue"`
	RiskAmount    float64       `json:"riskAmount"`
	RiskReward    float64       `json:"riskReward"`
	Confidence    int           `json:"confidence"`
	Rationale     string        `json:"rationale"`
	Risks         []string      `json:"risks"`
	Quote         *market.Quote `json:"quote,omitempty"`
}

// Planner generates trade plans.
type Planner interface {
	Plan(ctx context.Context, req TradePlanRequest) (TradePlan, error)
}

// proposal is what the model is asked to answer.
type proposal struct {
	Direction  string    `json:"direction"`
	Entry      float64   `json:"entry"`
	StopLoss   float64   `json:"stopLoss"`
	Targets    []float64 `json:"targets"`
	Confidence int       `json:"confidence"`
	Rationale  string    `json:"rationale"`
	Risks      []string  `json:"risks"`
}

const planInstruction = `You are a disciplined trading assistant. You propose one trade plan for the
requested ticker and answer with a single JSON object, no markdown, with the fields:
direction ("long" or "short"), entry (number), stopLoss (number), targets (array of
numbers, nearest first), confidence (integer 0 to 100), rationale (string) and risks
(array of strings). The stop must be below the entry for a long and above it for a short.
Do not size the position, it is computed from the user's risk budget.`

// planPrompt describes the request and the live quote to the model.
func planPrompt(req TradePlanRequest, q *market.Quote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticker: %s\nStrategy: %s\nTimeframe: %s\n", req.Ticker, req.Strategy, req.Timeframe)
	fmt.Fprintf(&b, "Portfolio size: %.2f\nRisk per trade: %g%%\n", req.PortfolioSize, req.RiskPercent)
	if q != nil {
		fmt.Fprintf(&b, "Last price: %.2f (%+.2f%%), open %.2f, high %.2f, low %.2f, previous close %.2f\n",
			q.Price, q.ChangePercent, q.Open, q.High, q.Low, q.PreviousClose)
	} else {
		b.WriteString("No live quote is available, base the levels on your own knowledge.\n")
	}
	return b.String()
}

// liveQuote fetches the quote of the requested ticker. A failure is logged
// and the plan proceeds without it.
func liveQuote(ctx context.Context, quotes market.Provider, log *zap.Logger, symbol string) *market.Quote {
	if quotes == nil {
		return nil
	}
	q, err := quotes.Quote(ctx, symbol)
	if err != nil {
		log.Warn("quote unavailable for trade plan", zap.String("symbol", symbol), zap.Error(err))
		return nil
	}
	return &q
}

// parseProposal decodes the model answer, tolerating a markdown code fence
// around the JSON object.
func parseProposal(text string) (proposal, error) {
	s := strings.TrimSpace(text)
	if i, j := strings.Index(s, "{"), strings.LastIndex(s, "}"); i >= 0 && j > i {
		s = s[i : j+1]
	}
	var p proposal
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return p, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	return p, nil
}

// finalize checks the proposed levels and sizes the position from the risk
// budget of the request.
func finalize(req TradePlanRequest, p proposal, q *market.Quote) (TradePlan, error) {
	side, err := tradedesk.ParseSide(p.Direction)
	if err != nil {
		return TradePlan{}, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	if !(p.Entry > 0) || !(p.StopLoss > 0) {
		return TradePlan{}, fmt.Errorf("%w: entry and stop must be positive", ErrBadResponse)
	}
	if (side == tradedesk.Long && p.StopLoss >= p.Entry) || (side == tradedesk.Short && p.StopLoss <= p.Entry) {
		return TradePlan{}, fmt.Errorf("%w: stop %.2f is on the wrong side of entry %.2f for a %s", ErrBadResponse, p.StopLoss, p.Entry, side)
	}
	size, err := tradedesk.SizePosition(tradedesk.RiskSettings{
		AccountSize:     req.PortfolioSize,
		MaxRiskPerTrade: tradedesk.Percent(req.RiskPercent),
		MaxPositionSize: 100,
	}, p.Entry, p.StopLoss)
	if err != nil {
		return TradePlan{}, err
	}
	plan := TradePlan{
		Ticker:        req.Ticker,
		Direction:     string(side),
		Entry:         p.Entry,
		StopLoss:      p.StopLoss,
		Targets:       p.Targets,
		PositionSize:  size.Shares,
		PositionValue: size.PositionValue,
		RiskAmount:    size.RiskAmount,
		Confidence:    max(0, min(100, p.Confidence)),
		Rationale:     p.Rationale,
		Risks:         p.Risks,
		Quote:         q,
	}
	if len(p.Targets) > 0 {
		plan.RiskReward = math.Abs(p.Targets[0]-p.Entry) / size.RiskPerShare
	}
	return plan, nil
}
