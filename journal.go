package tradedesk

import (
	"fmt"
	"strings"
	"time"

	"github.com/etnz/tradedesk/date"
)

// Side is the direction of a trade.
type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

// ParseSide accepts long/short and the buy/sell synonyms.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "buy":
		return Long, nil
	case "short", "sell":
		return Short, nil
	}
	return "", ValidationError{Field: "side", Message: fmt.Sprintf("unknown side %q", s)}
}

// Trade is one journaled position. ExitPrice and ClosedAt are nil while the
// trade is open. Prices are per share, Fees is the total of the round trip.
type Trade struct {
	ID         string     `json:"id"`
	Symbol     string     `json:"symbol"`
	Side       Side       `json:"side"`
	Quantity   Quantity   `json:"quantity"`
	EntryPrice Money      `json:"entry_price"`
	ExitPrice  *Money     `json:"exit_price,omitempty"`
	StopLoss   *Money     `json:"stop_loss,omitempty"`
	Fees       Money      `json:"fees"`
	OpenedAt   time.Time  `json:"opened_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	Strategy   string     `json:"strategy,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// Validate checks the trade fields and normalizes the symbol.
func (t *Trade) Validate() error {
	sym, err := NormalizeTicker(t.Symbol)
	if err != nil {
		return err
	}
	t.Symbol = sym
	if t.Side != Long && t.Side != Short {
		return ValidationError{Field: "side", Message: fmt.Sprintf("unknown side %q", t.Side)}
	}
	if !t.Quantity.IsPositive() {
		return ValidationError{Field: "quantity", Message: "must be greater than zero"}
	}
	if !t.EntryPrice.IsPositive() {
		return ValidationError{Field: "entry_price", Message: "must be greater than zero"}
	}
	if t.ExitPrice != nil && !t.ExitPrice.IsPositive() {
		return ValidationError{Field: "exit_price", Message: "must be greater than zero"}
	}
	if t.StopLoss != nil && !t.StopLoss.IsPositive() {
		return ValidationError{Field: "stop_loss", Message: "must be greater than zero"}
	}
	if t.Fees.IsNegative() {
		return ValidationError{Field: "fees", Message: "must not be negative"}
	}
	if t.OpenedAt.IsZero() {
		return ValidationError{Field: "opened_at", Message: "must be set"}
	}
	return nil
}

// IsClosed reports whether the trade has an exit price.
func (t Trade) IsClosed() bool { return t.ExitPrice != nil }

// Close sets the exit of the trade.
func (t *Trade) Close(price Money, at time.Time) error {
	if !price.IsPositive() {
		return ValidationError{Field: "exit_price", Message: "must be greater than zero"}
	}
	if t.IsClosed() {
		return ValidationError{Field: "exit_price", Message: fmt.Sprintf("trade %s is already closed", t.ID)}
	}
	t.ExitPrice, t.ClosedAt = &price, &at
	return nil
}

// Cost is the capital committed at entry.
func (t Trade) Cost() Money { return t.EntryPrice.Mul(t.Quantity) }

// PnL is the realized profit net of fees, 0 while open.
func (t Trade) PnL() Money {
	if !t.IsClosed() {
		return Money{}
	}
	move := t.ExitPrice.Sub(t.EntryPrice)
	if t.Side == Short {
		move = move.Neg()
	}
	return move.Mul(t.Quantity).Sub(t.Fees)
}

// ReturnPercent is the PnL over the capital committed at entry, in percent.
func (t Trade) ReturnPercent() Percent {
	return PercentOf(t.PnL().Ratio(t.Cost()))
}

// RiskReward returns the realized reward over the initial risk (entry to
// stop), 0 if no stop is set.
func (t Trade) RiskReward() float64 {
	if t.StopLoss == nil || !t.IsClosed() {
		return 0
	}
	risk := t.EntryPrice.Sub(*t.StopLoss).Abs().Mul(t.Quantity)
	return t.PnL().Ratio(risk)
}

// JournalEntry is a free form journal note, optionally attached to a trade.
type JournalEntry struct {
	ID      string    `json:"id"`
	Date    date.Date `json:"date"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	Mood    string    `json:"mood,omitempty"`
	Tags    []string  `json:"tags,omitempty"`
	TradeID string    `json:"trade_id,omitempty"`
}

// Validate checks the entry has a title and a date.
func (e JournalEntry) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ValidationError{Field: "title", Message: "must not be empty"}
	}
	if e.Date.IsZero() {
		return ValidationError{Field: "date", Message: "must be set"}
	}
	return nil
}

// TradeStats summarizes a set of trades. Only closed trades contribute to
// the performance figures. Losses are positive amounts.
type TradeStats struct {
	Count        int     `json:"count"`
	Open         int     `json:"open"`
	Closed       int     `json:"closed"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      Percent `json:"win_rate"`
	GrossProfit  Money   `json:"gross_profit"`
	GrossLoss    Money   `json:"gross_loss"`
	NetPnL       Money   `json:"net_pnl"`
	ProfitFactor float64 `json:"profit_factor"`
	AverageWin   Money   `json:"average_win"`
	AverageLoss  Money   `json:"average_loss"`
	Expectancy   Money   `json:"expectancy"`
	LargestWin   Money   `json:"largest_win"`
	LargestLoss  Money   `json:"largest_loss"`
}

// SummarizeTrades computes journal statistics. A break-even trade counts as
// neither win nor loss. ProfitFactor is 0 when there is no loss.
func SummarizeTrades(trades []Trade) TradeStats {
	var s TradeStats
	s.Count = len(trades)
	for _, t := range trades {
		if !t.IsClosed() {
			s.Open++
			continue
		}
		s.Closed++
		pnl := t.PnL()
		s.NetPnL = s.NetPnL.Add(pnl)
		switch {
		case pnl.IsPositive():
			s.Wins++
			s.GrossProfit = s.GrossProfit.Add(pnl)
			s.LargestWin = s.LargestWin.Max(pnl)
		case pnl.IsNegative():
			s.Losses++
			s.GrossLoss = s.GrossLoss.Add(pnl.Abs())
			s.LargestLoss = s.LargestLoss.Max(pnl.Abs())
		}
	}
	if s.Closed > 0 {
		s.WinRate = PercentOf(float64(s.Wins) / float64(s.Closed))
		s.Expectancy = s.NetPnL.DivInt(s.Closed)
	}
	if s.Wins > 0 {
		s.AverageWin = s.GrossProfit.DivInt(s.Wins)
	}
	if s.Losses > 0 {
		s.AverageLoss = s.GrossLoss.DivInt(s.Losses)
	}
	s.ProfitFactor = s.GrossProfit.Ratio(s.GrossLoss)
	return s
}

// TradesIn keeps the trades opened within r.
func TradesIn(trades []Trade, r date.Range) []Trade {
	var out []Trade
	for _, t := range trades {
		if r.Contains(date.Of(t.OpenedAt)) {
			out = append(out, t)
		}
	}
	return out
}
