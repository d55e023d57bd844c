package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/tradedesk"
	"github.com/etnz/tradedesk/agent"
	"github.com/etnz/tradedesk/market"
)

// Trades lists journaled trades, newest first as given.
func Trades(trades []tradedesk.Trade) Report {
	t := Table{
		Header:  []string{"Opened", "Symbol", "Side", "Quantity", "Entry", "Exit", "P&L", "Return"},
		Numeric: []bool{false, false, false, true, true, true, true, true},
	}
	for _, tr := range trades {
		exit, pnl, ret := "open", "", ""
		if tr.IsClosed() {
			exit = amount(tr.ExitPrice.Float64())
			pnl = usd(tr.PnL().Float64())
			ret = tr.ReturnPercent().SignedString()
		}
		t.Rows = append(t.Rows, []string{
			tr.OpenedAt.Format("2006-01-02"), tr.Symbol, string(tr.Side),
			tr.Quantity.String(), amount(tr.EntryPrice.Float64()), exit, pnl, ret,
		})
	}
	return Report{Title: "Trades", Tables: []Table{t}}
}

// TradeStats reports the journal performance.
func TradeStats(s tradedesk.TradeStats) Report {
	return Report{
		Title: "Trading Statistics",
		Figures: []Figure{
			{"Net P&L", usd(s.NetPnL.Float64())},
			{"Win rate", s.WinRate.String()},
			{"Profit factor", ratio(s.ProfitFactor)},
		},
		Tables: []Table{{
			Header: []string{"Statistic", "Value"},
			Rows: [][]string{
				{"Trades", fmt.Sprintf("%d (%d open, %d closed)", s.Count, s.Open, s.Closed)},
				{"Wins / losses", fmt.Sprintf("%d / %d", s.Wins, s.Losses)},
				{"Gross profit", usd(s.GrossProfit.Float64())},
				{"Gross loss", usd(s.GrossLoss.Float64())},
				{"Average win", usd(s.AverageWin.Float64())},
				{"Average loss", usd(s.AverageLoss.Float64())},
				{"Expectancy", usd(s.Expectancy.Float64())},
				{"Largest win", usd(s.LargestWin.Float64())},
				{"Largest loss", usd(s.LargestLoss.Float64())},
			},
			Numeric: []bool{false, true},
		}},
	}
}

// Quote reports a live quote.
func Quote(q market.Quote) Report {
	title := q.Symbol
	if q.Name != "" {
		title = fmt.Sprintf("%s (%s)", q.Name, q.Symbol)
	}
	r := Report{
		Title: title,
		Figures: []Figure{
			{"Price", amount(q.Price)},
			{"Change", fmt.Sprintf("%+.2f (%+.2f%%)", q.Change, q.ChangePercent)},
		},
	}
	if q.PreviousClose > 0 {
		r.Tables = append(r.Tables, Table{
			Header:  []string{"Open", "High", "Low", "Previous close"},
			Rows:    [][]string{{amount(q.Open), amount(q.High), amount(q.Low), amount(q.PreviousClose)}},
			Numeric: []bool{true, true, true, true},
		})
	}
	if !q.Time.IsZero() {
		r.Notes = append(r.Notes, "As of "+q.Time.Format("2006-01-02 15:04 MST")+".")
	}
	return r
}

// TradePlan reports a generated trade plan.
func TradePlan(p agent.TradePlan) Report {
	targets := make([]string, len(p.Targets))
	for i, t := range p.Targets {
		targets[i] = amount(t)
	}
	r := Report{
		Title: fmt.Sprintf("Trade Plan: %s %s", strings.ToUpper(p.Direction), p.Ticker),
		Figures: []Figure{
			{"Entry", amount(p.Entry)},
			{"Stop loss", amount(p.StopLoss)},
			{"Targets", strings.Join(targets, ", ")},
			{"Position", fmt.Sprintf("%d shares (%s)", p.PositionSize, usd(p.PositionValue))},
			{"Risk", usd(p.RiskAmount)},
			{"Risk/reward", ratio(p.RiskReward)},
			{"Confidence", fmt.Sprintf("%d%%", p.Confidence)},
		},
	}
	if p.Rationale != "" {
		r.Notes = append(r.Notes, p.Rationale)
	}
	if len(p.Risks) > 0 {
		t := Table{Title: "Risks", Header: []string{"Risk"}}
		for _, risk := range p.Risks {
			t.Rows = append(t.Rows, []string{risk})
		}
		r.Tables = append(r.Tables, t)
	}
	return r
}
