package tradedesk

import (
	"errors"
	"testing"
	"time"

	"github.com/etnz/tradedesk/date"
	"github.com/shopspring/decimal"
)

var opened = time.Date(2025, 3, 3, 14, 30, 0, 0, time.UTC)

func openTrade(symbol string, side Side, qty, entry float64) Trade {
	return Trade{Symbol: symbol, Side: side, Quantity: Q(qty), EntryPrice: USD(entry), OpenedAt: opened}
}

func closedTrade(side Side, qty, entry, exit, fees float64) Trade {
	t := openTrade("AAPL", side, qty, entry)
	closed := opened.Add(48 * time.Hour)
	exitPrice := USD(exit)
	t.ExitPrice, t.ClosedAt, t.Fees = &exitPrice, &closed, USD(fees)
	return t
}

func TestTradePnL(t *testing.T) {
	testCases := []struct {
		name  string
		trade Trade
		pnl   float64
		ret   Percent
	}{
		{"long win", closedTrade(Long, 10, 100, 110, 2), 98, 9.8},
		{"long loss", closedTrade(Long, 10, 100, 95, 0), -50, -5},
		{"short win", closedTrade(Short, 5, 50, 45, 0), 25, 10},
		{"short loss", closedTrade(Short, 5, 50, 55, 0), -25, -10},
		{"open", openTrade("MSFT", Long, 1, 300), 0, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.trade.PnL(); !got.Equal(USD(tc.pnl)) {
				t.Errorf("PnL() = %v, want %v", got, tc.pnl)
			}
			if got := tc.trade.ReturnPercent(); !got.Equal(tc.ret) {
				t.Errorf("ReturnPercent() = %v, want %v", got, tc.ret)
			}
		})
	}
}

func TestTradeClose(t *testing.T) {
	tr := openTrade("msft", Long, 2, 300)
	tr.ID = "t1"
	if err := tr.Validate(); err != nil {
		t.Fatal(err)
	}
	if tr.Symbol != "MSFT" {
		t.Errorf("Symbol = %q, want MSFT", tr.Symbol)
	}
	if err := tr.Close(USD(310), time.Now()); err != nil {
		t.Fatal(err)
	}
	if !tr.IsClosed() || !tr.PnL().Equal(USD(20)) {
		t.Errorf("closed trade PnL = %v", tr.PnL())
	}
	if err := tr.Close(USD(320), time.Now()); !IsValidationError(err) {
		t.Errorf("closing twice error = %v", err)
	}
}

func TestTradeRiskReward(t *testing.T) {
	tr := closedTrade(Long, 10, 100, 110, 0)
	stop := USD(95)
	tr.StopLoss = &stop
	if got := tr.RiskReward(); got != 2 {
		t.Errorf("RiskReward() = %v, want 2", got)
	}
}

func TestSummarizeTrades(t *testing.T) {
	trades := []Trade{
		closedTrade(Long, 10, 100, 110, 2),
		closedTrade(Short, 5, 50, 55, 0),
		closedTrade(Long, 1, 10, 10, 0),
		openTrade("TSLA", Long, 1, 200),
	}
	s := SummarizeTrades(trades)
	if s.Count != 4 || s.Open != 1 || s.Closed != 3 || s.Wins != 1 || s.Losses != 1 {
		t.Errorf("counts = %+v", s)
	}
	checks := []struct {
		name      string
		got, want Money
	}{
		{"GrossProfit", s.GrossProfit, USD(98)},
		{"GrossLoss", s.GrossLoss, USD(25)},
		{"NetPnL", s.NetPnL, USD(73)},
		{"AverageWin", s.AverageWin, USD(98)},
		{"AverageLoss", s.AverageLoss, USD(25)},
		{"LargestWin", s.LargestWin, USD(98)},
		{"LargestLoss", s.LargestLoss, USD(25)},
	}
	for _, c := range checks {
		if !c.got.Equal(c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if !near(s.ProfitFactor, 98.0/25, 1e-9) {
		t.Errorf("ProfitFactor = %v", s.ProfitFactor)
	}
	if !near(s.Expectancy.Float64(), 73.0/3, 1e-9) {
		t.Errorf("Expectancy = %v", s.Expectancy)
	}
	if !s.WinRate.Equal(PercentOf(1.0 / 3)) {
		t.Errorf("WinRate = %v", s.WinRate)
	}
	if empty := SummarizeTrades(nil); empty.Count != 0 || !empty.NetPnL.IsZero() || empty.ProfitFactor != 0 {
		t.Errorf("SummarizeTrades(nil) = %+v", empty)
	}
}

func TestTradeDecimalArithmetic(t *testing.T) {
	// 0.1 + 0.2 per share on 3 shares is exactly 0.9.
	tr := closedTrade(Long, 3, 0.1, 0.4, 0)
	if !tr.PnL().Equal(M(decimal.RequireFromString("0.9"), "USD")) {
		t.Errorf("PnL() = %s, want exactly 0.9", tr.PnL().Decimal())
	}
	fractional := openTrade("BRK", Long, 0.5, 400)
	if !fractional.Cost().Equal(USD(200)) {
		t.Errorf("Cost() = %v, want 200", fractional.Cost())
	}
}

func TestTradeValidate(t *testing.T) {
	negative := USD(-1)
	testCases := []struct {
		name  string
		edit  func(*Trade)
		field string
	}{
		{"zero quantity", func(t *Trade) { t.Quantity = Q(0) }, "quantity"},
		{"zero entry", func(t *Trade) { t.EntryPrice = Money{} }, "entry_price"},
		{"negative stop", func(t *Trade) { t.StopLoss = &negative }, "stop_loss"},
		{"negative fees", func(t *Trade) { t.Fees = negative }, "fees"},
		{"no opening time", func(t *Trade) { t.OpenedAt = time.Time{} }, "opened_at"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr := openTrade("AAPL", Long, 1, 100)
			tc.edit(&tr)
			var verr ValidationError
			if err := tr.Validate(); !errors.As(err, &verr) || verr.Field != tc.field {
				t.Errorf("Validate() error = %v, want a ValidationError on %s", err, tc.field)
			}
		})
	}
}

func TestTradesIn(t *testing.T) {
	march := closedTrade(Long, 1, 10, 11, 0)
	april := march
	april.OpenedAt = time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	got := TradesIn([]Trade{march, april}, date.Monthly.Range(date.New(2025, 4, 15)))
	if len(got) != 1 || !got[0].OpenedAt.Equal(april.OpenedAt) {
		t.Errorf("TradesIn(April) = %+v", got)
	}
}

func TestJournalEntryValidate(t *testing.T) {
	if err := (JournalEntry{Title: "", Date: date.New(2025, 1, 2)}).Validate(); !IsValidationError(err) {
		t.Errorf("empty title error = %v", err)
	}
	if err := (JournalEntry{Title: "Plan"}).Validate(); !IsValidationError(err) {
		t.Errorf("missing date error = %v", err)
	}
	if err := (JournalEntry{Title: "Plan", Date: date.New(2025, 1, 2)}).Validate(); err != nil {
		t.Errorf("valid entry error = %v", err)
	}
}
