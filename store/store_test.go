package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/etnz/tradedesk"
	"github.com/etnz/tradedesk/config"
	"github.com/etnz/tradedesk/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

func TestTrades_CRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := &tradedesk.Trade{Symbol: " aapl ", Side: tradedesk.Long, Quantity: tradedesk.Q(10), EntryPrice: tradedesk.USD(150.25), StopLoss: ptr(tradedesk.USD(145)),
		OpenedAt: time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)}
	require.NoError(t, s.CreateTrade(ctx, "alice", first))
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "AAPL", first.Symbol)

	second := &tradedesk.Trade{Symbol: "MSFT", Side: tradedesk.Short, Quantity: tradedesk.Q(5), EntryPrice: tradedesk.USD(400),
		OpenedAt: time.Date(2025, 3, 2, 15, 0, 0, 0, time.UTC)}
	require.NoError(t, s.CreateTrade(ctx, "alice", second))

	trades, err := s.Trades(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, second.ID, trades[0].ID, "newest first")
	assert.True(t, trades[1].EntryPrice.Equal(tradedesk.USD(150.25)), "entry %v", trades[1].EntryPrice)
	assert.True(t, trades[1].Quantity.Equal(tradedesk.Q(10)))
	require.NotNil(t, trades[1].StopLoss)
	assert.True(t, trades[1].StopLoss.Equal(tradedesk.USD(145)))
	assert.False(t, trades[1].IsClosed())

	closed, err := s.CloseTrade(ctx, "alice", first.ID, tradedesk.USD(160), time.Date(2025, 3, 5, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, closed.PnL().Equal(tradedesk.USD(97.5)), "pnl %v", closed.PnL())

	got, err := s.Trade(ctx, "alice", first.ID)
	require.NoError(t, err)
	require.True(t, got.IsClosed())
	assert.True(t, got.ExitPrice.Equal(tradedesk.USD(160)))
	assert.True(t, got.OpenedAt.Equal(first.OpenedAt), "opened %v", got.OpenedAt)

	_, err = s.CloseTrade(ctx, "alice", first.ID, tradedesk.USD(170), time.Now())
	assert.True(t, tradedesk.IsValidationError(err), "closing twice")

	require.NoError(t, s.DeleteTrade(ctx, "alice", second.ID))
	assert.ErrorIs(t, s.DeleteTrade(ctx, "alice", second.ID), ErrNotFound)
}

func TestTrades_ScopedByUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tr := &tradedesk.Trade{Symbol: "NVDA", Side: tradedesk.Long, Quantity: tradedesk.Q(1), EntryPrice: tradedesk.USD(900)}
	require.NoError(t, s.CreateTrade(ctx, "alice", tr))

	_, err := s.Trade(ctx, "bob", tr.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteTrade(ctx, "bob", tr.ID), ErrNotFound)

	tr.Notes = "hijacked"
	assert.ErrorIs(t, s.UpdateTrade(ctx, "bob", tr), ErrNotFound)

	trades, err := s.Trades(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, trades)

	_, err = s.Trades(ctx, "")
	assert.ErrorIs(t, err, ErrMissingUser)
}

func TestTrades_Invalid(t *testing.T) {
	s := newTestStore(t)
	err := s.CreateTrade(context.Background(), "alice", &tradedesk.Trade{Symbol: "TOOLONGTICKER", Side: tradedesk.Long, Quantity: tradedesk.Q(1), EntryPrice: tradedesk.USD(1)})
	assert.True(t, tradedesk.IsValidationError(err))
}

func TestUpdateTrade_KeepsOpeningTime(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	opened := time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)
	tr := &tradedesk.Trade{Symbol: "AMD", Side: tradedesk.Long, Quantity: tradedesk.Q(3), EntryPrice: tradedesk.USD(120), OpenedAt: opened}
	require.NoError(t, s.CreateTrade(ctx, "alice", tr))

	edit := tradedesk.Trade{ID: tr.ID, Symbol: "AMD", Side: tradedesk.Long, Quantity: tradedesk.Q(4), EntryPrice: tradedesk.USD(121)}
	require.NoError(t, s.UpdateTrade(ctx, "alice", &edit))

	got, err := s.Trade(ctx, "alice", tr.ID)
	require.NoError(t, err)
	assert.True(t, got.OpenedAt.Equal(opened), "opened %v", got.OpenedAt)
	assert.True(t, got.Quantity.Equal(tradedesk.Q(4)))

	edit.ID, edit.OpenedAt = "missing", time.Time{}
	assert.ErrorIs(t, s.UpdateTrade(ctx, "alice", &edit), ErrNotFound)
}

func TestJournal(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, d := range []string{"2025-01-10", "2025-02-10", "2025-03-10"} {
		e := &tradedesk.JournalEntry{Date: date.MustParse(d), Title: "notes " + d, Tags: []string{"review", "fomo"}}
		require.NoError(t, s.CreateEntry(ctx, "alice", e))
	}

	all, err := s.Entries(ctx, "alice", date.Range{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "notes 2025-03-10", all[0].Title)
	assert.Equal(t, []string{"review", "fomo"}, all[0].Tags)
	assert.Equal(t, date.New(2025, 3, 10), all[0].Date)

	feb, err := s.Entries(ctx, "alice", date.NewRange(date.New(2025, 2, 1), date.New(2025, 2, 28)))
	require.NoError(t, err)
	require.Len(t, feb, 1)

	e := feb[0]
	e.Mood = "calm"
	require.NoError(t, s.UpdateEntry(ctx, "alice", &e))
	feb, err = s.Entries(ctx, "alice", date.NewRange(date.New(2025, 2, 1), date.New(2025, 2, 28)))
	require.NoError(t, err)
	assert.Equal(t, "calm", feb[0].Mood)

	assert.ErrorIs(t, s.DeleteEntry(ctx, "bob", e.ID), ErrNotFound)
	require.NoError(t, s.DeleteEntry(ctx, "alice", e.ID))

	err = s.CreateEntry(ctx, "alice", &tradedesk.JournalEntry{})
	assert.True(t, tradedesk.IsValidationError(err))
}

func TestRules(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	r := &tradedesk.TradingRule{Title: "No trades in the first 15 minutes", Category: tradedesk.RuleEntry, Enabled: true}
	require.NoError(t, s.CreateRule(ctx, "alice", r))

	r.Enabled = false
	require.NoError(t, s.UpdateRule(ctx, "alice", r))

	rules, err := s.Rules(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.False(t, rules[0].Enabled)

	assert.ErrorIs(t, s.UpdateRule(ctx, "bob", r), ErrNotFound)
	require.NoError(t, s.DeleteRule(ctx, "alice", r.ID))
	assert.ErrorIs(t, s.DeleteRule(ctx, "alice", r.ID), ErrNotFound)
}

func TestRiskSettings(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rs, err := s.RiskSettings(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, tradedesk.DefaultRiskSettings(), rs)

	rs.AccountSize = 25000
	rs.MaxRiskPerTrade = 2
	require.NoError(t, s.SaveRiskSettings(ctx, "alice", rs))
	rs.MaxOpenPositions = 8
	require.NoError(t, s.SaveRiskSettings(ctx, "alice", rs), "second save updates")

	got, err := s.RiskSettings(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, rs, got)

	rs.MaxRiskPerTrade = 50
	assert.True(t, tradedesk.IsValidationError(s.SaveRiskSettings(ctx, "alice", rs)))
}

func TestBacktests(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, strategy := range []string{"sma-cross", "breakout"} {
		require.NoError(t, s.SaveBacktest(ctx, &BacktestRecord{
			UserID: "alice", Strategy: strategy, Symbol: "SPY", Action: "buy",
			Price: decimal.NewNullDecimal(decimal.RequireFromString("512.30")), Source: "tradingview",
		}))
		time.Sleep(2 * time.Millisecond)
	}
	got, err := s.Backtests(ctx, "alice", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "breakout", got[0].Strategy)
	assert.True(t, got[0].Price.Decimal.Equal(decimal.RequireFromString("512.30")))

	assert.ErrorIs(t, s.SaveBacktest(ctx, &BacktestRecord{Strategy: "x"}), ErrMissingUser)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "mysql"}, nil)
	assert.Error(t, err)
}

// newMockStore runs the store against the postgres dialect with a mocked
// connection.
func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return New(db), mock
}

func TestPostgres_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT \* FROM "trades" WHERE user_id = \$1 AND id = \$2`).
		WithArgs("alice", "missing", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.Trade(context.Background(), "alice", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DeleteNothing(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`DELETE FROM "trading_rules" WHERE user_id = \$1 AND id = \$2`).
		WithArgs("alice", "r1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.DeleteRule(context.Background(), "alice", "r1"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_QueryError(t *testing.T) {
	s, mock := newMockStore(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT \* FROM "journal_entries" WHERE user_id = \$1`).
		WithArgs("alice").
		WillReturnError(boom)

	_, err := s.Entries(context.Background(), "alice", date.Range{})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
