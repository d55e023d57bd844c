package store

import (
	"context"
	"fmt"
	"time"

	"github.com/etnz/tradedesk"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type tradeRow struct {
	ID         string              `gorm:"primaryKey;size:36"`
	UserID     string              `gorm:"size:64;not null;index"`
	Symbol     string              `gorm:"size:10;not null"`
	Side       string              `gorm:"size:8;not null"`
	Quantity   decimal.Decimal     `gorm:"type:numeric(20,8);not null"`
	EntryPrice decimal.Decimal     `gorm:"type:numeric(20,8);not null"`
	ExitPrice  decimal.NullDecimal `gorm:"type:numeric(20,8)"`
	StopLoss   decimal.NullDecimal `gorm:"type:numeric(20,8)"`
	Fees       decimal.Decimal     `gorm:"type:numeric(20,8);not null;default:0"`
	OpenedAt   time.Time           `gorm:"not null;index"`
	ClosedAt   *time.Time
	Strategy   string `gorm:"size:100"`
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (tradeRow) TableName() string { return "trades" }

func nullDecimal(m *tradedesk.Money) decimal.NullDecimal {
	if m == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(m.Decimal())
}

func moneyPtr(d decimal.NullDecimal) *tradedesk.Money {
	if !d.Valid {
		return nil
	}
	m := tradedesk.USD(d.Decimal)
	return &m
}

func newTradeRow(userID string, t tradedesk.Trade) tradeRow {
	return tradeRow{
		ID:         t.ID,
		UserID:     userID,
		Symbol:     t.Symbol,
		Side:       string(t.Side),
		Quantity:   t.Quantity.Decimal(),
		EntryPrice: t.EntryPrice.Decimal(),
		ExitPrice:  nullDecimal(t.ExitPrice),
		StopLoss:   nullDecimal(t.StopLoss),
		Fees:       t.Fees.Decimal(),
		OpenedAt:   t.OpenedAt.UTC(),
		ClosedAt:   t.ClosedAt,
		Strategy:   t.Strategy,
		Notes:      t.Notes,
	}
}

func (r tradeRow) trade() tradedesk.Trade {
	return tradedesk.Trade{
		ID:         r.ID,
		Symbol:     r.Symbol,
		Side:       tradedesk.Side(r.Side),
		Quantity:   tradedesk.Q(r.Quantity),
		EntryPrice: tradedesk.USD(r.EntryPrice),
		ExitPrice:  moneyPtr(r.ExitPrice),
		StopLoss:   moneyPtr(r.StopLoss),
		Fees:       tradedesk.USD(r.Fees),
		OpenedAt:   r.OpenedAt,
		ClosedAt:   r.ClosedAt,
		Strategy:   r.Strategy,
		Notes:      r.Notes,
	}
}

// CreateTrade validates and inserts t, assigning its id, and its opening
// time when unset.
func (s *Store) CreateTrade(ctx context.Context, userID string, t *tradedesk.Trade) error {
	if userID == "" {
		return ErrMissingUser
	}
	if t.OpenedAt.IsZero() {
		t.OpenedAt = time.Now().UTC()
	}
	if err := t.Validate(); err != nil {
		return err
	}
	t.ID = uuid.NewString()
	row := newTradeRow(userID, *t)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}
	return nil
}

// Trade returns one trade of userID.
func (s *Store) Trade(ctx context.Context, userID, id string) (tradedesk.Trade, error) {
	db, err := s.user(ctx, userID)
	if err != nil {
		return tradedesk.Trade{}, err
	}
	var row tradeRow
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		return tradedesk.Trade{}, notFound(err, "trade "+id)
	}
	return row.trade(), nil
}

// Trades lists the trades of userID, most recently opened first.
func (s *Store) Trades(ctx context.Context, userID string) ([]tradedesk.Trade, error) {
	db, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	var rows []tradeRow
	if err := db.Order("opened_at DESC, created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	out := make([]tradedesk.Trade, len(rows))
	for i, r := range rows {
		out[i] = r.trade()
	}
	return out, nil
}

// UpdateTrade validates and overwrites a trade of userID. A zero opening
// time keeps the stored one.
func (s *Store) UpdateTrade(ctx context.Context, userID string, t *tradedesk.Trade) error {
	db, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if t.OpenedAt.IsZero() {
		stored, err := s.Trade(ctx, userID, t.ID)
		if err != nil {
			return err
		}
		t.OpenedAt = stored.OpenedAt
	}
	if err := t.Validate(); err != nil {
		return err
	}
	row := newTradeRow(userID, *t)
	tx := db.Model(&tradeRow{}).Where("id = ?", t.ID).Select("*").Omit("id", "user_id", "created_at").Updates(&row)
	return affected(tx, "trade "+t.ID)
}

// CloseTrade records the exit of an open trade.
func (s *Store) CloseTrade(ctx context.Context, userID, id string, price tradedesk.Money, at time.Time) (tradedesk.Trade, error) {
	t, err := s.Trade(ctx, userID, id)
	if err != nil {
		return t, err
	}
	if err := t.Close(price, at.UTC()); err != nil {
		return t, err
	}
	return t, s.UpdateTrade(ctx, userID, &t)
}

// DeleteTrade removes a trade of userID.
func (s *Store) DeleteTrade(ctx context.Context, userID, id string) error {
	db, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	return affected(db.Where("id = ?", id).Delete(&tradeRow{}), "trade "+id)
}
