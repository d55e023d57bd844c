package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BacktestRecord is a strategy signal or a backtest run saved for a user.
// Webhook alerts are saved with Source "tradingview".
type BacktestRecord struct {
	ID             string              `gorm:"primaryKey;size:36" json:"id"`
	UserID         string              `gorm:"size:64;not null;index" json:"user_id"`
	Strategy       string              `gorm:"size:100;not null" json:"strategy"`
	Symbol         string              `gorm:"size:10;not null" json:"symbol"`
	Action         string              `gorm:"size:16" json:"action,omitempty"`
	Price          decimal.NullDecimal `gorm:"type:numeric(20,8)" json:"price"`
	Quantity       decimal.NullDecimal `gorm:"type:numeric(20,8)" json:"quantity"`
	Timeframe      string              `gorm:"size:16" json:"timeframe,omitempty"`
	EntryCondition string              `json:"entry_condition,omitempty"`
	ExitCondition  string              `json:"exit_condition,omitempty"`
	TotalReturn    *float64            `json:"total_return,omitempty"`
	Trades         *int                `json:"trades,omitempty"`
	Source         string              `gorm:"size:32" json:"source"`
	CreatedAt      time.Time           `gorm:"index" json:"created_at"`
}

func (BacktestRecord) TableName() string { return "backtest_results" }

// SaveBacktest inserts a record, assigning its id.
func (s *Store) SaveBacktest(ctx context.Context, r *BacktestRecord) error {
	if r.UserID == "" {
		return ErrMissingUser
	}
	r.ID = uuid.NewString()
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("failed to save backtest result: %w", err)
	}
	return nil
}

// Backtests lists the records of userID, newest first, at most limit when
// limit is positive.
func (s *Store) Backtests(ctx context.Context, userID string, limit int) ([]BacktestRecord, error) {
	db, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	var out []BacktestRecord
	if err := db.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list backtest results: %w", err)
	}
	return out, nil
}
