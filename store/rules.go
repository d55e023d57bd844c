package store

import (
	"context"
	"fmt"
	"time"

	"github.com/etnz/tradedesk"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

type ruleRow struct {
	ID          string `gorm:"primaryKey;size:36"`
	UserID      string `gorm:"size:64;not null;index"`
	Title       string `gorm:"size:200;not null"`
	Description string
	Category    string `gorm:"size:32;not null"`
	Enabled     bool   `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ruleRow) TableName() string { return "trading_rules" }

func (r ruleRow) rule() tradedesk.TradingRule {
	return tradedesk.TradingRule{ID: r.ID, Title: r.Title, Description: r.Description, Category: tradedesk.RuleCategory(r.Category), Enabled: r.Enabled}
}

// CreateRule validates and inserts a trading rule, assigning its id.
func (s *Store) CreateRule(ctx context.Context, userID string, r *tradedesk.TradingRule) error {
	if userID == "" {
		return ErrMissingUser
	}
	if err := r.Validate(); err != nil {
		return err
	}
	r.ID = uuid.NewString()
	row := ruleRow{ID: r.ID, UserID: userID, Title: r.Title, Description: r.Description, Category: string(r.Category), Enabled: r.Enabled}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create trading rule: %w", err)
	}
	return nil
}

// Rules lists the trading rules of userID, newest first.
func (s *Store) Rules(ctx context.Context, userID string) ([]tradedesk.TradingRule, error) {
	db, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	var rows []ruleRow
	if err := db.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list trading rules: %w", err)
	}
	out := make([]tradedesk.TradingRule, len(rows))
	for i, r := range rows {
		out[i] = r.rule()
	}
	return out, nil
}

// UpdateRule validates and overwrites a trading rule of userID.
func (s *Store) UpdateRule(ctx context.Context, userID string, r *tradedesk.TradingRule) error {
	db, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return err
	}
	tx := db.Model(&ruleRow{}).Where("id = ?", r.ID).Updates(map[string]any{
		"title":       r.Title,
		"description": r.Description,
		"category":    string(r.Category),
		"enabled":     r.Enabled,
	})
	return affected(tx, "trading rule "+r.ID)
}

// DeleteRule removes a trading rule of userID.
func (s *Store) DeleteRule(ctx context.Context, userID, id string) error {
	db, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	return affected(db.Where("id = ?", id).Delete(&ruleRow{}), "trading rule "+id)
}

type riskSettingsRow struct {
	UserID           string          `gorm:"primaryKey;size:64"`
	AccountSize      decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	MaxRiskPerTrade  float64         `gorm:"not null"`
	MaxDailyLoss     float64         `gorm:"not null"`
	MaxPositionSize  float64         `gorm:"not null"`
	MaxOpenPositions int             `gorm:"not null"`
	UpdatedAt        time.Time
}

func (riskSettingsRow) TableName() string { return "risk_settings" }

// RiskSettings returns the risk limits of userID, the defaults when the user
// never saved any.
func (s *Store) RiskSettings(ctx context.Context, userID string) (tradedesk.RiskSettings, error) {
	db, err := s.user(ctx, userID)
	if err != nil {
		return tradedesk.RiskSettings{}, err
	}
	var rows []riskSettingsRow
	if err := db.Limit(1).Find(&rows).Error; err != nil {
		return tradedesk.RiskSettings{}, fmt.Errorf("failed to read risk settings: %w", err)
	}
	if len(rows) == 0 {
		return tradedesk.DefaultRiskSettings(), nil
	}
	r := rows[0]
	return tradedesk.RiskSettings{
		AccountSize:      r.AccountSize.InexactFloat64(),
		MaxRiskPerTrade:  tradedesk.Percent(r.MaxRiskPerTrade),
		MaxDailyLoss:     tradedesk.Percent(r.MaxDailyLoss),
		MaxPositionSize:  tradedesk.Percent(r.MaxPositionSize),
		MaxOpenPositions: r.MaxOpenPositions,
	}, nil
}

// SaveRiskSettings validates and upserts the risk limits of userID.
func (s *Store) SaveRiskSettings(ctx context.Context, userID string, rs tradedesk.RiskSettings) error {
	if userID == "" {
		return ErrMissingUser
	}
	if err := rs.Validate(); err != nil {
		return err
	}
	row := riskSettingsRow{
		UserID:           userID,
		AccountSize:      decimal.NewFromFloat(rs.AccountSize),
		MaxRiskPerTrade:  float64(rs.MaxRiskPerTrade),
		MaxDailyLoss:     float64(rs.MaxDailyLoss),
		MaxPositionSize:  float64(rs.MaxPositionSize),
		MaxOpenPositions: rs.MaxOpenPositions,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save risk settings: %w", err)
	}
	return nil
}
