package tradedesk

import (
	"fmt"
	"math"
)

// RiskSettings are a user's risk management limits. Percentages are of the
// account size.
type RiskSettings struct {
	AccountSize      float64 `json:"account_size" yaml:"account_size"`
	MaxRiskPerTrade  Percent `json:"max_risk_per_trade" yaml:"max_risk_per_trade"`
	MaxDailyLoss     Percent `json:"max_daily_loss" yaml:"max_daily_loss"`
	MaxPositionSize  Percent `json:"max_position_size" yaml:"max_position_size"`
	MaxOpenPositions int     `json:"max_open_positions" yaml:"max_open_positions"`
}

// DefaultRiskSettings are used until the user saves their own.
func DefaultRiskSettings() RiskSettings {
	return RiskSettings{
		AccountSize:      10000,
		MaxRiskPerTrade:  1,
		MaxDailyLoss:     3,
		MaxPositionSize:  20,
		MaxOpenPositions: 5,
	}
}

// Validate checks every limit is within its allowed range.
func (s RiskSettings) Validate() error {
	if err := ValidatePortfolioSize(s.AccountSize); err != nil {
		return ValidationError{Field: "account_size", Message: err.(ValidationError).Message}
	}
	if err := ValidateRiskPercent(float64(s.MaxRiskPerTrade)); err != nil {
		return ValidationError{Field: "max_risk_per_trade", Message: err.(ValidationError).Message}
	}
	if s.MaxDailyLoss <= 0 || s.MaxDailyLoss > 100 {
		return ValidationError{Field: "max_daily_loss", Message: "must be within (0, 100]"}
	}
	if s.MaxPositionSize <= 0 || s.MaxPositionSize > 100 {
		return ValidationError{Field: "max_position_size", Message: "must be within (0, 100]"}
	}
	if s.MaxOpenPositions <= 0 {
		return ValidationError{Field: "max_open_positions", Message: "must be greater than zero"}
	}
	return nil
}

// PositionSize is the outcome of SizePosition.
type PositionSize struct {
	Shares        int     `json:"shares"`
	PositionValue float64 `json:"position_value"`
	RiskPerShare  float64 `json:"risk_per_share"`
	RiskAmount    float64 `json:"risk_amount"`     // actual risk of Shares
	RiskBudget    float64 `json:"risk_budget"`     // allowed risk
	CappedByLimit bool    `json:"capped_by_limit"` // max position size was binding
}

// SizePosition returns the whole number of shares whose loss at the stop
// stays within the per-trade risk budget and whose value stays within the
// position size limit.
func SizePosition(s RiskSettings, entry, stop float64) (PositionSize, error) {
	if entry <= 0 || stop <= 0 {
		return PositionSize{}, ValidationError{Field: "entry", Message: "entry and stop must be greater than zero"}
	}
	if entry == stop {
		return PositionSize{}, ValidationError{Field: "stop", Message: "stop must differ from entry"}
	}
	p := PositionSize{
		RiskPerShare: math.Abs(entry - stop),
		RiskBudget:   s.AccountSize * s.MaxRiskPerTrade.Rate(),
	}
	shares := math.Floor(p.RiskBudget / p.RiskPerShare)
	if s.MaxPositionSize > 0 {
		limit := math.Floor(s.AccountSize * s.MaxPositionSize.Rate() / entry)
		if limit < shares {
			shares, p.CappedByLimit = limit, true
		}
	}
	p.Shares = int(math.Max(0, shares))
	p.PositionValue = float64(p.Shares) * entry
	p.RiskAmount = float64(p.Shares) * p.RiskPerShare
	return p, nil
}

// Exposure is the state of the account a new trade is checked against.
type Exposure struct {
	OpenPositions int     `json:"open_positions"`
	RealizedToday float64 `json:"realized_today"` // negative for a loss
	NewPosition   float64 `json:"new_position"`   // value of the trade to open
	NewRisk       float64 `json:"new_risk"`
}

// Violation is a broken risk rule.
type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// CheckTrade lists the limits a new trade would break. An empty result means
// the trade is allowed.
func CheckTrade(s RiskSettings, e Exposure) []Violation {
	var v []Violation
	if s.MaxOpenPositions > 0 && e.OpenPositions >= s.MaxOpenPositions {
		v = append(v, Violation{"max_open_positions", fmt.Sprintf("%d positions already open, limit is %d", e.OpenPositions, s.MaxOpenPositions)})
	}
	if limit := s.AccountSize * s.MaxDailyLoss.Rate(); e.RealizedToday < 0 && -e.RealizedToday >= limit {
		v = append(v, Violation{"max_daily_loss", fmt.Sprintf("daily loss %.2f reached the %.2f limit", -e.RealizedToday, limit)})
	}
	if limit := s.AccountSize * s.MaxPositionSize.Rate(); e.NewPosition > limit {
		v = append(v, Violation{"max_position_size", fmt.Sprintf("position %.2f exceeds the %.2f limit", e.NewPosition, limit)})
	}
	if limit := s.AccountSize * s.MaxRiskPerTrade.Rate(); e.NewRisk > limit {
		v = append(v, Violation{"max_risk_per_trade", fmt.Sprintf("risk %.2f exceeds the %.2f limit", e.NewRisk, limit)})
	}
	return v
}

// RuleCategory groups trading rules.
type RuleCategory string

const (
	RuleEntry RuleCategory = "entry"
	RuleExit  RuleCategory = "exit"
	RuleRisk  RuleCategory = "risk"
	RuleMind  RuleCategory = "psychology"
)

// TradingRule is a personal trading rule the user commits to.
type TradingRule struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    RuleCategory `json:"category"`
	Enabled     bool         `json:"enabled"`
}

// Validate checks the rule has a title and a known category.
func (r TradingRule) Validate() error {
	if r.Title == "" {
		return ValidationError{Field: "title", Message: "must not be empty"}
	}
	switch r.Category {
	case RuleEntry, RuleExit, RuleRisk, RuleMind:
		return nil
	}
	return ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", r.Category)}
}
