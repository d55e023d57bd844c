package tradedesk

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ValidationError reports an invalid input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

var tickerPattern = regexp.MustCompile(`^[A-Z]{1,10}$`)

// NormalizeTicker trims and upper-cases a ticker, then checks it against
// ^[A-Z]{1,10}$.
func NormalizeTicker(s string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	if !tickerPattern.MatchString(t) {
		return "", ValidationError{Field: "ticker", Message: fmt.Sprintf("%q must be 1 to 10 letters", s)}
	}
	return t, nil
}

// Trade plan bounds.
const (
	MinPortfolioSize = 100.0
	MaxPortfolioSize = 1e9
	MaxRiskPercent   = 10.0
)

// ValidatePortfolioSize checks a portfolio size is within [100, 1e9].
func ValidatePortfolioSize(size float64) error {
	if !(size >= MinPortfolioSize && size <= MaxPortfolioSize) {
		return ValidationError{Field: "portfolio_size", Message: fmt.Sprintf("must be between %g and %g", MinPortfolioSize, MaxPortfolioSize)}
	}
	return nil
}

// ValidateRiskPercent checks a per-trade risk is within (0, 10].
func ValidateRiskPercent(p float64) error {
	if !(p > 0 && p <= MaxRiskPercent) {
		return ValidationError{Field: "risk_percent", Message: fmt.Sprintf("must be greater than 0 and at most %g", MaxRiskPercent)}
	}
	return nil
}
