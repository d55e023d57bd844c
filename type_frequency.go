package tradedesk

import (
	"fmt"
	"strings"
)

// PayFrequency is how often a paycheck is issued.
type PayFrequency string

const (
	Weekly      PayFrequency = "weekly"
	Biweekly    PayFrequency = "biweekly"
	Semimonthly PayFrequency = "semimonthly"
	Monthly     PayFrequency = "monthly"
)

// DefaultPeriodsPerYear is used for unknown frequencies.
const DefaultPeriodsPerYear = 26

// PeriodsPerYear returns the number of paychecks in a year.
// Unknown frequencies default to biweekly.
func (f PayFrequency) PeriodsPerYear() int {
	switch f {
	case Weekly:
		return 52
	case Biweekly:
		return 26
	case Semimonthly:
		return 24
	case Monthly:
		return 12
	default:
		return DefaultPeriodsPerYear
	}
}

// Name returns the human name of the period (e.g., "week", "month").
func (f PayFrequency) Name() string {
	switch f {
	case Weekly:
		return "week"
	case Semimonthly:
		return "half-month"
	case Monthly:
		return "month"
	default:
		return "two weeks"
	}
}

// ParsePayFrequency is strict, unlike PeriodsPerYear: it rejects unknown names.
func ParsePayFrequency(s string) (PayFrequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekly", "week", "w":
		return Weekly, nil
	case "biweekly", "bi-weekly", "fortnightly", "b":
		return Biweekly, nil
	case "semimonthly", "semi-monthly", "s":
		return Semimonthly, nil
	case "monthly", "month", "m":
		return Monthly, nil
	default:
		return "", fmt.Errorf("unknown pay frequency %q, expected weekly, biweekly, semimonthly or monthly", s)
	}
}
