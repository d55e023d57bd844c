package tradedesk

import "fmt"

// Percent is a ratio expressed in percent units: 6 means 6%.
type Percent float64

// Rate returns the percent as a plain ratio (6% is 0.06).
func (p Percent) Rate() float64 { return float64(p) / 100 }

// PercentOf converts a plain ratio into a Percent.
func PercentOf(rate float64) Percent { return Percent(rate * 100) }

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", float64(p))
	if res == "+0.00%" || res == "-0.00%" {
		return "-"
	}
	return res
}
