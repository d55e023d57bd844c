package tradedesk

import "math"

// ReturnStats summarizes a series of periodic returns. Returns, rates and
// drawdowns are fractions.
type ReturnStats struct {
	Periods          int     `json:"periods"`
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	Mean             float64 `json:"mean"`
	Volatility       float64 `json:"volatility"` // annualized sample standard deviation
	Sharpe           float64 `json:"sharpe"`
	Sortino          float64 `json:"sortino"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	WinRate          float64 `json:"win_rate"`
	Best             float64 `json:"best"`
	Worst            float64 `json:"worst"`
}

// AnalyzeReturns computes performance statistics of periodic returns.
// riskFree is an annual rate. Empty input yields zero stats and ratios with
// a zero denominator are 0.
func AnalyzeReturns(returns []float64, periodsPerYear int, riskFree float64) ReturnStats {
	var s ReturnStats
	n := len(returns)
	if n == 0 {
		return s
	}
	if periodsPerYear <= 0 {
		periodsPerYear = 252
	}
	ppy := float64(periodsPerYear)
	s.Periods = n
	s.Best, s.Worst = returns[0], returns[0]

	growth, peak := 1.0, 1.0
	var sum, wins float64
	for _, r := range returns {
		sum += r
		if r > 0 {
			wins++
		}
		s.Best = math.Max(s.Best, r)
		s.Worst = math.Min(s.Worst, r)
		growth *= 1 + r
		peak = math.Max(peak, growth)
		s.MaxDrawdown = math.Max(s.MaxDrawdown, (peak-growth)/peak)
	}
	s.Mean = sum / float64(n)
	s.WinRate = wins / float64(n)
	s.TotalReturn = growth - 1
	if growth > 0 {
		s.AnnualizedReturn = math.Pow(growth, ppy/float64(n)) - 1
	} else {
		s.AnnualizedReturn = -1
	}

	rfPeriod := riskFree / ppy
	var sq, downside float64
	for _, r := range returns {
		sq += (r - s.Mean) * (r - s.Mean)
		if ex := r - rfPeriod; ex < 0 {
			downside += ex * ex
		}
	}
	var stdev float64
	if n > 1 {
		stdev = math.Sqrt(sq / float64(n-1))
	}
	s.Volatility = stdev * math.Sqrt(ppy)
	excess := (s.Mean - rfPeriod) * ppy
	if s.Volatility > 0 {
		s.Sharpe = excess / s.Volatility
	}
	if dd := math.Sqrt(downside/float64(n)) * math.Sqrt(ppy); dd > 0 {
		s.Sortino = excess / dd
	}
	return s
}

// SimpleReturns converts a price series into period over period returns.
// Non positive prices yield a zero return for the period they start.
func SimpleReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] > 0 {
			out[i-1] = prices[i]/prices[i-1] - 1
		}
	}
	return out
}
