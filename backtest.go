package tradedesk

import (
	"fmt"
	"math"
)

// BacktestInput configures a long only moving average crossover: the
// strategy holds the asset while the fast average of closes is above the
// slow one, deciding at each close for the next period.
type BacktestInput struct {
	Closes         []float64 `json:"closes" yaml:"closes"`
	Fast           int       `json:"fast" yaml:"fast"`
	Slow           int       `json:"slow" yaml:"slow"`
	InitialCapital float64   `json:"initial_capital" yaml:"initial_capital"`
	Fee            float64   `json:"fee" yaml:"fee"` // fraction charged on each position change
	PeriodsPerYear int       `json:"periods_per_year" yaml:"periods_per_year"`
}

// BacktestResult is the outcome of Backtest.
type BacktestResult struct {
	Fast          int         `json:"fast"`
	Slow          int         `json:"slow"`
	Trades        int         `json:"trades"`
	WinningTrades int         `json:"winning_trades"`
	TotalReturn   float64     `json:"total_return"`
	BuyAndHold    float64     `json:"buy_and_hold_return"`
	FinalEquity   float64     `json:"final_equity"`
	Stats         ReturnStats `json:"stats"`
	Equity        []float64   `json:"equity"`
}

func (in BacktestInput) validate() error {
	if in.Fast <= 0 || in.Slow <= in.Fast {
		return ValidationError{Field: "fast", Message: fmt.Sprintf("need 0 < fast < slow, got %d and %d", in.Fast, in.Slow)}
	}
	if len(in.Closes) < in.Slow+1 {
		return ValidationError{Field: "closes", Message: fmt.Sprintf("need at least %d closes", in.Slow+1)}
	}
	for i, c := range in.Closes {
		if !(c > 0) {
			return ValidationError{Field: "closes", Message: fmt.Sprintf("close #%d is not positive", i)}
		}
	}
	if in.Fee < 0 || in.Fee >= 1 {
		return ValidationError{Field: "fee", Message: "must be within [0, 1)"}
	}
	return nil
}

// Backtest runs the crossover strategy over the whole series.
func Backtest(in BacktestInput) (BacktestResult, error) {
	if err := in.validate(); err != nil {
		return BacktestResult{}, err
	}
	capital := in.InitialCapital
	if capital <= 0 {
		capital = 10000
	}
	run := crossover(in.Closes, in.Fast, in.Slow, in.Fee, 0)
	res := BacktestResult{
		Fast:          in.Fast,
		Slow:          in.Slow,
		Trades:        run.trades,
		WinningTrades: run.wins,
		Stats:         AnalyzeReturns(run.returns, in.PeriodsPerYear, 0),
		Equity:        make([]float64, 0, len(run.returns)+1),
	}
	res.TotalReturn = res.Stats.TotalReturn
	res.BuyAndHold = in.Closes[len(in.Closes)-1]/in.Closes[0] - 1
	equity := capital
	res.Equity = append(res.Equity, equity)
	for _, r := range run.returns {
		equity *= 1 + r
		res.Equity = append(res.Equity, equity)
	}
	res.FinalEquity = equity
	return res, nil
}

type crossoverRun struct {
	returns []float64
	trades  int
	wins    int
}

// crossover computes the strategy return of every period starting at index
// from or later. Closes before from only warm up the averages.
func crossover(closes []float64, fast, slow int, fee float64, from int) crossoverRun {
	var run crossoverRun
	fastSMA, slowSMA := sma(closes, fast), sma(closes, slow)
	held := false
	tradeGrowth := 1.0
	for i := from; i+1 < len(closes); i++ {
		want := i >= slow-1 && fastSMA[i] > slowSMA[i]
		r := 0.0
		if want != held {
			r -= fee
			if want {
				run.trades++
				tradeGrowth = 1 - fee
			} else if tradeGrowth*(1-fee) > 1 {
				run.wins++
			}
			held = want
		}
		if held {
			period := closes[i+1]/closes[i] - 1
			r += period
			tradeGrowth *= 1 + period
		}
		run.returns = append(run.returns, r)
	}
	if held && tradeGrowth > 1 {
		run.wins++
	}
	return run
}

// sma returns the trailing simple moving average, NaN until n values exist.
func sma(xs []float64, n int) []float64 {
	out := make([]float64, len(xs))
	var sum float64
	for i, x := range xs {
		sum += x
		if i >= n {
			sum -= xs[i-n]
		}
		if i >= n-1 {
			out[i] = sum / float64(n)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// WalkForwardInput configures a walk-forward analysis: the fast and slow
// windows are optimised on each in-sample window, then scored on the
// out-of-sample window that follows it.
type WalkForwardInput struct {
	Closes         []float64 `json:"closes" yaml:"closes"`
	InSample       int       `json:"in_sample" yaml:"in_sample"`
	OutOfSample    int       `json:"out_of_sample" yaml:"out_of_sample"`
	FastValues     []int     `json:"fast_values" yaml:"fast_values"`
	SlowValues     []int     `json:"slow_values" yaml:"slow_values"`
	Fee            float64   `json:"fee" yaml:"fee"`
	PeriodsPerYear int       `json:"periods_per_year" yaml:"periods_per_year"`
}

// WalkForwardWindow is the result of one in-sample/out-of-sample pair.
type WalkForwardWindow struct {
	Start             int     `json:"start"`
	Fast              int     `json:"fast"`
	Slow              int     `json:"slow"`
	InSampleReturn    float64 `json:"in_sample_return"`
	OutOfSampleReturn float64 `json:"out_of_sample_return"`
}

// WalkForwardResult aggregates all windows. Efficiency is the out-of-sample
// return per period over the in-sample return per period, 0 when the
// in-sample return is not positive.
type WalkForwardResult struct {
	Windows           []WalkForwardWindow `json:"windows"`
	OutOfSampleReturn float64             `json:"out_of_sample_return"`
	Efficiency        float64             `json:"efficiency"`
	Stats             ReturnStats         `json:"stats"`
}

// WalkForward rolls the optimisation window forward by OutOfSample closes at
// a time. Ties in the in-sample score keep the first pair in grid order.
func WalkForward(in WalkForwardInput) (WalkForwardResult, error) {
	if in.InSample <= 1 || in.OutOfSample <= 0 {
		return WalkForwardResult{}, ValidationError{Field: "in_sample", Message: "in-sample and out-of-sample lengths must be positive"}
	}
	if len(in.FastValues) == 0 || len(in.SlowValues) == 0 {
		return WalkForwardResult{}, ValidationError{Field: "fast_values", Message: "fast and slow grids must not be empty"}
	}
	if len(in.Closes) < in.InSample+in.OutOfSample {
		return WalkForwardResult{}, ValidationError{Field: "closes", Message: fmt.Sprintf("need at least %d closes", in.InSample+in.OutOfSample)}
	}
	for i, c := range in.Closes {
		if !(c > 0) {
			return WalkForwardResult{}, ValidationError{Field: "closes", Message: fmt.Sprintf("close #%d is not positive", i)}
		}
	}

	var res WalkForwardResult
	var oos []float64
	var isPerPeriod, oosPerPeriod float64
	for start := 0; start+in.InSample+in.OutOfSample <= len(in.Closes); start += in.OutOfSample {
		sample := in.Closes[start : start+in.InSample]
		best := WalkForwardWindow{Start: start, InSampleReturn: math.Inf(-1)}
		for _, f := range in.FastValues {
			for _, s := range in.SlowValues {
				if f <= 0 || s <= f || s >= len(sample) {
					continue
				}
				r := compound(crossover(sample, f, s, in.Fee, 0).returns)
				if r > best.InSampleReturn {
					best.Fast, best.Slow, best.InSampleReturn = f, s, r
				}
			}
		}
		if best.Fast == 0 {
			return WalkForwardResult{}, ValidationError{Field: "slow_values", Message: "no fast/slow pair fits the in-sample window"}
		}
		// the out-of-sample run is warmed up on the in-sample closes and
		// includes the period from the last in-sample close.
		window := in.Closes[start : start+in.InSample+in.OutOfSample]
		run := crossover(window, best.Fast, best.Slow, in.Fee, in.InSample-1)
		best.OutOfSampleReturn = compound(run.returns)
		oos = append(oos, run.returns...)

		isPerPeriod += best.InSampleReturn / float64(in.InSample-1)
		oosPerPeriod += best.OutOfSampleReturn / float64(len(run.returns))
		res.Windows = append(res.Windows, best)
	}
	res.OutOfSampleReturn = compound(oos)
	if isPerPeriod > 0 {
		res.Efficiency = oosPerPeriod / isPerPeriod
	}
	res.Stats = AnalyzeReturns(oos, in.PeriodsPerYear, 0)
	return res, nil
}

func compound(returns []float64) float64 {
	g := 1.0
	for _, r := range returns {
		g *= 1 + r
	}
	return g - 1
}
