package tradedesk

import (
	"fmt"
	"math"
)

// CoveredCall describes selling one call against owned shares. Amounts are
// per share.
type CoveredCall struct {
	StockPrice   float64 `json:"stock_price" yaml:"stock_price"`
	CostBasis    float64 `json:"cost_basis" yaml:"cost_basis"` // 0 means the current price
	StrikePrice  float64 `json:"strike_price" yaml:"strike_price"`
	Premium      float64 `json:"premium" yaml:"premium"`
	DaysToExpiry int     `json:"days_to_expiry" yaml:"days_to_expiry"`
	Contracts    int     `json:"contracts" yaml:"contracts"`
	SharesPerLot int     `json:"shares_per_contract" yaml:"shares_per_contract"`
}

// CoveredCallAnalysis is the outcome of AnalyzeCoveredCall. Yields and
// returns are fractions.
type CoveredCallAnalysis struct {
	Shares             int     `json:"shares"`
	PremiumIncome      float64 `json:"premium_income"`
	PremiumYield       float64 `json:"premium_yield"`
	AnnualizedYield    float64 `json:"annualized_yield"`
	Breakeven          float64 `json:"breakeven"`
	MaxProfit          float64 `json:"max_profit"`
	ReturnIfCalled     float64 `json:"return_if_called"`
	AnnualizedIfCalled float64 `json:"annualized_return_if_called"`
	DownsideProtection float64 `json:"downside_protection"`
}

// AnalyzeCoveredCall computes the income and return profile of a covered call.
func AnalyzeCoveredCall(c CoveredCall) (CoveredCallAnalysis, error) {
	if c.StockPrice <= 0 || c.StrikePrice <= 0 {
		return CoveredCallAnalysis{}, ValidationError{Field: "stock_price", Message: "stock and strike prices must be greater than zero"}
	}
	if c.Premium < 0 {
		return CoveredCallAnalysis{}, ValidationError{Field: "premium", Message: "must not be negative"}
	}
	if c.DaysToExpiry <= 0 {
		return CoveredCallAnalysis{}, ValidationError{Field: "days_to_expiry", Message: "must be greater than zero"}
	}
	contracts := max(c.Contracts, 1)
	lot := c.SharesPerLot
	if lot <= 0 {
		lot = 100
	}
	basis := c.CostBasis
	if basis <= 0 {
		basis = c.StockPrice
	}
	a := CoveredCallAnalysis{Shares: contracts * lot}
	shares := float64(a.Shares)
	annualize := 365 / float64(c.DaysToExpiry)

	a.PremiumIncome = c.Premium * shares
	a.PremiumYield = c.Premium / c.StockPrice
	a.AnnualizedYield = a.PremiumYield * annualize
	a.Breakeven = basis - c.Premium
	a.MaxProfit = (c.StrikePrice - basis + c.Premium) * shares
	a.ReturnIfCalled = (c.StrikePrice - basis + c.Premium) / basis
	a.AnnualizedIfCalled = a.ReturnIfCalled * annualize
	a.DownsideProtection = c.Premium / c.StockPrice
	return a, nil
}

// OptionType is call or put.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// OptionSpec is the input of PriceOption. Rates and volatility are
// annualized fractions.
type OptionSpec struct {
	Type          OptionType `json:"type" yaml:"type"`
	Spot          float64    `json:"spot" yaml:"spot"`
	Strike        float64    `json:"strike" yaml:"strike"`
	DaysToExpiry  int        `json:"days_to_expiry" yaml:"days_to_expiry"`
	Volatility    float64    `json:"volatility" yaml:"volatility"`
	RiskFreeRate  float64    `json:"risk_free_rate" yaml:"risk_free_rate"`
	DividendYield float64    `json:"dividend_yield" yaml:"dividend_yield"`
}

// OptionPrice is a theoretical price with its greeks. Theta is per calendar
// day, Vega and Rho per one point (1%) move.
type OptionPrice struct {
	Price     float64 `json:"price"`
	Delta     float64 `json:"delta"`
	Gamma     float64 `json:"gamma"`
	Theta     float64 `json:"theta"`
	Vega      float64 `json:"vega"`
	Rho       float64 `json:"rho"`
	Intrinsic float64 `json:"intrinsic"`
	TimeValue float64 `json:"time_value"`
}

func normCDF(x float64) float64 { return 0.5 * math.Erfc(-x/math.Sqrt2) }

func normPDF(x float64) float64 { return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi) }

// PriceOption prices a European option with the Black-Scholes-Merton model
// under a continuous dividend yield.
func PriceOption(o OptionSpec) (OptionPrice, error) {
	if o.Type != Call && o.Type != Put {
		return OptionPrice{}, ValidationError{Field: "type", Message: fmt.Sprintf("unknown option type %q", o.Type)}
	}
	if o.Spot <= 0 || o.Strike <= 0 {
		return OptionPrice{}, ValidationError{Field: "spot", Message: "spot and strike must be greater than zero"}
	}
	if o.Volatility <= 0 {
		return OptionPrice{}, ValidationError{Field: "volatility", Message: "must be greater than zero"}
	}
	if o.DaysToExpiry <= 0 {
		return OptionPrice{}, ValidationError{Field: "days_to_expiry", Message: "must be greater than zero"}
	}
	S, K, r, q, v := o.Spot, o.Strike, o.RiskFreeRate, o.DividendYield, o.Volatility
	t := float64(o.DaysToExpiry) / 365
	sqrtT := math.Sqrt(t)
	d1 := (math.Log(S/K) + (r-q+v*v/2)*t) / (v * sqrtT)
	d2 := d1 - v*sqrtT
	dq, dr := math.Exp(-q*t), math.Exp(-r*t)

	var p OptionPrice
	p.Gamma = dq * normPDF(d1) / (S * v * sqrtT)
	p.Vega = S * dq * normPDF(d1) * sqrtT / 100
	decay := -S * dq * normPDF(d1) * v / (2 * sqrtT)
	if o.Type == Call {
		p.Price = S*dq*normCDF(d1) - K*dr*normCDF(d2)
		p.Delta = dq * normCDF(d1)
		p.Theta = (decay - r*K*dr*normCDF(d2) + q*S*dq*normCDF(d1)) / 365
		p.Rho = K * t * dr * normCDF(d2) / 100
		p.Intrinsic = math.Max(0, S-K)
	} else {
		p.Price = K*dr*normCDF(-d2) - S*dq*normCDF(-d1)
		p.Delta = -dq * normCDF(-d1)
		p.Theta = (decay + r*K*dr*normCDF(-d2) - q*S*dq*normCDF(-d1)) / 365
		p.Rho = -K * t * dr * normCDF(-d2) / 100
		p.Intrinsic = math.Max(0, K-S)
	}
	p.TimeValue = p.Price - p.Intrinsic
	return p, nil
}
