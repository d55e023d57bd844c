package tradedesk

import (
	"math"
	"strings"
)

// TaxBracket is one rung of a progressive tax ladder: Rate applies to the
// income above Floor, up to the next bracket's Floor.
type TaxBracket struct {
	Floor float64
	Rate  float64
}

// FederalBrackets2024Single is the 2024 federal ladder for a single filer.
var FederalBrackets2024Single = []TaxBracket{
	{Floor: 0, Rate: 0.10},
	{Floor: 11600, Rate: 0.12},
	{Floor: 47150, Rate: 0.22},
	{Floor: 100525, Rate: 0.24},
	{Floor: 191950, Rate: 0.32},
	{Floor: 243725, Rate: 0.35},
	{Floor: 609350, Rate: 0.37},
}

// 2024 payroll constants.
const (
	StandardDeduction2024Single = 14600.0

	SocialSecurityRate     = 0.062
	SocialSecurityWageBase = 168600.0
	MedicareRate           = 0.0145
	AdditionalMedicareRate = 0.009
	AdditionalMedicareBase = 200000.0
)

// BracketTax computes the progressive tax owed on income.
func BracketTax(income float64, brackets []TaxBracket) float64 {
	if income <= 0 {
		return 0
	}
	var tax float64
	for i, b := range brackets {
		if income <= b.Floor {
			break
		}
		upper := math.Inf(1)
		if i+1 < len(brackets) {
			upper = brackets[i+1].Floor
		}
		tax += (math.Min(income, upper) - b.Floor) * b.Rate
	}
	return tax
}

// MarginalRate returns the rate applied to the next dollar of income.
// An income sitting exactly on a floor still pays the lower rate.
func MarginalRate(income float64, brackets []TaxBracket) float64 {
	if len(brackets) == 0 {
		return 0
	}
	rate := brackets[0].Rate
	for _, b := range brackets[1:] {
		if income > b.Floor {
			rate = b.Rate
		}
	}
	return rate
}

// MarginalFederalRate is MarginalRate over the 2024 single filer ladder.
func MarginalFederalRate(annualTaxableIncome float64) float64 {
	return MarginalRate(annualTaxableIncome, FederalBrackets2024Single)
}

// stateRates are approximate effective income tax rates by state code.
var stateRates = map[string]float64{
	"AK": 0, "FL": 0, "NV": 0, "NH": 0, "SD": 0, "TN": 0, "TX": 0, "WA": 0, "WY": 0,
	"AL": 0.04, "AZ": 0.025, "AR": 0.039, "CA": 0.06, "CO": 0.044, "CT": 0.05,
	"DE": 0.052, "DC": 0.06, "GA": 0.0539, "HI": 0.065, "ID": 0.058, "IL": 0.0495,
	"IN": 0.0305, "IA": 0.044, "KS": 0.052, "KY": 0.04, "LA": 0.0425, "ME": 0.058,
	"MD": 0.0475, "MA": 0.05, "MI": 0.0425, "MN": 0.068, "MS": 0.047, "MO": 0.048,
	"MT": 0.059, "NE": 0.0584, "NJ": 0.055, "NM": 0.049, "NY": 0.0585, "NC": 0.045,
	"ND": 0.0195, "OH": 0.035, "OK": 0.0475, "OR": 0.0875, "PA": 0.0307, "RI": 0.0475,
	"SC": 0.064, "UT": 0.0465, "VT": 0.066, "VA": 0.0575, "WV": 0.0512, "WI": 0.053,
}

// DefaultStateRate applies to unknown or empty state codes.
const DefaultStateRate = 0.05

// StateEffectiveRate returns the approximate effective state income tax rate.
func StateEffectiveRate(state string) float64 {
	if r, ok := stateRates[strings.ToUpper(strings.TrimSpace(state))]; ok {
		return r
	}
	return DefaultStateRate
}

// StateMarginalRate back-solves a marginal state rate from the effective
// state tax already computed for one paycheck: 1.2 times the effective rate,
// capped at 13%. The effective rate is annualized over 26 periods whatever
// the actual pay frequency. A non positive annual taxable income uses a 5%
// effective rate.
func StateMarginalRate(stateTax, annualTaxableIncome float64) float64 {
	effective := DefaultStateRate
	if annualTaxableIncome > 0 {
		effective = stateTax * 26 / annualTaxableIncome
	}
	return math.Min(1.2*effective, 0.13)
}
