package tradedesk

import (
	"fmt"
	"math"
)

// Variable is a payroll contribution the what-if projection can adjust.
type Variable struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Category         DeductionKind `json:"category"`
	MaxPercent       float64       `json:"max_percent"`
	HasEmployerMatch bool          `json:"has_employer_match"`
}

// Variables is the fixed catalog of adjustable contributions.
var Variables = []Variable{
	{ID: "traditional_401k", Name: "Traditional 401(k)", Category: PreTax, MaxPercent: 100, HasEmployerMatch: true},
	{ID: "roth_401k", Name: "Roth 401(k)", Category: PostTax, MaxPercent: 100, HasEmployerMatch: true},
	{ID: "hsa", Name: "Health Savings Account", Category: PreTax, MaxPercent: 25},
	{ID: "fsa", Name: "Flexible Spending Account", Category: PreTax, MaxPercent: 10},
	{ID: "espp", Name: "Employee Stock Purchase Plan", Category: PostTax, MaxPercent: 15},
	{ID: "after_tax_401k", Name: "After-tax 401(k)", Category: PostTax, MaxPercent: 50},
}

// LookupVariable finds a catalog entry by id.
func LookupVariable(id string) (Variable, error) {
	for _, v := range Variables {
		if v.ID == id {
			return v, nil
		}
	}
	return Variable{}, ValidationError{Field: "variable", Message: fmt.Sprintf("unknown variable %q", id)}
}

// EmployerMatch describes an employer matching program: the employer adds
// Rate percent of the employee contribution, on contributions up to
// UpToPercent of gross pay.
type EmployerMatch struct {
	Enabled     bool    `json:"enabled" yaml:"enabled"`
	Rate        Percent `json:"match_rate" yaml:"match_rate"`
	UpToPercent Percent `json:"match_up_to_percent" yaml:"match_up_to_percent"`
}

// WhatIf is the estimated effect of a contribution change on one paycheck.
type WhatIf struct {
	Variable            string  `json:"variable"`
	AdjustmentPercent   float64 `json:"adjustment_percent"`
	PeriodsPerYear      int     `json:"periods_per_year"`
	AdjustmentAmount    Money   `json:"adjustment_amount"`
	AnnualAdjustment    Money   `json:"annual_adjustment"`
	FederalMarginalRate float64 `json:"federal_marginal_rate"`
	StateMarginalRate   float64 `json:"state_marginal_rate"`
	TaxSavings          Money   `json:"tax_savings"`
	NetCost             Money   `json:"net_cost"`
	AnnualNetCost       Money   `json:"annual_net_cost"`
	NewNetPay           Money   `json:"new_net_pay"`
	// EmployerMatch accrues to the retirement account, never to net pay.
	EmployerMatch       Money `json:"employer_match"`
	AnnualEmployerMatch Money `json:"annual_employer_match"`
}

// NetPayChange is the difference between the new and the baseline net pay.
func (w WhatIf) NetPayChange() Money { return w.NetCost.Neg() }

// ProjectWhatIf estimates the net pay impact of contributing an extra
// adjustmentPercent of gross pay to variable v, using marginal rates derived
// from the baseline result instead of a full tax recomputation.
func ProjectWhatIf(result PaycheckResult, grossPay Money, freq PayFrequency, adjustmentPercent float64, v Variable, match EmployerMatch) (WhatIf, error) {
	if err := checkAdjustment(v, "adjustment_percent", adjustmentPercent); err != nil {
		return WhatIf{}, err
	}
	matchPercent := math.Min(adjustmentPercent, float64(match.UpToPercent))
	return project(result, grossPay, freq, adjustmentPercent, matchPercent, v, match)
}

// ProjectContribution is ProjectWhatIf expressed as a move of the slider from
// baselinePercent to targetPercent. The adjustment is the difference, so it
// is negative when the contribution decreases, and moving back to the
// baseline reproduces the baseline net pay.
func ProjectContribution(result PaycheckResult, grossPay Money, freq PayFrequency, v Variable, match EmployerMatch, baselinePercent, targetPercent float64) (WhatIf, error) {
	if err := checkAdjustment(v, "baseline_percent", baselinePercent); err != nil {
		return WhatIf{}, err
	}
	if err := checkAdjustment(v, "target_percent", targetPercent); err != nil {
		return WhatIf{}, err
	}
	upTo := float64(match.UpToPercent)
	matchPercent := math.Min(targetPercent, upTo) - math.Min(baselinePercent, upTo)
	return project(result, grossPay, freq, targetPercent-baselinePercent, matchPercent, v, match)
}

func checkAdjustment(v Variable, field string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > v.MaxPercent {
		return ValidationError{Field: field, Message: fmt.Sprintf("%s must be within [0, %g] for %s", field, v.MaxPercent, v.ID)}
	}
	return nil
}

func project(result PaycheckResult, grossPay Money, freq PayFrequency, adjustmentPercent, matchPercent float64, v Variable, match EmployerMatch) (WhatIf, error) {
	if !grossPay.IsPositive() {
		return WhatIf{}, ValidationError{Field: "gross_pay", Message: "gross pay must be greater than zero"}
	}
	periods := freq.PeriodsPerYear()
	zero := M(0, grossPay.Currency())

	w := WhatIf{
		Variable:          v.ID,
		AdjustmentPercent: adjustmentPercent,
		PeriodsPerYear:    periods,
		AdjustmentAmount:  grossPay.Percent(Percent(adjustmentPercent)),
		TaxSavings:        zero,
		EmployerMatch:     zero,
	}
	w.AnnualAdjustment = w.AdjustmentAmount.MulInt(periods)

	annualTaxable := result.TaxableIncome.Float64() * float64(periods)
	w.FederalMarginalRate = MarginalFederalRate(annualTaxable)
	w.StateMarginalRate = StateMarginalRate(result.Taxes.State.Float64(), annualTaxable)

	if v.Category == PreTax {
		w.TaxSavings = w.AdjustmentAmount.MulRate(w.FederalMarginalRate + w.StateMarginalRate)
		w.NetCost = w.AdjustmentAmount.Sub(w.TaxSavings)
	} else {
		w.NetCost = w.AdjustmentAmount
	}
	w.NewNetPay = result.NetPay.Sub(w.NetCost)
	w.AnnualNetCost = w.NetCost.MulInt(periods)

	if v.HasEmployerMatch && match.Enabled {
		matchable := grossPay.Percent(Percent(matchPercent))
		w.EmployerMatch = matchable.Percent(match.Rate)
	}
	w.AnnualEmployerMatch = w.EmployerMatch.MulInt(periods)
	return w, nil
}
