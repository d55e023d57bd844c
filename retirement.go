package tradedesk

import (
	"fmt"
	"math"
)

// uniformLifetime is the IRS Uniform Lifetime Table (2022 onward), indexed
// from age 72.
var uniformLifetime = []float64{
	27.4, 26.5, 25.5, 24.6, 23.7, 22.9, 22.0, 21.1, 20.2, 19.4, // 72-81
	18.5, 17.7, 16.8, 16.0, 15.2, 14.4, 13.7, 12.9, 12.2, 11.5, // 82-91
	10.8, 10.1, 9.5, 8.9, 8.4, 7.8, 7.3, 6.8, 6.4, 6.0, // 92-101
	5.6, 5.2, 4.9, 4.6, 4.3, 4.1, 3.9, 3.7, 3.5, 3.4, // 102-111
	3.3, 3.1, 3.0, 2.9, 2.8, 2.7, 2.5, 2.3, 2.0, // 112-120
}

// DistributionPeriod returns the Uniform Lifetime Table divisor for age, 0
// below 72. Ages above 120 use the 120 divisor.
func DistributionPeriod(age int) float64 {
	if age < 72 {
		return 0
	}
	i := age - 72
	if i >= len(uniformLifetime) {
		i = len(uniformLifetime) - 1
	}
	return uniformLifetime[i]
}

// RMDStartAge returns the age of the first required minimum distribution.
func RMDStartAge(birthYear int) int {
	switch {
	case birthYear < 1951:
		return 72
	case birthYear < 1960:
		return 73
	default:
		return 75
	}
}

// RMDInput describes a tax deferred account to project.
type RMDInput struct {
	BirthYear      int     `json:"birth_year" yaml:"birth_year"`
	Balance        float64 `json:"balance" yaml:"balance"`
	ExpectedReturn float64 `json:"expected_return" yaml:"expected_return"` // 0.06 for 6%
	StartYear      int     `json:"start_year" yaml:"start_year"`
	Years          int     `json:"years" yaml:"years"`
}

// RMDYear is one projected year.
type RMDYear struct {
	Year         int     `json:"year"`
	Age          int     `json:"age"`
	StartBalance float64 `json:"start_balance"`
	Factor       float64 `json:"factor"`
	Distribution float64 `json:"distribution"`
	EndBalance   float64 `json:"end_balance"`
}

// RMDProjection is the outcome of ProjectRMD.
type RMDProjection struct {
	StartAge           int       `json:"start_age"`
	Years              []RMDYear `json:"years"`
	TotalDistributions float64   `json:"total_distributions"`
}

// ProjectRMD projects the account balance and its required distributions
// year by year. The distribution is taken at the start of the year and the
// remaining balance grows at the expected return.
func ProjectRMD(in RMDInput) (RMDProjection, error) {
	if in.Balance < 0 {
		return RMDProjection{}, ValidationError{Field: "balance", Message: "must not be negative"}
	}
	if in.Years <= 0 || in.Years > 100 {
		return RMDProjection{}, ValidationError{Field: "years", Message: "must be within [1, 100]"}
	}
	if in.BirthYear < 1900 || in.StartYear < in.BirthYear {
		return RMDProjection{}, ValidationError{Field: "birth_year", Message: fmt.Sprintf("birth year %d is not before start year %d", in.BirthYear, in.StartYear)}
	}
	p := RMDProjection{StartAge: RMDStartAge(in.BirthYear)}
	balance := in.Balance
	for i := 0; i < in.Years; i++ {
		y := RMDYear{Year: in.StartYear + i, StartBalance: balance}
		y.Age = y.Year - in.BirthYear
		if y.Age >= p.StartAge {
			y.Factor = DistributionPeriod(y.Age)
			y.Distribution = balance / y.Factor
		}
		balance = (balance - y.Distribution) * (1 + in.ExpectedReturn)
		y.EndBalance = balance
		p.TotalDistributions += y.Distribution
		p.Years = append(p.Years, y)
	}
	return p, nil
}

// DefaultWithdrawalRate is the conventional 4% safe withdrawal rate.
const DefaultWithdrawalRate = 0.04

// FireNumber is the portfolio needed to fund annualSpending forever at the
// given withdrawal rate: 25 times spending at 4%.
func FireNumber(annualSpending, withdrawalRate float64) float64 {
	if withdrawalRate <= 0 {
		withdrawalRate = DefaultWithdrawalRate
	}
	return annualSpending / withdrawalRate
}

// FireInput describes a savings plan towards financial independence.
type FireInput struct {
	CurrentAge         int     `json:"current_age" yaml:"current_age"`
	CurrentSavings     float64 `json:"current_savings" yaml:"current_savings"`
	AnnualContribution float64 `json:"annual_contribution" yaml:"annual_contribution"`
	AnnualSpending     float64 `json:"annual_spending" yaml:"annual_spending"`
	ExpectedReturn     float64 `json:"expected_return" yaml:"expected_return"`
	InflationRate      float64 `json:"inflation_rate" yaml:"inflation_rate"`
	WithdrawalRate     float64 `json:"withdrawal_rate" yaml:"withdrawal_rate"`
	MaxYears           int     `json:"max_years" yaml:"max_years"`
}

// FireYear is one projected year.
type FireYear struct {
	Year       int     `json:"year"`
	Age        int     `json:"age"`
	Balance    float64 `json:"balance"`
	Spending   float64 `json:"spending"`
	FireNumber float64 `json:"fire_number"`
	Progress   float64 `json:"progress"` // balance over FIRE number
}

// FirePlan is the outcome of ProjectFire. YearsToFire is -1 when the target
// is not reached within the horizon.
type FirePlan struct {
	FireNumber  float64    `json:"fire_number"`
	YearsToFire int        `json:"years_to_fire"`
	FireAge     int        `json:"fire_age,omitempty"`
	Years       []FireYear `json:"years"`
}

// ProjectFire compounds savings and contributions year by year until the
// balance covers the inflated FIRE number or the horizon is exhausted.
func ProjectFire(in FireInput) (FirePlan, error) {
	if in.AnnualSpending <= 0 {
		return FirePlan{}, ValidationError{Field: "annual_spending", Message: "must be greater than zero"}
	}
	if in.CurrentSavings < 0 || in.AnnualContribution < 0 {
		return FirePlan{}, ValidationError{Field: "current_savings", Message: "savings and contributions must not be negative"}
	}
	wr := in.WithdrawalRate
	if wr <= 0 {
		wr = DefaultWithdrawalRate
	}
	horizon := in.MaxYears
	if horizon <= 0 {
		horizon = 60
	}
	plan := FirePlan{FireNumber: FireNumber(in.AnnualSpending, wr), YearsToFire: -1}

	balance, spending := in.CurrentSavings, in.AnnualSpending
	for year := 0; year <= horizon; year++ {
		if year > 0 {
			balance = balance*(1+in.ExpectedReturn) + in.AnnualContribution
			spending *= 1 + in.InflationRate
		}
		target := FireNumber(spending, wr)
		plan.Years = append(plan.Years, FireYear{
			Year:       year,
			Age:        in.CurrentAge + year,
			Balance:    balance,
			Spending:   spending,
			FireNumber: target,
			Progress:   math.Min(balance/target, 1),
		})
		if balance >= target {
			plan.YearsToFire = year
			plan.FireAge = in.CurrentAge + year
			break
		}
	}
	return plan, nil
}
