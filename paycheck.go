package tradedesk

import (
	"fmt"
	"math"
)

// DeductionKind tells whether a deduction is taken before or after income tax.
type DeductionKind string

const (
	PreTax  DeductionKind = "pretax"
	PostTax DeductionKind = "posttax"
)

// DeductionMode tells how a deduction's Value is read.
type DeductionMode string

const (
	PercentOfPay DeductionMode = "percent" // Value is a percentage of gross pay
	FlatAmount   DeductionMode = "flat"    // Value is an amount per paycheck
)

// Deduction is one user entered payroll deduction line.
type Deduction struct {
	Name  string        `json:"name" yaml:"name"`
	Kind  DeductionKind `json:"kind" yaml:"kind"`
	Mode  DeductionMode `json:"mode" yaml:"mode"`
	Value float64       `json:"value" yaml:"value"`
	// FICAExempt marks section 125 style deductions (health premiums, HSA)
	// that also reduce social security and medicare wages.
	FICAExempt bool `json:"fica_exempt,omitempty" yaml:"fica_exempt"`
}

// Amount returns the deduction for one paycheck of gross pay.
func (d Deduction) Amount(gross Money) Money {
	if d.Mode == FlatAmount {
		return M(d.Value, gross.Currency())
	}
	return gross.Percent(Percent(d.Value))
}

func (d Deduction) validate() error {
	switch d.Kind {
	case PreTax, PostTax:
	default:
		return ValidationError{Field: "deductions.kind", Message: fmt.Sprintf("deduction %q: unknown kind %q", d.Name, d.Kind)}
	}
	switch d.Mode {
	case PercentOfPay, FlatAmount:
	default:
		return ValidationError{Field: "deductions.mode", Message: fmt.Sprintf("deduction %q: unknown mode %q", d.Name, d.Mode)}
	}
	if d.Value < 0 || math.IsNaN(d.Value) {
		return ValidationError{Field: "deductions.value", Message: fmt.Sprintf("deduction %q: value must be positive", d.Name)}
	}
	if d.Mode == PercentOfPay && d.Value > 100 {
		return ValidationError{Field: "deductions.value", Message: fmt.Sprintf("deduction %q: percentage above 100", d.Name)}
	}
	return nil
}

// PaycheckInput holds everything needed to compute one paycheck.
type PaycheckInput struct {
	GrossPay   Money        `json:"gross_pay" yaml:"gross_pay"`
	Frequency  PayFrequency `json:"frequency" yaml:"frequency"`
	State      string       `json:"state" yaml:"state"`
	LocalRate  Percent      `json:"local_rate" yaml:"local_rate"`
	Deductions []Deduction  `json:"deductions" yaml:"deductions"`
}

// Taxes withheld from one paycheck.
type Taxes struct {
	Federal        Money `json:"federal_tax"`
	State          Money `json:"state_tax"`
	Local          Money `json:"local_tax"`
	SocialSecurity Money `json:"social_security"`
	Medicare       Money `json:"medicare"`
	Total          Money `json:"total"`
}

func (t Taxes) scale(n int) Taxes {
	return Taxes{
		Federal:        t.Federal.MulInt(n),
		State:          t.State.MulInt(n),
		Local:          t.Local.MulInt(n),
		SocialSecurity: t.SocialSecurity.MulInt(n),
		Medicare:       t.Medicare.MulInt(n),
		Total:          t.Total.MulInt(n),
	}
}

// DeductionLine is a resolved deduction amount.
type DeductionLine struct {
	Name   string        `json:"name"`
	Kind   DeductionKind `json:"kind"`
	Amount Money         `json:"amount"`
}

// PaycheckResult is the gross-to-net breakdown of one paycheck. Every field
// is derived from the PaycheckInput it was computed from.
type PaycheckResult struct {
	Frequency         PayFrequency    `json:"frequency"`
	GrossPay          Money           `json:"gross_pay"`
	PreTaxDeductions  Money           `json:"pre_tax_deductions"`
	PostTaxDeductions Money           `json:"post_tax_deductions"`
	TaxableIncome     Money           `json:"taxable_income"`
	Taxes             Taxes           `json:"taxes"`
	NetPay            Money           `json:"net_pay"`
	Deductions        []DeductionLine `json:"deductions,omitempty"`
}

// Annualized returns the same paycheck scaled to a full year.
func (r PaycheckResult) Annualized() PaycheckResult {
	n := r.Frequency.PeriodsPerYear()
	lines := make([]DeductionLine, len(r.Deductions))
	for i, l := range r.Deductions {
		lines[i] = DeductionLine{Name: l.Name, Kind: l.Kind, Amount: l.Amount.MulInt(n)}
	}
	return PaycheckResult{
		Frequency:         r.Frequency,
		GrossPay:          r.GrossPay.MulInt(n),
		PreTaxDeductions:  r.PreTaxDeductions.MulInt(n),
		PostTaxDeductions: r.PostTaxDeductions.MulInt(n),
		TaxableIncome:     r.TaxableIncome.MulInt(n),
		Taxes:             r.Taxes.scale(n),
		NetPay:            r.NetPay.MulInt(n),
		Deductions:        lines,
	}
}

// EffectiveTaxRate is total taxes over gross pay.
func (r PaycheckResult) EffectiveTaxRate() Percent {
	return PercentOf(r.Taxes.Total.Ratio(r.GrossPay))
}

// CalculatePaycheck computes net pay from gross pay, deductions and taxes.
func CalculatePaycheck(in PaycheckInput) (PaycheckResult, error) {
	if !in.GrossPay.IsPositive() {
		return PaycheckResult{}, ValidationError{Field: "gross_pay", Message: "gross pay must be greater than zero"}
	}
	if in.LocalRate < 0 || in.LocalRate > 100 {
		return PaycheckResult{}, ValidationError{Field: "local_rate", Message: "local rate must be within [0, 100]"}
	}
	zero := M(0, in.GrossPay.Currency())
	periods := in.Frequency.PeriodsPerYear()

	res := PaycheckResult{
		Frequency:         in.Frequency,
		GrossPay:          in.GrossPay,
		PreTaxDeductions:  zero,
		PostTaxDeductions: zero,
	}
	ficaExempt := zero
	for _, d := range in.Deductions {
		if err := d.validate(); err != nil {
			return PaycheckResult{}, err
		}
		amount := d.Amount(in.GrossPay).Round()
		res.Deductions = append(res.Deductions, DeductionLine{Name: d.Name, Kind: d.Kind, Amount: amount})
		if d.Kind == PreTax {
			res.PreTaxDeductions = res.PreTaxDeductions.Add(amount)
			if d.FICAExempt {
				ficaExempt = ficaExempt.Add(amount)
			}
		} else {
			res.PostTaxDeductions = res.PostTaxDeductions.Add(amount)
		}
	}

	res.TaxableIncome = in.GrossPay.Sub(res.PreTaxDeductions).Max(zero)
	taxable := res.TaxableIncome.Float64()
	annualTaxable := taxable * float64(periods)

	federal := BracketTax(math.Max(0, annualTaxable-StandardDeduction2024Single), FederalBrackets2024Single) / float64(periods)

	annualFICA := math.Max(0, in.GrossPay.Sub(ficaExempt).Float64()) * float64(periods)
	socialSecurity := SocialSecurityRate * math.Min(annualFICA, SocialSecurityWageBase) / float64(periods)
	medicare := (MedicareRate*annualFICA + AdditionalMedicareRate*math.Max(0, annualFICA-AdditionalMedicareBase)) / float64(periods)

	cur := in.GrossPay.Currency()
	res.Taxes = Taxes{
		Federal:        M(federal, cur).Round(),
		State:          res.TaxableIncome.MulRate(StateEffectiveRate(in.State)).Round(),
		Local:          res.TaxableIncome.Percent(in.LocalRate).Round(),
		SocialSecurity: M(socialSecurity, cur).Round(),
		Medicare:       M(medicare, cur).Round(),
	}
	res.Taxes.Total = Sum(res.Taxes.Federal, res.Taxes.State, res.Taxes.Local, res.Taxes.SocialSecurity, res.Taxes.Medicare)
	res.NetPay = res.TaxableIncome.Sub(res.Taxes.Total).Sub(res.PostTaxDeductions)
	return res, nil
}
