package tradedesk

import (
	"math"
	"testing"
)

func TestCalculatePaycheck(t *testing.T) {
	in := PaycheckInput{
		GrossPay:  USD(2000),
		Frequency: Biweekly,
		State:     "TX",
		Deductions: []Deduction{
			{Name: "401k", Kind: PreTax, Mode: PercentOfPay, Value: 5},
			{Name: "Medical", Kind: PreTax, Mode: FlatAmount, Value: 50, FICAExempt: true},
			{Name: "Union dues", Kind: PostTax, Mode: FlatAmount, Value: 20},
		},
	}
	res, err := CalculatePaycheck(in)
	if err != nil {
		t.Fatal(err)
	}
	assertMoney(t, "PreTaxDeductions", res.PreTaxDeductions, 150)
	assertMoney(t, "PostTaxDeductions", res.PostTaxDeductions, 20)
	assertMoney(t, "TaxableIncome", res.TaxableIncome, 1850)

	// (1850*26 - 14600) = 33500 annual federal taxable.
	wantFederal := (1160 + (33500-11600)*0.12) / 26
	assertMoney(t, "Federal", res.Taxes.Federal, math.Round(wantFederal*100)/100)
	assertMoney(t, "State", res.Taxes.State, 0)
	// FICA wages exclude the section 125 medical premium only.
	assertMoney(t, "SocialSecurity", res.Taxes.SocialSecurity, 1950*0.062)
	// 28.275 rounds either way depending on float noise.
	if got := res.Taxes.Medicare.Float64(); math.Abs(got-28.275) > 0.0051 {
		t.Errorf("Medicare = %v, want 28.27 or 28.28", got)
	}

	want := res.TaxableIncome.Sub(res.Taxes.Total).Sub(res.PostTaxDeductions)
	if !res.NetPay.Equal(want) {
		t.Errorf("NetPay = %v, want %v", res.NetPay, want)
	}
	if total := Sum(res.Taxes.Federal, res.Taxes.State, res.Taxes.Local, res.Taxes.SocialSecurity, res.Taxes.Medicare); !total.Equal(res.Taxes.Total) {
		t.Errorf("Taxes.Total = %v, want %v", res.Taxes.Total, total)
	}
	if len(res.Deductions) != 3 {
		t.Errorf("len(Deductions) = %d, want 3", len(res.Deductions))
	}
}

func TestCalculatePaycheck_LocalTax(t *testing.T) {
	res, err := CalculatePaycheck(PaycheckInput{GrossPay: USD(1000), Frequency: Weekly, State: "PA", LocalRate: 1.5})
	if err != nil {
		t.Fatal(err)
	}
	assertMoney(t, "Local", res.Taxes.Local, 15)
	assertMoney(t, "State", res.Taxes.State, 30.70)
}

func TestCalculatePaycheck_DeductionsAboveGross(t *testing.T) {
	res, err := CalculatePaycheck(PaycheckInput{
		GrossPay:   USD(500),
		Frequency:  Monthly,
		Deductions: []Deduction{{Name: "Big", Kind: PreTax, Mode: FlatAmount, Value: 800}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.TaxableIncome.IsZero() {
		t.Errorf("TaxableIncome = %v, want 0", res.TaxableIncome)
	}
}

func TestCalculatePaycheck_Annualized(t *testing.T) {
	res, err := CalculatePaycheck(PaycheckInput{GrossPay: USD(5000), Frequency: Semimonthly, State: "WA"})
	if err != nil {
		t.Fatal(err)
	}
	a := res.Annualized()
	assertMoney(t, "GrossPay", a.GrossPay, 120000)
	assertMoney(t, "NetPay", a.NetPay, res.NetPay.Float64()*24)
	if r := res.EffectiveTaxRate(); r <= 0 || r >= 100 {
		t.Errorf("EffectiveTaxRate() = %v", r)
	}
}

func TestCalculatePaycheck_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		in   PaycheckInput
	}{
		{"zero gross", PaycheckInput{GrossPay: USD(0)}},
		{"negative local", PaycheckInput{GrossPay: USD(100), LocalRate: -1}},
		{"bad kind", PaycheckInput{GrossPay: USD(100), Deductions: []Deduction{{Name: "x", Kind: "other", Mode: FlatAmount}}}},
		{"bad mode", PaycheckInput{GrossPay: USD(100), Deductions: []Deduction{{Name: "x", Kind: PreTax, Mode: "other"}}}},
		{"percent above 100", PaycheckInput{GrossPay: USD(100), Deductions: []Deduction{{Name: "x", Kind: PreTax, Mode: PercentOfPay, Value: 101}}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := CalculatePaycheck(tc.in); !IsValidationError(err) {
				t.Errorf("CalculatePaycheck() error = %v, want a ValidationError", err)
			}
		})
	}
}
