package tradedesk

import (
	"errors"
	"math"
	"testing"
)

// baseline computes the paycheck every what-if test starts from.
func baseline(t *testing.T, gross float64, freq PayFrequency, state string) PaycheckResult {
	t.Helper()
	res, err := CalculatePaycheck(PaycheckInput{GrossPay: USD(gross), Frequency: freq, State: state})
	if err != nil {
		t.Fatalf("CalculatePaycheck() error: %v", err)
	}
	return res
}

func assertMoney(t *testing.T, name string, got Money, want float64) {
	t.Helper()
	if math.Abs(got.Float64()-want) > 0.005 {
		t.Errorf("%s = %v, want %.2f", name, got, want)
	}
}

func mustVariable(t *testing.T, id string) Variable {
	t.Helper()
	v, err := LookupVariable(id)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestProjectWhatIf_Example(t *testing.T) {
	res := baseline(t, 2000, Biweekly, "TX")
	w, err := ProjectWhatIf(res, USD(2000), Biweekly, 6, mustVariable(t, "traditional_401k"), EmployerMatch{})
	if err != nil {
		t.Fatal(err)
	}
	assertMoney(t, "AdjustmentAmount", w.AdjustmentAmount, 120)
	assertMoney(t, "AnnualAdjustment", w.AnnualAdjustment, 3120)
	if w.PeriodsPerYear != 26 {
		t.Errorf("PeriodsPerYear = %d, want 26", w.PeriodsPerYear)
	}
	// 52000 annual taxable is in the 22% bracket and Texas has no income tax.
	if w.FederalMarginalRate != 0.22 {
		t.Errorf("FederalMarginalRate = %v, want 0.22", w.FederalMarginalRate)
	}
	if w.StateMarginalRate != 0 {
		t.Errorf("StateMarginalRate = %v, want 0", w.StateMarginalRate)
	}
	assertMoney(t, "TaxSavings", w.TaxSavings, 26.40)
	assertMoney(t, "NetCost", w.NetCost, 93.60)
	assertMoney(t, "NewNetPay", w.NewNetPay, res.NetPay.Float64()-93.60)
	assertMoney(t, "AnnualNetCost", w.AnnualNetCost, 93.60*26)
}

func TestProjectWhatIf_StateMarginal(t *testing.T) {
	res := baseline(t, 2000, Biweekly, "CA")
	w, err := ProjectWhatIf(res, USD(2000), Biweekly, 6, mustVariable(t, "traditional_401k"), EmployerMatch{})
	if err != nil {
		t.Fatal(err)
	}
	// effective 6% in California, marginal is 1.2 times that.
	if math.Abs(w.StateMarginalRate-0.072) > 1e-9 {
		t.Errorf("StateMarginalRate = %v, want 0.072", w.StateMarginalRate)
	}
	assertMoney(t, "TaxSavings", w.TaxSavings, 120*(0.22+0.072))
}

func TestProjectWhatIf_ZeroAdjustment(t *testing.T) {
	for _, v := range Variables {
		t.Run(v.ID, func(t *testing.T) {
			res := baseline(t, 3500, Semimonthly, "NY")
			w, err := ProjectWhatIf(res, USD(3500), Semimonthly, 0, v, EmployerMatch{Enabled: true, Rate: 50, UpToPercent: 6})
			if err != nil {
				t.Fatal(err)
			}
			if !w.TaxSavings.IsZero() {
				t.Errorf("TaxSavings = %v, want 0", w.TaxSavings)
			}
			if !w.NetCost.IsZero() {
				t.Errorf("NetCost = %v, want 0", w.NetCost)
			}
			if !w.NewNetPay.Equal(res.NetPay) {
				t.Errorf("NewNetPay = %v, want %v", w.NewNetPay, res.NetPay)
			}
			if !w.EmployerMatch.IsZero() {
				t.Errorf("EmployerMatch = %v, want 0", w.EmployerMatch)
			}
		})
	}
}

func TestProjectWhatIf_CostBounds(t *testing.T) {
	for _, v := range Variables {
		for _, adj := range []float64{1, 5, 10} {
			if adj > v.MaxPercent {
				continue
			}
			res := baseline(t, 4200, Monthly, "OR")
			w, err := ProjectWhatIf(res, USD(4200), Monthly, adj, v, EmployerMatch{})
			if err != nil {
				t.Fatalf("%s %v%%: %v", v.ID, adj, err)
			}
			switch v.Category {
			case PreTax:
				if w.NetCost.GreaterThan(w.AdjustmentAmount) {
					t.Errorf("%s %v%%: NetCost %v > AdjustmentAmount %v", v.ID, adj, w.NetCost, w.AdjustmentAmount)
				}
				if !w.TaxSavings.IsPositive() {
					t.Errorf("%s %v%%: TaxSavings = %v, want positive", v.ID, adj, w.TaxSavings)
				}
			case PostTax:
				if !w.NetCost.Equal(w.AdjustmentAmount) {
					t.Errorf("%s %v%%: NetCost %v != AdjustmentAmount %v", v.ID, adj, w.NetCost, w.AdjustmentAmount)
				}
				if !w.TaxSavings.IsZero() {
					t.Errorf("%s %v%%: TaxSavings = %v, want 0", v.ID, adj, w.TaxSavings)
				}
			}
		}
	}
}

func TestProjectWhatIf_EmployerMatch(t *testing.T) {
	res := baseline(t, 2000, Biweekly, "TX")
	match := EmployerMatch{Enabled: true, Rate: 50, UpToPercent: 4}

	w, err := ProjectWhatIf(res, USD(2000), Biweekly, 6, mustVariable(t, "traditional_401k"), match)
	if err != nil {
		t.Fatal(err)
	}
	// 50% of the first 4% of 2000.
	assertMoney(t, "EmployerMatch", w.EmployerMatch, 40)
	assertMoney(t, "AnnualEmployerMatch", w.AnnualEmployerMatch, 1040)
	assertMoney(t, "NetCost", w.NetCost, 93.60)

	w, err = ProjectWhatIf(res, USD(2000), Biweekly, 6, mustVariable(t, "hsa"), match)
	if err != nil {
		t.Fatal(err)
	}
	if !w.EmployerMatch.IsZero() {
		t.Errorf("hsa EmployerMatch = %v, want 0", w.EmployerMatch)
	}
}

func TestProjectWhatIf_Invalid(t *testing.T) {
	res := baseline(t, 2000, Biweekly, "TX")
	testCases := []struct {
		name  string
		gross Money
		adj   float64
		v     string
	}{
		{"negative adjustment", USD(2000), -1, "roth_401k"},
		{"above max", USD(2000), 11, "fsa"},
		{"NaN", USD(2000), math.NaN(), "hsa"},
		{"zero gross", USD(0), 5, "traditional_401k"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ProjectWhatIf(res, tc.gross, Biweekly, tc.adj, mustVariable(t, tc.v), EmployerMatch{})
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("ProjectWhatIf() error = %v, want a ValidationError", err)
			}
		})
	}
}

func TestProjectContribution_RoundTrip(t *testing.T) {
	res := baseline(t, 2750, Biweekly, "IL")
	v := mustVariable(t, "traditional_401k")
	match := EmployerMatch{Enabled: true, Rate: 100, UpToPercent: 3}

	up, err := ProjectContribution(res, USD(2750), Biweekly, v, match, 5, 9)
	if err != nil {
		t.Fatal(err)
	}
	if up.AdjustmentPercent != 4 {
		t.Errorf("AdjustmentPercent = %v, want 4", up.AdjustmentPercent)
	}
	if !up.EmployerMatch.IsZero() {
		t.Errorf("EmployerMatch above the cap = %v, want 0", up.EmployerMatch)
	}
	down, err := ProjectContribution(res, USD(2750), Biweekly, v, match, 9, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !up.NetCost.Add(down.NetCost).IsZero() {
		t.Errorf("up %v and down %v do not cancel", up.NetCost, down.NetCost)
	}

	back, err := ProjectContribution(res, USD(2750), Biweekly, v, match, 5, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !back.NewNetPay.Equal(res.NetPay) {
		t.Errorf("NewNetPay = %v, want baseline %v", back.NewNetPay, res.NetPay)
	}
	if got := back.NetPayChange(); !got.IsZero() {
		t.Errorf("NetPayChange() = %v, want 0", got)
	}
}

func TestLookupVariable(t *testing.T) {
	if _, err := LookupVariable("pension"); !IsValidationError(err) {
		t.Errorf("LookupVariable(pension) error = %v, want a ValidationError", err)
	}
	v := mustVariable(t, "espp")
	if v.Category != PostTax || v.MaxPercent != 15 {
		t.Errorf("espp = %+v", v)
	}
}
