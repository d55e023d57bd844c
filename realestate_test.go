package tradedesk

import (
	"math"
	"testing"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestMonthlyPayment(t *testing.T) {
	testCases := []struct {
		name      string
		principal float64
		rate      float64
		years     int
		want      float64
	}{
		{"30y at 6%", 200000, 0.06, 30, 1199.10},
		{"15y at 5%", 300000, 0.05, 15, 2372.38},
		{"interest free", 120000, 0, 10, 1000},
		{"no term", 1000, 0.05, 0, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MonthlyPayment(tc.principal, tc.rate, tc.years); !near(got, tc.want, 0.01) {
				t.Errorf("MonthlyPayment() = %.4f, want %.2f", got, tc.want)
			}
		})
	}
}

func TestRemainingBalance(t *testing.T) {
	if got := RemainingBalance(200000, 0.06, 30, 0); got != 200000 {
		t.Errorf("RemainingBalance(0 paid) = %v", got)
	}
	if got := RemainingBalance(200000, 0.06, 30, 360); got != 0 {
		t.Errorf("RemainingBalance(all paid) = %v", got)
	}
	if got := RemainingBalance(120000, 0, 10, 60); got != 60000 {
		t.Errorf("RemainingBalance(interest free, half) = %v, want 60000", got)
	}
	a, err := Amortize(200000, 0.06, 30)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := RemainingBalance(200000, 0.06, 30, 120), a.Schedule[119].Balance; !near(got, want, 0.01) {
		t.Errorf("RemainingBalance(120) = %v, schedule says %v", got, want)
	}
}

func TestAmortize(t *testing.T) {
	a, err := Amortize(200000, 0.06, 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Schedule) != 360 {
		t.Fatalf("len(Schedule) = %d, want 360", len(a.Schedule))
	}
	if last := a.Schedule[359]; last.Balance != 0 {
		t.Errorf("final balance = %v, want 0", last.Balance)
	}
	if first := a.Schedule[0]; !near(first.Interest, 1000, 1e-9) {
		t.Errorf("first interest = %v, want 1000", first.Interest)
	}
	if !near(a.TotalPaid-a.TotalInterest, 200000, 0.01) {
		t.Errorf("principal repaid = %v, want 200000", a.TotalPaid-a.TotalInterest)
	}
	if _, err := Amortize(0, 0.05, 30); !IsValidationError(err) {
		t.Errorf("Amortize(0) error = %v", err)
	}
}

func TestAnalyzeRental(t *testing.T) {
	a, err := AnalyzeRental(RentalInput{
		PurchasePrice:   200000,
		DownPayment:     0.2,
		LoanYears:       30,
		MonthlyRent:     2000,
		AnnualTaxes:     2400,
		AnnualInsurance: 1200,
	})
	if err != nil {
		t.Fatal(err)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"LoanAmount", a.LoanAmount, 160000},
		{"MonthlyMortgage", a.MonthlyMortgage, 160000.0 / 360},
		{"EffectiveGrossIncome", a.EffectiveGrossIncome, 24000},
		{"NOI", a.NOI, 20400},
		{"CapRate", a.CapRate, 0.102},
		{"AnnualCashFlow", a.AnnualCashFlow, 20400 - 160000.0/30},
		{"CashOnCash", a.CashOnCash, (20400 - 160000.0/30) / 40000},
		{"DSCR", a.DSCR, 20400 / (160000.0 / 30)},
		{"GrossRentMultiplier", a.GrossRentMultiplier, 200000.0 / 24000},
	}
	for _, c := range checks {
		if !near(c.got, c.want, 1e-6) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if !a.OnePercentRule {
		t.Errorf("OnePercentRule = false, want true")
	}
}

func TestAnalyzeRental_AllCash(t *testing.T) {
	a, err := AnalyzeRental(RentalInput{PurchasePrice: 100000, DownPayment: 1, MonthlyRent: 900, VacancyRate: 0.1, ManagementRate: 0.1})
	if err != nil {
		t.Fatal(err)
	}
	if a.DSCR != 0 || a.MonthlyMortgage != 0 {
		t.Errorf("all cash purchase: DSCR = %v, mortgage = %v", a.DSCR, a.MonthlyMortgage)
	}
	// 9720 collected, 972 management.
	if !near(a.NOI, 8748, 1e-6) {
		t.Errorf("NOI = %v, want 8748", a.NOI)
	}
	if a.OnePercentRule {
		t.Errorf("OnePercentRule = true, want false")
	}
}
