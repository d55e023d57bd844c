package tradedesk

import (
	"math"
	"testing"
)

func TestRMDStartAge(t *testing.T) {
	testCases := []struct{ birth, want int }{
		{1945, 72}, {1950, 72}, {1951, 73}, {1959, 73}, {1960, 75}, {1990, 75},
	}
	for _, tc := range testCases {
		if got := RMDStartAge(tc.birth); got != tc.want {
			t.Errorf("RMDStartAge(%d) = %d, want %d", tc.birth, got, tc.want)
		}
	}
}

func TestDistributionPeriod(t *testing.T) {
	testCases := []struct {
		age  int
		want float64
	}{
		{71, 0}, {72, 27.4}, {75, 24.6}, {90, 12.2}, {120, 2.0}, {125, 2.0},
	}
	for _, tc := range testCases {
		if got := DistributionPeriod(tc.age); got != tc.want {
			t.Errorf("DistributionPeriod(%d) = %v, want %v", tc.age, got, tc.want)
		}
	}
}

func TestProjectRMD(t *testing.T) {
	p, err := ProjectRMD(RMDInput{BirthYear: 1951, Balance: 100000, StartYear: 2023, Years: 3})
	if err != nil {
		t.Fatal(err)
	}
	if p.StartAge != 73 {
		t.Errorf("StartAge = %d, want 73", p.StartAge)
	}
	if len(p.Years) != 3 {
		t.Fatalf("len(Years) = %d, want 3", len(p.Years))
	}
	// age 72 is before the start age: no distribution.
	if y := p.Years[0]; y.Age != 72 || y.Distribution != 0 || y.EndBalance != 100000 {
		t.Errorf("Years[0] = %+v", y)
	}
	y := p.Years[1]
	if want := 100000 / 26.5; math.Abs(y.Distribution-want) > 1e-9 {
		t.Errorf("Years[1].Distribution = %v, want %v", y.Distribution, want)
	}
	if p.Years[2].StartBalance != y.EndBalance {
		t.Errorf("balances are not chained: %v != %v", p.Years[2].StartBalance, y.EndBalance)
	}
	var total float64
	for _, y := range p.Years {
		total += y.Distribution
	}
	if math.Abs(total-p.TotalDistributions) > 1e-9 {
		t.Errorf("TotalDistributions = %v, want %v", p.TotalDistributions, total)
	}
}

func TestProjectRMD_Invalid(t *testing.T) {
	for _, in := range []RMDInput{
		{BirthYear: 1950, Balance: -1, StartYear: 2024, Years: 5},
		{BirthYear: 1950, Balance: 1, StartYear: 2024, Years: 0},
		{BirthYear: 2030, Balance: 1, StartYear: 2024, Years: 5},
	} {
		if _, err := ProjectRMD(in); !IsValidationError(err) {
			t.Errorf("ProjectRMD(%+v) error = %v, want a ValidationError", in, err)
		}
	}
}

func TestFireNumber(t *testing.T) {
	if got := FireNumber(40000, 0.04); got != 1e6 {
		t.Errorf("FireNumber(40000, 4%%) = %v, want 1e6", got)
	}
	if got := FireNumber(40000, 0); got != 1e6 {
		t.Errorf("FireNumber(40000, default) = %v, want 1e6", got)
	}
}

func TestProjectFire(t *testing.T) {
	plan, err := ProjectFire(FireInput{CurrentAge: 30, AnnualContribution: 10000, AnnualSpending: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if plan.YearsToFire != 3 || plan.FireAge != 33 {
		t.Errorf("YearsToFire, FireAge = %d, %d, want 3, 33", plan.YearsToFire, plan.FireAge)
	}
	if len(plan.Years) != 4 {
		t.Errorf("len(Years) = %d, want 4", len(plan.Years))
	}
	if last := plan.Years[len(plan.Years)-1]; last.Progress != 1 {
		t.Errorf("Progress = %v, want 1", last.Progress)
	}
}

func TestProjectFire_AlreadyIndependent(t *testing.T) {
	plan, err := ProjectFire(FireInput{CurrentSavings: 2e6, AnnualSpending: 40000})
	if err != nil {
		t.Fatal(err)
	}
	if plan.YearsToFire != 0 {
		t.Errorf("YearsToFire = %d, want 0", plan.YearsToFire)
	}
}

func TestProjectFire_Unreachable(t *testing.T) {
	plan, err := ProjectFire(FireInput{AnnualSpending: 50000, AnnualContribution: 100, InflationRate: 0.03, MaxYears: 10})
	if err != nil {
		t.Fatal(err)
	}
	if plan.YearsToFire != -1 {
		t.Errorf("YearsToFire = %d, want -1", plan.YearsToFire)
	}
	if len(plan.Years) != 11 {
		t.Errorf("len(Years) = %d, want 11", len(plan.Years))
	}
}
