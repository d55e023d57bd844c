package tradedesk

import "testing"

func TestAnalyzeReturns(t *testing.T) {
	s := AnalyzeReturns([]float64{0.1, -0.1}, 12, 0)
	checks := []struct {
		name      string
		got, want float64
	}{
		{"TotalReturn", s.TotalReturn, -0.01},
		{"Mean", s.Mean, 0},
		{"MaxDrawdown", s.MaxDrawdown, 0.1},
		{"WinRate", s.WinRate, 0.5},
		{"Best", s.Best, 0.1},
		{"Worst", s.Worst, -0.1},
		{"Sharpe", s.Sharpe, 0},
	}
	for _, c := range checks {
		if !near(c.got, c.want, 1e-9) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if s.Volatility <= 0 {
		t.Errorf("Volatility = %v, want positive", s.Volatility)
	}
}

func TestAnalyzeReturns_Empty(t *testing.T) {
	if s := AnalyzeReturns(nil, 252, 0.02); s != (ReturnStats{}) {
		t.Errorf("AnalyzeReturns(nil) = %+v, want zero", s)
	}
}

func TestAnalyzeReturns_ConstantGain(t *testing.T) {
	s := AnalyzeReturns([]float64{0.01, 0.01, 0.01}, 252, 0)
	if s.Volatility != 0 || s.Sharpe != 0 || s.Sortino != 0 {
		t.Errorf("zero volatility gives Volatility %v Sharpe %v Sortino %v, want 0", s.Volatility, s.Sharpe, s.Sortino)
	}
	if s.MaxDrawdown != 0 {
		t.Errorf("MaxDrawdown = %v, want 0", s.MaxDrawdown)
	}
}

func TestSimpleReturns(t *testing.T) {
	got := SimpleReturns([]float64{100, 110, 99})
	want := []float64{0.1, -0.1}
	if len(got) != len(want) {
		t.Fatalf("SimpleReturns() = %v", got)
	}
	for i := range want {
		if !near(got[i], want[i], 1e-12) {
			t.Errorf("SimpleReturns()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if SimpleReturns([]float64{1}) != nil {
		t.Errorf("SimpleReturns of one price should be nil")
	}
}
