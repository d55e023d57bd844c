package tradedesk

import "testing"

func TestSizePosition(t *testing.T) {
	s := DefaultRiskSettings()
	testCases := []struct {
		name        string
		entry, stop float64
		shares      int
		capped      bool
	}{
		{"risk bound", 20, 18, 50, false},
		{"position cap", 50, 49, 40, true},
		{"short stop above", 20, 22, 50, false},
		{"stop too wide", 100, 1, 1, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := SizePosition(s, tc.entry, tc.stop)
			if err != nil {
				t.Fatal(err)
			}
			if p.Shares != tc.shares || p.CappedByLimit != tc.capped {
				t.Errorf("SizePosition(%v, %v) = %d shares capped=%v, want %d capped=%v", tc.entry, tc.stop, p.Shares, p.CappedByLimit, tc.shares, tc.capped)
			}
			if p.RiskAmount > p.RiskBudget+1e-9 {
				t.Errorf("RiskAmount %v exceeds budget %v", p.RiskAmount, p.RiskBudget)
			}
		})
	}
	if _, err := SizePosition(s, 10, 10); !IsValidationError(err) {
		t.Errorf("entry == stop error = %v", err)
	}
}

func TestCheckTrade(t *testing.T) {
	s := DefaultRiskSettings()
	if v := CheckTrade(s, Exposure{OpenPositions: 1, NewPosition: 1000, NewRisk: 50}); len(v) != 0 {
		t.Errorf("CheckTrade(ok) = %v", v)
	}
	v := CheckTrade(s, Exposure{OpenPositions: 5, RealizedToday: -300, NewPosition: 2500, NewRisk: 150})
	want := []string{"max_open_positions", "max_daily_loss", "max_position_size", "max_risk_per_trade"}
	if len(v) != len(want) {
		t.Fatalf("CheckTrade() = %v, want %d violations", v, len(want))
	}
	for i, r := range want {
		if v[i].Rule != r {
			t.Errorf("violation %d = %q, want %q", i, v[i].Rule, r)
		}
	}
}

func TestRiskSettingsValidate(t *testing.T) {
	if err := DefaultRiskSettings().Validate(); err != nil {
		t.Errorf("defaults are invalid: %v", err)
	}
	bad := DefaultRiskSettings()
	bad.MaxRiskPerTrade = 12
	if err := bad.Validate(); !IsValidationError(err) {
		t.Errorf("12%% risk error = %v", err)
	}
	bad = DefaultRiskSettings()
	bad.AccountSize = 50
	if err := bad.Validate(); !IsValidationError(err) {
		t.Errorf("tiny account error = %v", err)
	}
}

func TestTradingRuleValidate(t *testing.T) {
	if err := (TradingRule{Title: "No revenge trades", Category: RuleMind}).Validate(); err != nil {
		t.Error(err)
	}
	if err := (TradingRule{Title: "x", Category: "misc"}).Validate(); !IsValidationError(err) {
		t.Errorf("unknown category error = %v", err)
	}
}
