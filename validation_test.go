package tradedesk

import "testing"

func TestNormalizeTicker(t *testing.T) {
	testCases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"AAPL", "AAPL", false},
		{" msft ", "MSFT", false},
		{"abcdefghij", "ABCDEFGHIJ", false},
		{"", "", true},
		{"BRK.B", "", true},
		{"ABCDEFGHIJK", "", true},
		{"AAPL1", "", true},
	}
	for _, tc := range testCases {
		got, err := NormalizeTicker(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("NormalizeTicker(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeTicker(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidatePortfolioSize(t *testing.T) {
	for _, ok := range []float64{100, 5000, 1e9} {
		if err := ValidatePortfolioSize(ok); err != nil {
			t.Errorf("ValidatePortfolioSize(%v) = %v", ok, err)
		}
	}
	for _, bad := range []float64{99.99, 0, -1, 1e9 + 1} {
		if err := ValidatePortfolioSize(bad); !IsValidationError(err) {
			t.Errorf("ValidatePortfolioSize(%v) = %v, want a ValidationError", bad, err)
		}
	}
}

func TestValidateRiskPercent(t *testing.T) {
	for _, ok := range []float64{0.1, 2, 10} {
		if err := ValidateRiskPercent(ok); err != nil {
			t.Errorf("ValidateRiskPercent(%v) = %v", ok, err)
		}
	}
	for _, bad := range []float64{0, -1, 10.01} {
		if err := ValidateRiskPercent(bad); !IsValidationError(err) {
			t.Errorf("ValidateRiskPercent(%v) = %v, want a ValidationError", bad, err)
		}
	}
}
