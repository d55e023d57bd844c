package tradedesk

import "testing"

func TestPayFrequency(t *testing.T) {
	periods := []struct {
		freq PayFrequency
		want int
	}{
		{Weekly, 52},
		{Biweekly, 26},
		{Semimonthly, 24},
		{Monthly, 12},
		{PayFrequency("quarterly"), 26},
		{PayFrequency(""), DefaultPeriodsPerYear},
	}
	for _, tc := range periods {
		if got := tc.freq.PeriodsPerYear(); got != tc.want {
			t.Errorf("%q.PeriodsPerYear() = %d, want %d", tc.freq, got, tc.want)
		}
	}

	parse := []struct {
		in      string
		want    PayFrequency
		wantErr bool
	}{
		{in: "weekly", want: Weekly},
		{in: " Week ", want: Weekly},
		{in: "w", want: Weekly},
		{in: "biweekly", want: Biweekly},
		{in: "Bi-Weekly", want: Biweekly},
		{in: "fortnightly", want: Biweekly},
		{in: "b", want: Biweekly},
		{in: "semimonthly", want: Semimonthly},
		{in: "semi-monthly", want: Semimonthly},
		{in: "S", want: Semimonthly},
		{in: "monthly", want: Monthly},
		{in: "month", want: Monthly},
		{in: "m", want: Monthly},
		{in: "quarterly", wantErr: true},
		{in: "daily", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range parse {
		got, err := ParsePayFrequency(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParsePayFrequency(%q) = %q, want error", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePayFrequency(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParsePayFrequency(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
