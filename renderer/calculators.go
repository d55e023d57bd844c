package renderer

import (
	"fmt"

	"github.com/etnz/tradedesk"
)

// Paycheck reports the gross to net breakdown of one paycheck and its
// annual equivalent.
func Paycheck(res tradedesk.PaycheckResult) Report {
	year := res.Annualized()
	row := func(label string, per, annual tradedesk.Money) []string {
		return []string{label, money(per), money(annual)}
	}
	rows := [][]string{
		row("Gross pay", res.GrossPay, year.GrossPay),
		row("Pre-tax deductions", res.PreTaxDeductions, year.PreTaxDeductions),
		row("Taxable income", res.TaxableIncome, year.TaxableIncome),
		row("Federal tax", res.Taxes.Federal, year.Taxes.Federal),
		row("State tax", res.Taxes.State, year.Taxes.State),
		row("Local tax", res.Taxes.Local, year.Taxes.Local),
		row("Social Security", res.Taxes.SocialSecurity, year.Taxes.SocialSecurity),
		row("Medicare", res.Taxes.Medicare, year.Taxes.Medicare),
		row("Post-tax deductions", res.PostTaxDeductions, year.PostTaxDeductions),
		row("Net pay", res.NetPay, year.NetPay),
	}
	r := Report{
		Title: fmt.Sprintf("Paycheck (%s)", res.Frequency),
		Figures: []Figure{
			{"Net pay", money(res.NetPay)},
			{"Total taxes", money(res.Taxes.Total)},
		},
		Tables: []Table{{
			Title:   "Breakdown",
			Header:  []string{"", "Per paycheck", "Annual"},
			Rows:    rows,
			Numeric: []bool{false, true, true},
		}},
	}
	if len(res.Deductions) > 0 {
		t := Table{Title: "Deductions", Header: []string{"Name", "Kind", "Amount"}, Numeric: []bool{false, false, true}}
		for _, d := range res.Deductions {
			t.Rows = append(t.Rows, []string{d.Name, string(d.Kind), money(d.Amount)})
		}
		r.Tables = append(r.Tables, t)
	}
	return r
}

// WhatIf reports the net pay impact of a contribution change against the
// paycheck it was projected from.
func WhatIf(base tradedesk.PaycheckResult, w tradedesk.WhatIf) Report {
	name := w.Variable
	if v, err := tradedesk.LookupVariable(w.Variable); err == nil {
		name = v.Name
	}
	r := Report{
		Title: fmt.Sprintf("What if: %s at %g%%", name, w.AdjustmentPercent),
		Notes: []string{fmt.Sprintf("Marginal rates: federal %s, state %s.", fraction(w.FederalMarginalRate), fraction(w.StateMarginalRate))},
		Figures: []Figure{
			{"Current net pay", money(base.NetPay)},
			{"New net pay", money(w.NewNetPay)},
			{"Net pay change", w.NetPayChange().SignedString()},
		},
		Tables: []Table{{
			Header: []string{"", "Per paycheck", "Annual"},
			Rows: [][]string{
				{"Contribution", money(w.AdjustmentAmount), money(w.AnnualAdjustment)},
				{"Tax savings", money(w.TaxSavings), money(w.TaxSavings.MulInt(w.PeriodsPerYear))},
				{"Net cost", money(w.NetCost), money(w.AnnualNetCost)},
				{"Employer match", money(w.EmployerMatch), money(w.AnnualEmployerMatch)},
			},
			Numeric: []bool{false, true, true},
		}},
	}
	return r
}

// RMD reports a required minimum distribution projection.
func RMD(p tradedesk.RMDProjection) Report {
	t := Table{
		Header:  []string{"Year", "Age", "Start balance", "Factor", "Distribution", "End balance"},
		Numeric: []bool{false, true, true, true, true, true},
	}
	for _, y := range p.Years {
		factor := ""
		if y.Factor > 0 {
			factor = ratio(y.Factor)
		}
		t.Rows = append(t.Rows, []string{fmt.Sprint(y.Year), integer(y.Age), usd(y.StartBalance), factor, usd(y.Distribution), usd(y.EndBalance)})
	}
	return Report{
		Title: "Required Minimum Distributions",
		Figures: []Figure{
			{"Distributions start at age", integer(p.StartAge)},
			{"Total distributions", usd(p.TotalDistributions)},
		},
		Tables: []Table{t},
	}
}

// Fire reports a financial independence projection.
func Fire(p tradedesk.FirePlan) Report {
	reached := "not within the horizon"
	if p.YearsToFire >= 0 {
		reached = fmt.Sprintf("in %d years, at age %d", p.YearsToFire, p.FireAge)
	}
	t := Table{
		Header:  []string{"Year", "Age", "Balance", "Spending", "FIRE number", "Progress"},
		Numeric: []bool{false, true, true, true, true, true},
	}
	for _, y := range p.Years {
		t.Rows = append(t.Rows, []string{fmt.Sprint(y.Year), integer(y.Age), usd(y.Balance), usd(y.Spending), usd(y.FireNumber), fraction(y.Progress)})
	}
	return Report{
		Title: "Financial Independence",
		Figures: []Figure{
			{"FIRE number", usd(p.FireNumber)},
			{"Independence", reached},
		},
		Tables: []Table{t},
	}
}

// Mortgage reports a loan repayment. With yearly set, the schedule is
// summarized by year instead of month.
func Mortgage(a tradedesk.Amortization, yearly bool) Report {
	t := Table{
		Header:  []string{"Month", "Payment", "Principal", "Interest", "Balance"},
		Numeric: []bool{false, true, true, true, true},
	}
	if yearly {
		t.Header[0] = "Year"
		var pay, prin, intr float64
		for _, row := range a.Schedule {
			pay, prin, intr = pay+row.Payment, prin+row.Principal, intr+row.Interest
			if row.Month%12 == 0 || row.Month == len(a.Schedule) {
				t.Rows = append(t.Rows, []string{integer((row.Month + 11) / 12), usd(pay), usd(prin), usd(intr), usd(row.Balance)})
				pay, prin, intr = 0, 0, 0
			}
		}
	} else {
		for _, row := range a.Schedule {
			t.Rows = append(t.Rows, []string{integer(row.Month), usd(row.Payment), usd(row.Principal), usd(row.Interest), usd(row.Balance)})
		}
	}
	return Report{
		Title: "Mortgage",
		Figures: []Figure{
			{"Monthly payment", usd(a.MonthlyPayment)},
			{"Total paid", usd(a.TotalPaid)},
			{"Total interest", usd(a.TotalInterest)},
		},
		Tables: []Table{t},
	}
}

// Rental reports the investment metrics of a rental property.
func Rental(a tradedesk.RentalAnalysis) Report {
	onePercent := "fails"
	if a.OnePercentRule {
		onePercent = "passes"
	}
	return Report{
		Title: "Rental Property",
		Figures: []Figure{
			{"Monthly cash flow", usd(a.MonthlyCashFlow)},
			{"Cap rate", fraction(a.CapRate)},
			{"Cash on cash", fraction(a.CashOnCash)},
		},
		Tables: []Table{{
			Header: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Loan amount", usd(a.LoanAmount)},
				{"Monthly mortgage", usd(a.MonthlyMortgage)},
				{"Effective gross income", usd(a.EffectiveGrossIncome)},
				{"Operating expenses", usd(a.OperatingExpenses)},
				{"Net operating income", usd(a.NOI)},
				{"Annual cash flow", usd(a.AnnualCashFlow)},
				{"Cash invested", usd(a.CashInvested)},
				{"DSCR", ratio(a.DSCR)},
				{"Gross rent multiplier", ratio(a.GrossRentMultiplier)},
				{"1% rule", onePercent},
			},
			Numeric: []bool{false, true},
		}},
	}
}

// CoveredCall reports the income profile of a covered call.
func CoveredCall(a tradedesk.CoveredCallAnalysis) Report {
	return Report{
		Title: "Covered Call",
		Figures: []Figure{
			{"Premium income", usd(a.PremiumIncome)},
			{"Annualized yield", fraction(a.AnnualizedYield)},
		},
		Tables: []Table{{
			Header: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Shares", integer(a.Shares)},
				{"Premium yield", fraction(a.PremiumYield)},
				{"Breakeven", usd(a.Breakeven)},
				{"Max profit", usd(a.MaxProfit)},
				{"Return if called", fraction(a.ReturnIfCalled)},
				{"Annualized if called", fraction(a.AnnualizedIfCalled)},
				{"Downside protection", fraction(a.DownsideProtection)},
			},
			Numeric: []bool{false, true},
		}},
	}
}

// Option reports a theoretical option price and its greeks.
func Option(o tradedesk.OptionSpec, p tradedesk.OptionPrice) Report {
	return Report{
		Title: fmt.Sprintf("%s %s strike, %d days", o.Type, amount(o.Strike), o.DaysToExpiry),
		Figures: []Figure{
			{"Price", amount(p.Price)},
			{"Intrinsic value", amount(p.Intrinsic)},
			{"Time value", amount(p.TimeValue)},
		},
		Tables: []Table{{
			Title:   "Greeks",
			Header:  []string{"Delta", "Gamma", "Theta", "Vega", "Rho"},
			Rows:    [][]string{{fmt.Sprintf("%.4f", p.Delta), fmt.Sprintf("%.4f", p.Gamma), fmt.Sprintf("%.4f", p.Theta), fmt.Sprintf("%.4f", p.Vega), fmt.Sprintf("%.4f", p.Rho)}},
			Numeric: []bool{true, true, true, true, true},
		}},
	}
}

func statsTable(title string, s tradedesk.ReturnStats) Table {
	return Table{
		Title:  title,
		Header: []string{"Statistic", "Value"},
		Rows: [][]string{
			{"Periods", integer(s.Periods)},
			{"Total return", fraction(s.TotalReturn)},
			{"Annualized return", fraction(s.AnnualizedReturn)},
			{"Volatility", fraction(s.Volatility)},
			{"Sharpe", ratio(s.Sharpe)},
			{"Sortino", ratio(s.Sortino)},
			{"Max drawdown", fraction(s.MaxDrawdown)},
			{"Win rate", fraction(s.WinRate)},
			{"Best period", fraction(s.Best)},
			{"Worst period", fraction(s.Worst)},
		},
		Numeric: []bool{false, true},
	}
}

// Returns reports return statistics.
func Returns(s tradedesk.ReturnStats) Report {
	return Report{Title: "Returns", Tables: []Table{statsTable("", s)}}
}

// Backtest reports a moving average crossover backtest.
func Backtest(res tradedesk.BacktestResult) Report {
	return Report{
		Title: fmt.Sprintf("SMA %d/%d Crossover", res.Fast, res.Slow),
		Figures: []Figure{
			{"Total return", fraction(res.TotalReturn)},
			{"Buy and hold", fraction(res.BuyAndHold)},
			{"Final equity", usd(res.FinalEquity)},
			{"Trades", fmt.Sprintf("%d (%d winning)", res.Trades, res.WinningTrades)},
		},
		Tables: []Table{statsTable("Statistics", res.Stats)},
	}
}

// WalkForward reports a walk-forward analysis window by window.
func WalkForward(res tradedesk.WalkForwardResult) Report {
	t := Table{
		Title:   "Windows",
		Header:  []string{"Start", "Fast", "Slow", "In sample", "Out of sample"},
		Numeric: []bool{true, true, true, true, true},
	}
	for _, w := range res.Windows {
		t.Rows = append(t.Rows, []string{integer(w.Start), integer(w.Fast), integer(w.Slow), fraction(w.InSampleReturn), fraction(w.OutOfSampleReturn)})
	}
	return Report{
		Title: "Walk-Forward Analysis",
		Figures: []Figure{
			{"Out of sample return", fraction(res.OutOfSampleReturn)},
			{"Efficiency", ratio(res.Efficiency)},
		},
		Tables: []Table{t, statsTable("Out of sample statistics", res.Stats)},
	}
}
