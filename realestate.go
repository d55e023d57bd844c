package tradedesk

import "math"

// MonthlyPayment returns the fixed monthly payment of a fully amortizing
// loan. A zero rate degenerates to principal spread evenly over the term.
func MonthlyPayment(principal, annualRate float64, years int) float64 {
	n := float64(years * 12)
	if n <= 0 || principal <= 0 {
		return 0
	}
	r := annualRate / 12
	if r == 0 {
		return principal / n
	}
	f := math.Pow(1+r, n)
	return principal * r * f / (f - 1)
}

// RemainingBalance returns the loan balance after paid monthly payments.
func RemainingBalance(principal, annualRate float64, years, paid int) float64 {
	n := years * 12
	if paid >= n {
		return 0
	}
	if paid <= 0 {
		return principal
	}
	r := annualRate / 12
	if r == 0 {
		return principal * float64(n-paid) / float64(n)
	}
	pmt := MonthlyPayment(principal, annualRate, years)
	f := math.Pow(1+r, float64(paid))
	return math.Max(0, principal*f-pmt*(f-1)/r)
}

// AmortizationRow is one monthly payment of a loan.
type AmortizationRow struct {
	Month     int     `json:"month"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

// Amortization is the full repayment schedule of a loan.
type Amortization struct {
	MonthlyPayment float64           `json:"monthly_payment"`
	TotalPaid      float64           `json:"total_paid"`
	TotalInterest  float64           `json:"total_interest"`
	Schedule       []AmortizationRow `json:"schedule"`
}

// Amortize builds the monthly schedule of a fixed rate loan. The last
// payment absorbs the rounding residue so the balance ends at zero.
func Amortize(principal, annualRate float64, years int) (Amortization, error) {
	if principal <= 0 {
		return Amortization{}, ValidationError{Field: "principal", Message: "must be greater than zero"}
	}
	if years <= 0 || years > 50 {
		return Amortization{}, ValidationError{Field: "years", Message: "must be within [1, 50]"}
	}
	if annualRate < 0 {
		return Amortization{}, ValidationError{Field: "rate", Message: "must not be negative"}
	}
	a := Amortization{MonthlyPayment: MonthlyPayment(principal, annualRate, years)}
	r := annualRate / 12
	balance := principal
	n := years * 12
	for m := 1; m <= n; m++ {
		interest := balance * r
		pay := a.MonthlyPayment
		if m == n {
			pay = balance + interest
		}
		balance -= pay - interest
		if balance < 1e-9 {
			balance = 0
		}
		a.TotalPaid += pay
		a.TotalInterest += interest
		a.Schedule = append(a.Schedule, AmortizationRow{Month: m, Payment: pay, Principal: pay - interest, Interest: interest, Balance: balance})
	}
	return a, nil
}

// RentalInput describes a rental property purchase. Rates are fractions
// (0.065 for 6.5%), amounts are monthly unless prefixed Annual.
type RentalInput struct {
	PurchasePrice    float64 `json:"purchase_price" yaml:"purchase_price"`
	DownPayment      float64 `json:"down_payment_percent" yaml:"down_payment_percent"`
	InterestRate     float64 `json:"interest_rate" yaml:"interest_rate"`
	LoanYears        int     `json:"loan_years" yaml:"loan_years"`
	ClosingCosts     float64 `json:"closing_costs" yaml:"closing_costs"`
	RehabCosts       float64 `json:"rehab_costs" yaml:"rehab_costs"`
	MonthlyRent      float64 `json:"monthly_rent" yaml:"monthly_rent"`
	VacancyRate      float64 `json:"vacancy_rate" yaml:"vacancy_rate"`
	AnnualTaxes      float64 `json:"annual_property_tax" yaml:"annual_property_tax"`
	AnnualInsurance  float64 `json:"annual_insurance" yaml:"annual_insurance"`
	MaintenanceRate  float64 `json:"maintenance_rate" yaml:"maintenance_rate"` // of gross rent
	ManagementRate   float64 `json:"management_rate" yaml:"management_rate"`   // of collected rent
	MonthlyHOA       float64 `json:"monthly_hoa" yaml:"monthly_hoa"`
	OtherMonthlyCost float64 `json:"other_monthly_costs" yaml:"other_monthly_costs"`
}

// RentalAnalysis is the outcome of AnalyzeRental.
type RentalAnalysis struct {
	LoanAmount           float64 `json:"loan_amount"`
	MonthlyMortgage      float64 `json:"monthly_mortgage"`
	EffectiveGrossIncome float64 `json:"effective_gross_income"` // annual
	OperatingExpenses    float64 `json:"operating_expenses"`     // annual
	NOI                  float64 `json:"noi"`
	CapRate              float64 `json:"cap_rate"`
	MonthlyCashFlow      float64 `json:"monthly_cash_flow"`
	AnnualCashFlow       float64 `json:"annual_cash_flow"`
	CashInvested         float64 `json:"cash_invested"`
	CashOnCash           float64 `json:"cash_on_cash"`
	DSCR                 float64 `json:"dscr"`
	GrossRentMultiplier  float64 `json:"gross_rent_multiplier"`
	OnePercentRule       bool    `json:"one_percent_rule"`
}

// AnalyzeRental computes the usual investment metrics of a rental. Ratios
// with a zero denominator are reported as 0.
func AnalyzeRental(in RentalInput) (RentalAnalysis, error) {
	if in.PurchasePrice <= 0 {
		return RentalAnalysis{}, ValidationError{Field: "purchase_price", Message: "must be greater than zero"}
	}
	if in.DownPayment < 0 || in.DownPayment > 1 {
		return RentalAnalysis{}, ValidationError{Field: "down_payment_percent", Message: "must be within [0, 1]"}
	}
	if in.VacancyRate < 0 || in.VacancyRate > 1 {
		return RentalAnalysis{}, ValidationError{Field: "vacancy_rate", Message: "must be within [0, 1]"}
	}
	var a RentalAnalysis
	down := in.PurchasePrice * in.DownPayment
	a.LoanAmount = in.PurchasePrice - down
	years := in.LoanYears
	if years == 0 {
		years = 30
	}
	a.MonthlyMortgage = MonthlyPayment(a.LoanAmount, in.InterestRate, years)

	grossRent := in.MonthlyRent * 12
	a.EffectiveGrossIncome = grossRent * (1 - in.VacancyRate)
	a.OperatingExpenses = in.AnnualTaxes + in.AnnualInsurance +
		grossRent*in.MaintenanceRate +
		a.EffectiveGrossIncome*in.ManagementRate +
		(in.MonthlyHOA+in.OtherMonthlyCost)*12
	a.NOI = a.EffectiveGrossIncome - a.OperatingExpenses
	a.CapRate = a.NOI / in.PurchasePrice

	debtService := a.MonthlyMortgage * 12
	a.AnnualCashFlow = a.NOI - debtService
	a.MonthlyCashFlow = a.AnnualCashFlow / 12
	a.CashInvested = down + in.ClosingCosts + in.RehabCosts
	if a.CashInvested > 0 {
		a.CashOnCash = a.AnnualCashFlow / a.CashInvested
	}
	if debtService > 0 {
		a.DSCR = a.NOI / debtService
	}
	if grossRent > 0 {
		a.GrossRentMultiplier = in.PurchasePrice / grossRent
	}
	a.OnePercentRule = in.MonthlyRent >= in.PurchasePrice*0.01
	return a, nil
}
