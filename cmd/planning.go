package cmd

import (
	"context"
	"flag"
	"time"

	"github.com/etnz/tradedesk"
	"github.com/etnz/tradedesk/renderer"
	"github.com/google/subcommands"
)

type rmdCmd struct {
	in  tradedesk.RMDInput
	out output
}

func (*rmdCmd) Name() string     { return "rmd" }
func (*rmdCmd) Synopsis() string { return "project required minimum distributions" }
func (*rmdCmd) Usage() string {
	return `tradedesk rmd -birth-year <yyyy> -balance <amount> [-return 0.06] [-years 30] [-pdf file]

Project a tax deferred account year by year with the distributions the
Uniform Lifetime Table requires once the RMD age is reached.
`
}

func (c *rmdCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.in.BirthYear, "birth-year", 1955, "year of birth of the account owner")
	f.Float64Var(&c.in.Balance, "balance", 0, "account balance at the start")
	f.Float64Var(&c.in.ExpectedReturn, "return", 0.06, "expected annual return, as a fraction")
	f.IntVar(&c.in.StartYear, "start", time.Now().Year(), "first projected year")
	f.IntVar(&c.in.Years, "years", 30, "number of projected years")
	c.out.SetFlags(f, true)
}

func (c *rmdCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := tradedesk.ProjectRMD(c.in)
	if err != nil {
		return fail("Error: %v", err)
	}
	return c.out.print(renderer.RMD(p), p)
}

type fireCmd struct {
	in  tradedesk.FireInput
	out output
}

func (*fireCmd) Name() string     { return "fire" }
func (*fireCmd) Synopsis() string { return "project when savings reach financial independence" }
func (*fireCmd) Usage() string {
	return `tradedesk fire -age <n> -savings <amount> -contribution <amount> -spending <amount> [-pdf file]

Compound savings and contributions until they cover the FIRE number, the
inflated annual spending over the withdrawal rate.
`
}

func (c *fireCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.in.CurrentAge, "age", 30, "current age")
	f.Float64Var(&c.in.CurrentSavings, "savings", 0, "invested savings today")
	f.Float64Var(&c.in.AnnualContribution, "contribution", 0, "amount invested every year")
	f.Float64Var(&c.in.AnnualSpending, "spending", 0, "annual spending in today's money")
	f.Float64Var(&c.in.ExpectedReturn, "return", 0.07, "expected annual return, as a fraction")
	f.Float64Var(&c.in.InflationRate, "inflation", 0.03, "annual inflation, as a fraction")
	f.Float64Var(&c.in.WithdrawalRate, "withdrawal", tradedesk.DefaultWithdrawalRate, "safe withdrawal rate, as a fraction")
	f.IntVar(&c.in.MaxYears, "max-years", 60, "projection horizon in years")
	c.out.SetFlags(f, true)
}

func (c *fireCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := tradedesk.ProjectFire(c.in)
	if err != nil {
		return fail("Error: %v", err)
	}
	return c.out.print(renderer.Fire(p), p)
}

type mortgageCmd struct {
	principal float64
	rate      float64
	years     int
	monthly   bool
	out       output
}

func (*mortgageCmd) Name() string { return "mortgage" }
func (*mortgageCmd) Synopsis() string {
	return "compute a mortgage payment and its amortization schedule"
}
func (*mortgageCmd) Usage() string {
	return `tradedesk mortgage -principal <amount> -rate <fraction> [-years 30] [-monthly] [-pdf file]

Print the monthly payment of a fixed rate loan and its schedule, by year
unless -monthly is set.
`
}

func (c *mortgageCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.principal, "principal", 0, "loan amount")
	f.Float64Var(&c.rate, "rate", 0.065, "annual interest rate, as a fraction")
	f.IntVar(&c.years, "years", 30, "loan term in years")
	f.BoolVar(&c.monthly, "monthly", false, "print the schedule month by month")
	c.out.SetFlags(f, true)
}

func (c *mortgageCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := tradedesk.Amortize(c.principal, c.rate, c.years)
	if err != nil {
		return fail("Error: %v", err)
	}
	return c.out.print(renderer.Mortgage(a, !c.monthly), a)
}

type rentalCmd struct {
	out output
}

func (*rentalCmd) Name() string     { return "rental" }
func (*rentalCmd) Synopsis() string { return "analyze a rental property from a scenario file" }
func (*rentalCmd) Usage() string {
	return `tradedesk rental <scenario.yaml>

Compute the cash flow, cap rate, cash on cash return and DSCR of a rental
property. Run 'tradedesk topic planning' for the scenario format.
`
}

func (c *rentalCmd) SetFlags(f *flag.FlagSet) { c.out.SetFlags(f, false) }

func (c *rentalCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	var in tradedesk.RentalInput
	if err := loadScenario(f.Arg(0), &in); err != nil {
		return fail("Error: %v", err)
	}
	a, err := tradedesk.AnalyzeRental(in)
	if err != nil {
		return fail("Error: %v", err)
	}
	return c.out.print(renderer.Rental(a), a)
}
