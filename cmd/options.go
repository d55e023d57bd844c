package cmd

import (
	"context"
	"flag"

	"github.com/etnz/tradedesk"
	"github.com/etnz/tradedesk/renderer"
	"github.com/google/subcommands"
)

type coveredCallCmd struct {
	in  tradedesk.CoveredCall
	out output
}

func (*coveredCallCmd) Name() string     { return "covered-call" }
func (*coveredCallCmd) Synopsis() string { return "analyze the income of a covered call" }
func (*coveredCallCmd) Usage() string {
	return `tradedesk covered-call -price <p> -strike <k> -premium <amount> -days <n> [-contracts 1]
`
}

func (c *coveredCallCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.in.StockPrice, "price", 0, "current stock price")
	f.Float64Var(&c.in.CostBasis, "cost", 0, "cost basis per share, the current price when 0")
	f.Float64Var(&c.in.StrikePrice, "strike", 0, "call strike")
	f.Float64Var(&c.in.Premium, "premium", 0, "premium per share")
	f.IntVar(&c.in.DaysToExpiry, "days", 30, "days to expiry")
	f.IntVar(&c.in.Contracts, "contracts", 1, "number of contracts")
	f.IntVar(&c.in.SharesPerLot, "lot", 100, "shares per contract")
	c.out.SetFlags(f, false)
}

func (c *coveredCallCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := tradedesk.AnalyzeCoveredCall(c.in)
	if err != nil {
		return fail("Error: %v", err)
	}
	return c.out.print(renderer.CoveredCall(a), a)
}

type optionCmd struct {
	in   tradedesk.OptionSpec
	kind string
	out  output
}

func (*optionCmd) Name() string     { return "option" }
func (*optionCmd) Synopsis() string { return "price a European option with Black-Scholes" }
func (*optionCmd) Usage() string {
	return `tradedesk option -type call|put -spot <s> -strike <k> -days <n> -vol <sigma>
`
}

func (c *optionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "type", "call", "call or put")
	f.Float64Var(&c.in.Spot, "spot", 0, "price of the underlying")
	f.Float64Var(&c.in.Strike, "strike", 0, "strike price")
	f.IntVar(&c.in.DaysToExpiry, "days", 30, "calendar days to expiry")
	f.Float64Var(&c.in.Volatility, "vol", 0.25, "annual volatility, as a fraction")
	f.Float64Var(&c.in.RiskFreeRate, "rate", 0.04, "risk free rate, as a fraction")
	f.Float64Var(&c.in.DividendYield, "dividend", 0, "continuous dividend yield, as a fraction")
	c.out.SetFlags(f, false)
}

func (c *optionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.in.Type = tradedesk.OptionType(c.kind)
	p, err := tradedesk.PriceOption(c.in)
	if err != nil {
		return fail("Error: %v", err)
	}
	return c.out.print(renderer.Option(c.in, p), p)
}
