package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/etnz/tradedesk"
	"github.com/etnz/tradedesk/renderer"
	"github.com/google/subcommands"
)

// paycheckFlags describe the baseline paycheck. Flags given on the command
// line override the scenario file.
type paycheckFlags struct {
	scenario  string
	gross     float64
	frequency string
	state     string
	local     float64
}

func (p *paycheckFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.scenario, "scenario", "", "YAML `file` with the paycheck (gross_pay, frequency, state, local_rate, deductions)")
	f.Float64Var(&p.gross, "gross", 0, "gross pay of one paycheck")
	f.StringVar(&p.frequency, "frequency", "biweekly", "pay frequency: weekly, biweekly, semimonthly or monthly")
	f.StringVar(&p.state, "state", "", "two letter state code")
	f.Float64Var(&p.local, "local", 0, "local income tax rate in percent")
}

func (p *paycheckFlags) input(f *flag.FlagSet) (tradedesk.PaycheckInput, error) {
	var in tradedesk.PaycheckInput
	if p.scenario != "" {
		if err := loadScenario(p.scenario, &in); err != nil {
			return in, err
		}
	}
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "gross":
			in.GrossPay = tradedesk.USD(p.gross)
		case "frequency":
			in.Frequency = tradedesk.PayFrequency(p.frequency)
		case "state":
			in.State = p.state
		case "local":
			in.LocalRate = tradedesk.Percent(p.local)
		}
	})
	if in.Frequency == "" {
		in.Frequency = tradedesk.PayFrequency(p.frequency)
	}
	freq, err := tradedesk.ParsePayFrequency(string(in.Frequency))
	if err != nil {
		return in, err
	}
	in.Frequency = freq
	in.State = strings.ToUpper(strings.TrimSpace(in.State))
	return in, nil
}

type paycheckCmd struct {
	pay paycheckFlags
	out output
}

func (*paycheckCmd) Name() string     { return "paycheck" }
func (*paycheckCmd) Synopsis() string { return "compute the gross to net breakdown of a paycheck" }
func (*paycheckCmd) Usage() string {
	return `tradedesk paycheck [-scenario file.yaml] [-gross <amount>] [-frequency <f>] [-state <XX>]

Compute federal, state, local and FICA withholding and the net pay of one
paycheck, with its annual equivalent.
`
}

func (c *paycheckCmd) SetFlags(f *flag.FlagSet) {
	c.pay.SetFlags(f)
	c.out.SetFlags(f, false)
}

func (c *paycheckCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in, err := c.pay.input(f)
	if err != nil {
		return fail("Error: %v", err)
	}
	res, err := tradedesk.CalculatePaycheck(in)
	if err != nil {
		return fail("Error: %v", err)
	}
	return c.out.print(renderer.Paycheck(res), res)
}

type whatIfCmd struct {
	pay       paycheckFlags
	out       output
	variable  string
	percent   float64
	baseline  float64
	matchRate float64
	matchUpTo float64
}

func (*whatIfCmd) Name() string     { return "whatif" }
func (*whatIfCmd) Synopsis() string { return "project the net pay impact of a contribution change" }
func (*whatIfCmd) Usage() string {
	return `tradedesk whatif -variable <id> -percent <p> [paycheck flags]

Estimate how contributing p percent of gross pay to a payroll variable
changes the net pay, using the marginal tax rates of the paycheck. With
-baseline, p is the new contribution rate and the change is measured from
the baseline rate.

Run 'tradedesk variables' to list the variables.
`
}

func (c *whatIfCmd) SetFlags(f *flag.FlagSet) {
	c.pay.SetFlags(f)
	c.out.SetFlags(f, false)
	f.StringVar(&c.variable, "variable", "traditional_401k", "contribution to adjust")
	f.Float64Var(&c.percent, "percent", 0, "contribution change, in percent of gross pay")
	f.Float64Var(&c.baseline, "baseline", 0, "current contribution rate in percent, makes -percent the target rate")
	f.Float64Var(&c.matchRate, "match-rate", 0, "employer match rate in percent, 0 for no match")
	f.Float64Var(&c.matchUpTo, "match-up-to", 0, "employer matches contributions up to this percent of pay")
}

type whatIfResult struct {
	Paycheck tradedesk.PaycheckResult `json:"paycheck"`
	WhatIf   tradedesk.WhatIf         `json:"whatif"`
}

func (c *whatIfCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in, err := c.pay.input(f)
	if err != nil {
		return fail("Error: %v", err)
	}
	v, err := tradedesk.LookupVariable(c.variable)
	if err != nil {
		return fail("Error: %v", err)
	}
	res, err := tradedesk.CalculatePaycheck(in)
	if err != nil {
		return fail("Error: %v", err)
	}
	match := tradedesk.EmployerMatch{
		Enabled:     c.matchRate > 0,
		Rate:        tradedesk.Percent(c.matchRate),
		UpToPercent: tradedesk.Percent(c.matchUpTo),
	}
	withBaseline := false
	f.Visit(func(fl *flag.Flag) { withBaseline = withBaseline || fl.Name == "baseline" })

	var w tradedesk.WhatIf
	if withBaseline {
		w, err = tradedesk.ProjectContribution(res, in.GrossPay, in.Frequency, v, match, c.baseline, c.percent)
	} else {
		w, err = tradedesk.ProjectWhatIf(res, in.GrossPay, in.Frequency, c.percent, v, match)
	}
	if err != nil {
		return fail("Error: %v", err)
	}
	return c.out.print(renderer.WhatIf(res, w), whatIfResult{Paycheck: res, WhatIf: w})
}

type variablesCmd struct{}

func (*variablesCmd) Name() string             { return "variables" }
func (*variablesCmd) Synopsis() string         { return "list the contributions whatif can adjust" }
func (*variablesCmd) Usage() string            { return "tradedesk variables\n" }
func (*variablesCmd) SetFlags(_ *flag.FlagSet) {}

func (*variablesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTAX\tMAX %\tMATCH")
	for _, v := range tradedesk.Variables {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%t\n", v.ID, v.Name, v.Category, v.MaxPercent, v.HasEmployerMatch)
	}
	if err := w.Flush(); err != nil {
		return fail("Error: %v", err)
	}
	return subcommands.ExitSuccess
}
