package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/etnz/tradedesk"
	"github.com/etnz/tradedesk/agent"
	"github.com/etnz/tradedesk/date"
	"github.com/etnz/tradedesk/market"
	"github.com/etnz/tradedesk/renderer"
	"github.com/etnz/tradedesk/store"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type quoteCmd struct {
	profile bool
	out     output
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "print live quotes" }
func (*quoteCmd) Usage() string {
	return `tradedesk quote [-profile] <symbol>...

Print the latest quote of each symbol. -profile adds the company name, it
needs a Finnhub key.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.profile, "profile", false, "add the company profile")
	c.out.SetFlags(f, false)
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	cfg, log, err := loadConfig()
	if err != nil {
		return fail("Error: %v", err)
	}
	defer log.Sync()
	quotes, finnhub := marketData(ctx, cfg, log)
	if quotes == nil {
		return fail("Error: %v", errNoQuotes)
	}
	status := subcommands.ExitSuccess
	for _, arg := range f.Args() {
		symbol, err := tradedesk.NormalizeTicker(arg)
		if err != nil {
			status = fail("Error: %v", err)
			continue
		}
		var quote market.Quote
		if c.profile && finnhub != nil {
			quote, err = finnhub.QuoteWithProfile(ctx, symbol)
		} else {
			quote, err = quotes.Quote(ctx, symbol)
		}
		if err != nil {
			status = fail("Error: %s: %v", symbol, err)
			continue
		}
		if s := c.out.print(renderer.Quote(quote), quote); s != subcommands.ExitSuccess {
			status = s
		}
	}
	return status
}

type planCmd struct {
	req agent.TradePlanRequest
	out output
}

func (*planCmd) Name() string     { return "plan" }
func (*planCmd) Synopsis() string { return "generate an AI trade plan for a ticker" }
func (*planCmd) Usage() string {
	return `tradedesk plan [-portfolio 10000] [-risk 1] [-strategy swing] [-timeframe 1D] <ticker>

Ask the configured LLM for a trade plan grounded on the live quote, then
size the position from the portfolio size and the risk percent.
`
}

func (c *planCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.req.PortfolioSize, "portfolio", 10000, "portfolio size in dollars")
	f.Float64Var(&c.req.RiskPercent, "risk", 1, "percent of the portfolio risked on the trade")
	f.StringVar(&c.req.Strategy, "strategy", "swing", "trading strategy, e.g. swing, day, position")
	f.StringVar(&c.req.Timeframe, "timeframe", "1D", "chart timeframe")
	c.out.SetFlags(f, false)
}

func (c *planCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	c.req.Ticker = f.Arg(0)
	cfg, log, err := loadConfig()
	if err != nil {
		return fail("Error: %v", err)
	}
	defer log.Sync()
	quotes, _ := marketData(ctx, cfg, log)
	p, err := planner(ctx, cfg, quotes, log)
	if err != nil {
		return fail("Error: %v", err)
	}
	plan, err := p.Plan(ctx, c.req)
	if err != nil {
		return fail("Error: %v", err)
	}
	return c.out.print(renderer.TradePlan(plan), plan)
}

type backtestCmd struct {
	in          tradedesk.BacktestInput
	symbol      string
	from, to    string
	scenario    string
	walkForward bool
	inSample    int
	outOfSample int
	fastValues  string
	slowValues  string
	save        bool
	user        string
	out         output
}

func (*backtestCmd) Name() string     { return "backtest" }
func (*backtestCmd) Synopsis() string { return "backtest a moving average crossover" }
func (*backtestCmd) Usage() string {
	return `tradedesk backtest -symbol <ticker> [-from -1y] [-to today] [-fast 10 -slow 50]
tradedesk backtest -scenario closes.yaml [-walk-forward -fast-values 5,10 -slow-values 20,50]

Run a long only SMA crossover on daily closes, fetched from Finnhub or read
from the closes of a scenario file. -walk-forward optimises the windows on
rolling in-sample periods and scores them out of sample.
`
}

func (c *backtestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "ticker whose daily closes are fetched")
	f.StringVar(&c.from, "from", "-1y", "first day of the closes")
	f.StringVar(&c.to, "to", "today", "last day of the closes")
	f.StringVar(&c.scenario, "scenario", "", "YAML `file` with a backtest input, closes included")
	f.IntVar(&c.in.Fast, "fast", 10, "fast moving average window")
	f.IntVar(&c.in.Slow, "slow", 50, "slow moving average window")
	f.Float64Var(&c.in.Fee, "fee", 0.001, "fee charged on each position change, as a fraction")
	f.Float64Var(&c.in.InitialCapital, "capital", 10000, "initial capital")
	f.IntVar(&c.in.PeriodsPerYear, "periods", 252, "periods per year, to annualize")
	f.BoolVar(&c.walkForward, "walk-forward", false, "run a walk-forward analysis")
	f.IntVar(&c.inSample, "in-sample", 120, "walk-forward in-sample length")
	f.IntVar(&c.outOfSample, "out-of-sample", 30, "walk-forward out-of-sample length")
	f.StringVar(&c.fastValues, "fast-values", "5,10,20", "walk-forward fast windows")
	f.StringVar(&c.slowValues, "slow-values", "30,50,100", "walk-forward slow windows")
	f.BoolVar(&c.save, "save", false, "save the result in the journal database")
	f.StringVar(&c.user, "user", defaultUser(), "user owning the saved result")
	c.out.SetFlags(f, false)
}

func ints(s string) ([]int, error) {
	var out []int
	for _, p := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid window %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func (c *backtestCmd) closes(ctx context.Context) ([]float64, error) {
	if c.scenario != "" {
		in := c.in
		if err := loadScenario(c.scenario, &in); err != nil {
			return nil, err
		}
		return in.Closes, nil
	}
	if c.symbol == "" {
		return nil, fmt.Errorf("-symbol or -scenario is required")
	}
	from, err := date.Parse(c.from)
	if err != nil {
		return nil, err
	}
	to, err := date.Parse(c.to)
	if err != nil {
		return nil, err
	}
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	_, finnhub := marketData(ctx, cfg, log)
	if finnhub == nil {
		return nil, fmt.Errorf("daily closes need market.finnhub_key")
	}
	r := date.NewRange(from, to)
	h, err := finnhub.Closes(ctx, c.symbol, r)
	if err != nil {
		return nil, err
	}
	return h.Values(r), nil
}

func (c *backtestCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	closes, err := c.closes(ctx)
	if err != nil {
		return fail("Error: %v", err)
	}
	c.in.Closes = closes

	if c.walkForward {
		in := tradedesk.WalkForwardInput{
			Closes: closes, InSample: c.inSample, OutOfSample: c.outOfSample,
			Fee: c.in.Fee, PeriodsPerYear: c.in.PeriodsPerYear,
		}
		if in.FastValues, err = ints(c.fastValues); err != nil {
			return fail("Error: %v", err)
		}
		if in.SlowValues, err = ints(c.slowValues); err != nil {
			return fail("Error: %v", err)
		}
		res, err := tradedesk.WalkForward(in)
		if err != nil {
			return fail("Error: %v", err)
		}
		return c.out.print(renderer.WalkForward(res), res)
	}

	res, err := tradedesk.Backtest(c.in)
	if err != nil {
		return fail("Error: %v", err)
	}
	if c.save {
		if err := c.record(ctx, res); err != nil {
			return fail("Error saving the backtest: %v", err)
		}
	}
	return c.out.print(renderer.Backtest(res), res)
}

func (c *backtestCmd) record(ctx context.Context, res tradedesk.BacktestResult) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer s.Close()
	symbol := c.symbol
	if symbol == "" {
		symbol = "CUSTOM"
	}
	total, trades := res.TotalReturn, res.Trades
	return s.SaveBacktest(ctx, &store.BacktestRecord{
		UserID:      c.user,
		Strategy:    fmt.Sprintf("sma-cross %d/%d", res.Fast, res.Slow),
		Symbol:      strings.ToUpper(symbol),
		Timeframe:   "1D",
		TotalReturn: &total,
		Trades:      &trades,
		Source:      "backtest",
	})
}

type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "start an interactive session with the AI assistant" }
func (*assistCmd) Usage() string {
	return `tradedesk assist [question]

Start an interactive session with the assistant. It answers with the help of
a Trader grounded on Google Search and an Analyst running the tradedesk
calculators. Type 'bye' to exit.
`
}

func (*assistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, log, err := loadConfig()
	if err != nil {
		return fail("Error: %v", err)
	}
	defer log.Sync()

	llm := cfg.LLM
	if llm.Provider != "gemini" {
		// the gateway endpoint does not speak the Gemini API
		llm.BaseURL = ""
	}
	client, err := agent.NewGeminiClient(ctx, llm)
	if err != nil {
		return fail("Error initializing Gemini's client: %v", err)
	}
	experts := []*agent.Expert{agent.NewTrader()}
	if quotes, _ := marketData(ctx, cfg, log); quotes != nil {
		experts = append(experts, agent.NewAnalyst(quotes))
	} else {
		log.Warn("no quote provider configured, the assistant runs without the Analyst")
	}
	for _, e := range experts {
		e.Log = log
		if llm.Model != "" && llm.Provider == "gemini" {
			e.ModelName = llm.Model
		}
	}
	a := agent.New(os.Stdout, os.Stdin, experts...)
	a.Render = renderMarkdown

	var prompts []string
	if f.NArg() > 0 {
		prompts = append(prompts, strings.Join(f.Args(), " "))
	}
	if err := a.Run(ctx, client, prompts...); err != nil {
		log.Error("assistant failed", zap.Error(err))
		return fail("Agent failed: %v", err)
	}
	return subcommands.ExitSuccess
}
