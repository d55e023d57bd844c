package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/user"
	"time"

	"github.com/etnz/tradedesk"
	"github.com/etnz/tradedesk/date"
	"github.com/etnz/tradedesk/renderer"
	"github.com/etnz/tradedesk/store"
	"github.com/google/subcommands"
)

// defaultUser is the journal owner of CLI commands: the login name.
func defaultUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}

var tradeUser = defaultUser()

// withStore runs fn on the configured store.
func withStore(ctx context.Context, fn func(*store.Store) subcommands.ExitStatus) subcommands.ExitStatus {
	cfg, log, err := loadConfig()
	if err != nil {
		return fail("Error: %v", err)
	}
	defer log.Sync()
	s, err := openStore(ctx, cfg, log)
	if err != nil {
		return fail("Error opening the database: %v", err)
	}
	defer s.Close()
	return fn(s)
}

type tradeCmd struct{}

func (*tradeCmd) Name() string { return "trade" }
func (*tradeCmd) Synopsis() string {
	return "manage the trade journal: add, close, list, stats, delete"
}
func (*tradeCmd) Usage() string {
	return `tradedesk trade [-user <name>] <add|close|list|stats|delete> [flags]

Record trades in the journal database and review their performance.
`
}

func (*tradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&tradeUser, "user", tradeUser, "journal owner")
}

func (*tradeCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	c := subcommands.NewCommander(f, "tradedesk trade")
	c.Register(c.HelpCommand(), "")
	for _, sub := range tradeSubcommands() {
		c.Register(sub, "")
	}
	return c.Execute(ctx, args...)
}

func tradeSubcommands() []subcommands.Command {
	return []subcommands.Command{&tradeAddCmd{}, &tradeCloseCmd{}, &tradeListCmd{}, &tradeStatsCmd{}, &tradeDeleteCmd{}}
}

type tradeAddCmd struct {
	side     string
	quantity float64
	entry    float64
	stop     float64
	fees     float64
	opened   string
	strategy string
	notes    string
}

func (*tradeAddCmd) Name() string     { return "add" }
func (*tradeAddCmd) Synopsis() string { return "record a new open trade" }
func (*tradeAddCmd) Usage() string {
	return "tradedesk trade add -side long -quantity <n> -entry <price> [-stop <price>] <symbol>\n"
}

func (c *tradeAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.side, "side", "long", "long or short")
	f.Float64Var(&c.quantity, "quantity", 0, "number of shares")
	f.Float64Var(&c.entry, "entry", 0, "entry price")
	f.Float64Var(&c.stop, "stop", 0, "stop loss price, 0 for none")
	f.Float64Var(&c.fees, "fees", 0, "total fees")
	f.StringVar(&c.opened, "date", "today", "day the trade was opened")
	f.StringVar(&c.strategy, "strategy", "", "strategy name")
	f.StringVar(&c.notes, "notes", "", "free notes")
}

func (c *tradeAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	side, err := tradedesk.ParseSide(c.side)
	if err != nil {
		return fail("Error: %v", err)
	}
	day, err := date.Parse(c.opened)
	if err != nil {
		return fail("Error: %v", err)
	}
	t := tradedesk.Trade{
		Symbol: f.Arg(0), Side: side,
		Quantity:   tradedesk.Q(c.quantity),
		EntryPrice: tradedesk.USD(c.entry),
		Fees:       tradedesk.USD(c.fees),
		OpenedAt:   day.Time(), Strategy: c.strategy, Notes: c.notes,
	}
	if c.stop > 0 {
		stop := tradedesk.USD(c.stop)
		t.StopLoss = &stop
	}
	return withStore(ctx, func(s *store.Store) subcommands.ExitStatus {
		if err := s.CreateTrade(ctx, tradeUser, &t); err != nil {
			return fail("Error: %v", err)
		}
		fmt.Printf("Recorded trade %s: %s %s %s at %s\n", t.ID, t.Side, t.Quantity, t.Symbol, t.EntryPrice)
		return subcommands.ExitSuccess
	})
}

type tradeCloseCmd struct {
	price  float64
	closed string
}

func (*tradeCloseCmd) Name() string     { return "close" }
func (*tradeCloseCmd) Synopsis() string { return "close an open trade" }
func (*tradeCloseCmd) Usage() string {
	return "tradedesk trade close -price <exit price> [-date today] <trade id>\n"
}

func (c *tradeCloseCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.price, "price", 0, "exit price")
	f.StringVar(&c.closed, "date", "today", "day the trade was closed")
}

func (c *tradeCloseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := date.Parse(c.closed)
	if err != nil {
		return fail("Error: %v", err)
	}
	at := day.Time()
	if day == date.Today() {
		at = time.Now().UTC()
	}
	return withStore(ctx, func(s *store.Store) subcommands.ExitStatus {
		t, err := s.CloseTrade(ctx, tradeUser, f.Arg(0), tradedesk.USD(c.price), at)
		if err != nil {
			return fail("Error: %v", err)
		}
		fmt.Printf("Closed %s %s: P&L %s (%s)\n", t.Symbol, t.ID, t.PnL(), t.ReturnPercent().SignedString())
		return subcommands.ExitSuccess
	})
}

// rangeFlags select trades by the day they were opened.
type rangeFlags struct {
	from, to string
}

func (r *rangeFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.from, "from", "", "first day, e.g. 2025-01-01 or -3m")
	f.StringVar(&r.to, "to", "", "last day")
}

func (r *rangeFlags) filter(trades []tradedesk.Trade) ([]tradedesk.Trade, error) {
	var rg date.Range
	var err error
	if r.from != "" {
		if rg.From, err = date.Parse(r.from); err != nil {
			return nil, err
		}
	}
	if r.to != "" {
		if rg.To, err = date.Parse(r.to); err != nil {
			return nil, err
		}
	}
	if rg == (date.Range{}) {
		return trades, nil
	}
	return tradedesk.TradesIn(trades, rg), nil
}

type tradeListCmd struct {
	rng rangeFlags
	out output
}

func (*tradeListCmd) Name() string     { return "list" }
func (*tradeListCmd) Synopsis() string { return "list the journaled trades" }
func (*tradeListCmd) Usage() string    { return "tradedesk trade list [-from <day>] [-to <day>]\n" }

func (c *tradeListCmd) SetFlags(f *flag.FlagSet) {
	c.rng.SetFlags(f)
	c.out.SetFlags(f, false)
}

func (c *tradeListCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withStore(ctx, func(s *store.Store) subcommands.ExitStatus {
		trades, err := s.Trades(ctx, tradeUser)
		if err == nil {
			trades, err = c.rng.filter(trades)
		}
		if err != nil {
			return fail("Error: %v", err)
		}
		return c.out.print(renderer.Trades(trades), trades)
	})
}

type tradeStatsCmd struct {
	rng rangeFlags
	out output
}

func (*tradeStatsCmd) Name() string     { return "stats" }
func (*tradeStatsCmd) Synopsis() string { return "summarize the performance of the journaled trades" }
func (*tradeStatsCmd) Usage() string    { return "tradedesk trade stats [-from <day>] [-to <day>]\n" }

func (c *tradeStatsCmd) SetFlags(f *flag.FlagSet) {
	c.rng.SetFlags(f)
	c.out.SetFlags(f, false)
}

func (c *tradeStatsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withStore(ctx, func(s *store.Store) subcommands.ExitStatus {
		trades, err := s.Trades(ctx, tradeUser)
		if err == nil {
			trades, err = c.rng.filter(trades)
		}
		if err != nil {
			return fail("Error: %v", err)
		}
		stats := tradedesk.SummarizeTrades(trades)
		return c.out.print(renderer.TradeStats(stats), stats)
	})
}

type tradeDeleteCmd struct{}

func (*tradeDeleteCmd) Name() string             { return "delete" }
func (*tradeDeleteCmd) Synopsis() string         { return "delete a trade" }
func (*tradeDeleteCmd) Usage() string            { return "tradedesk trade delete <trade id>\n" }
func (*tradeDeleteCmd) SetFlags(_ *flag.FlagSet) {}

func (*tradeDeleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return withStore(ctx, func(s *store.Store) subcommands.ExitStatus {
		if err := s.DeleteTrade(ctx, tradeUser, f.Arg(0)); err != nil {
			return fail("Error: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Deleted trade %s\n", f.Arg(0))
		return subcommands.ExitSuccess
	})
}
