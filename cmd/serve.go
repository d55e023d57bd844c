package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/tradedesk/auth"
	"github.com/etnz/tradedesk/server"
	"github.com/gin-gonic/gin"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the HTTP API" }
func (*serveCmd) Usage() string {
	return `tradedesk serve [-addr :8080]

Serve the edge functions (TradingView webhook, trade plan, quote), the
calculators and the per user journal over HTTP until interrupted.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "listen address, app.addr of the configuration by default")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, log, err := loadConfig()
	if err != nil {
		return fail("Error: %v", err)
	}
	defer log.Sync()
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("could not open the database", zap.Error(err))
		return fail("Error opening the database: %v", err)
	}
	defer st.Close()

	d := server.Deps{
		Auth:                  auth.New(cfg.Auth),
		Store:                 st,
		WebhookPassphraseHash: cfg.Auth.WebhookPassphraseHash,
		Log:                   log,
	}
	quotes, finnhub := marketData(ctx, cfg, log)
	if quotes != nil {
		d.Quotes = quotes
	} else {
		log.Warn("no quote provider configured, quote endpoints answer 503")
	}
	if finnhub != nil {
		d.History = finnhub
	}
	if p, err := planner(ctx, cfg, quotes, log); err == nil {
		d.Planner = p
	} else {
		log.Warn("trade plans disabled", zap.Error(err))
	}

	addr := c.addr
	if addr == "" {
		addr = cfg.App.Addr
	}
	if err := server.New(d).Run(ctx, addr); err != nil {
		log.Error("server failed", zap.Error(err))
		return fail("Error: %v", err)
	}
	return subcommands.ExitSuccess
}

type tokenCmd struct {
	hash bool
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "issue an API token, or hash a webhook passphrase" }
func (*tokenCmd) Usage() string {
	return `tradedesk token <user id>
tradedesk token -hash <passphrase>

Print a bearer token for the user, signed with auth.jwt_secret. With -hash,
print the bcrypt hash to configure as auth.webhook_passphrase_hash.
`
}

func (c *tokenCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.hash, "hash", false, "hash the argument as a webhook passphrase")
}

func (c *tokenCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if c.hash {
		h, err := auth.HashPassphrase(f.Arg(0))
		if err != nil {
			return fail("Error: %v", err)
		}
		fmt.Println(h)
		return subcommands.ExitSuccess
	}
	cfg, _, err := loadConfig()
	if err != nil {
		return fail("Error: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return fail("Error: auth.jwt_secret is not configured")
	}
	tok, err := auth.New(cfg.Auth).Issue(f.Arg(0))
	if err != nil {
		return fail("Error: %v", err)
	}
	fmt.Println(tok)
	return subcommands.ExitSuccess
}
