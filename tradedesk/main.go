// Command tradedesk is the personal finance and trading desk.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/tradedesk/cmd"
	"github.com/google/subcommands"
)

func main() {
	// answers the shell when it asks for completions, run
	// COMP_INSTALL=1 tradedesk to install them.
	cmd.Completion().Complete("tradedesk")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)
	commander.ImportantFlag("config")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
