package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/tradedesk/docs"
	"github.com/google/subcommands"
)

type topicCmd struct {
	list bool
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation" }
func (*topicCmd) Usage() string {
	return `tradedesk topic [-list] [<topic>...]

Show documentation for the given topics, the index when none is given and
every topic for '*'.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "list the topic names")
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.list {
		names, err := docs.All()
		if err != nil {
			return fail("Error reading doc: %v", err)
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return subcommands.ExitSuccess
	}
	var doc string
	var err error
	if f.NArg() == 0 {
		doc, err = docs.Index()
	} else {
		doc, err = docs.Topics(f.Args()...)
	}
	if err != nil {
		return fail("Error reading doc: %v", err)
	}
	printMarkdown(doc)
	return subcommands.ExitSuccess
}
