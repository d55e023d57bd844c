package cmd

import (
	"flag"

	"github.com/etnz/tradedesk"
	"github.com/etnz/tradedesk/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// fileFlags are the flags whose value is a path.
var fileFlags = map[string]complete.Predictor{
	"config":   predict.Files("*.yaml"),
	"scenario": predict.Files("*.yaml"),
	"pdf":      predict.Files("*.pdf"),
}

// Completion describes the command line for shell completion.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{"help": {}, "flags": {}, "commands": {}},
		Flags: flags(flag.CommandLine),
	}
	for _, cmds := range Groups() {
		for _, c := range cmds {
			root.Sub[c.Name()] = completion(c)
		}
	}
	names, _ := docs.All()
	root.Sub["topic"].Args = predict.Set(append(names, "*"))
	root.Sub["rental"].Args = predict.Files("*.yaml")
	var variables predict.Set
	for _, v := range tradedesk.Variables {
		variables = append(variables, v.ID)
	}
	root.Sub["whatif"].Flags["variable"] = variables

	trade := root.Sub["trade"]
	trade.Sub = map[string]*complete.Command{"help": {}}
	for _, c := range tradeSubcommands() {
		trade.Sub[c.Name()] = completion(c)
	}
	return root
}

func completion(c subcommands.Command) *complete.Command {
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	return &complete.Command{Flags: flags(f)}
}

// flags predicts file names for path flags, nothing for boolean flags and
// lets the user type any other value.
func flags(f *flag.FlagSet) map[string]complete.Predictor {
	out := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) {
		if p, ok := fileFlags[fl.Name]; ok {
			out[fl.Name] = p
			return
		}
		if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			out[fl.Name] = nil
			return
		}
		out[fl.Name] = predict.Set{}
	})
	return out
}
