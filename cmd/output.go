package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/tradedesk/renderer"
	"github.com/google/subcommands"
	"gopkg.in/yaml.v3"
)

// printMarkdown renders markdown for the terminal, or prints it raw when it
// cannot be rendered.
func printMarkdown(md string) {
	fmt.Print(renderMarkdown(md))
}

func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// output holds the flags selecting how a command prints its result.
type output struct {
	json bool
	raw  bool
	pdf  string
}

func (o *output) SetFlags(f *flag.FlagSet, pdf bool) {
	f.BoolVar(&o.json, "json", false, "print the result as JSON")
	f.BoolVar(&o.raw, "raw", false, "print the markdown without terminal styling")
	if pdf {
		f.StringVar(&o.pdf, "pdf", "", "also write the report to this PDF `file`")
	}
}

// print writes v as JSON or its report as markdown, and the PDF if asked.
func (o *output) print(report renderer.Report, v any) subcommands.ExitStatus {
	if o.pdf != "" {
		f, err := os.Create(o.pdf)
		if err != nil {
			return fail("Error creating %q: %v", o.pdf, err)
		}
		err = report.WritePDF(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fail("Error writing %q: %v", o.pdf, err)
		}
	}
	switch {
	case o.json:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fail("Error encoding result: %v", err)
		}
	case o.raw:
		fmt.Print(report.Markdown())
	default:
		printMarkdown(report.Markdown())
	}
	return subcommands.ExitSuccess
}

// loadScenario decodes a YAML scenario file into v. Unknown keys are
// errors, they usually are typos.
func loadScenario(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("scenario %q: %w", path, err)
	}
	return nil
}
