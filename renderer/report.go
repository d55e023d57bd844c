// Package renderer turns calculator results into markdown reports, and into
// PDF for the ones worth printing.
package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/tradedesk"
	md "github.com/nao1215/markdown"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Report is a titled document made of a few key figures and tables.
type Report struct {
	Title   string
	Notes   []string
	Figures []Figure
	Tables  []Table
}

// Figure is a labelled headline value.
type Figure struct {
	Label string
	Value string
}

// Table is a titled grid. Numeric columns are right aligned.
type Table struct {
	Title   string
	Header  []string
	Rows    [][]string
	Numeric []bool
}

func (t Table) alignment() []md.TableAlignment {
	a := make([]md.TableAlignment, len(t.Header))
	for i := range a {
		a[i] = md.AlignLeft
		if i < len(t.Numeric) && t.Numeric[i] {
			a[i] = md.AlignRight
		}
	}
	return a
}

// Markdown renders the report.
func (r Report) Markdown() string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(r.Title)
	for _, n := range r.Notes {
		doc.PlainText(n)
	}
	if len(r.Figures) > 0 {
		rows := make([][]string, len(r.Figures))
		for i, f := range r.Figures {
			rows[i] = []string{f.Label, md.Bold(f.Value)}
		}
		doc.Table(md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{"", "Value"},
			Rows:      rows,
		})
	}
	for _, t := range r.Tables {
		if t.Title != "" {
			doc.H2(t.Title)
		}
		doc.Table(md.TableSet{Alignment: t.alignment(), Header: t.Header, Rows: t.Rows})
	}
	return doc.String()
}

var printer = message.NewPrinter(language.AmericanEnglish)

// amount formats a plain amount with thousands separators and two decimals.
func amount(f float64) string { return printer.Sprintf("%.2f", f) }

// money formats an amount in dollars.
func money(m tradedesk.Money) string { return m.String() }

// usd formats a float amount in dollars.
func usd(f float64) string {
	if f < 0 {
		return "-$" + amount(-f)
	}
	return "$" + amount(f)
}

// fraction formats a 0.05 style fraction as a percentage.
func fraction(f float64) string { return printer.Sprintf("%.2f%%", f*100) }

func integer(n int) string { return printer.Sprintf("%d", n) }

func ratio(f float64) string { return fmt.Sprintf("%.2f", f) }
