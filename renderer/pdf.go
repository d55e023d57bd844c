package renderer

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	pageWidth    = 210.0
	marginSide   = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - 2*marginSide
	rowHeight    = 6.0
)

// WritePDF writes the report as an A4 document. Tables too wide for the
// page are split evenly across the content width.
func (r Report) WritePDF(w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginSide, marginTop, marginSide)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(contentWidth, 10, tr(r.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "I", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(contentWidth, 6, "Generated "+time.Now().Format("2 January 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetTextColor(50, 50, 50)
	for _, n := range r.Notes {
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(contentWidth, 5, tr(n), "", "L", false)
		pdf.Ln(2)
	}
	if len(r.Figures) > 0 {
		pdf.SetFillColor(245, 247, 250)
		pdf.SetDrawColor(200, 200, 200)
		for _, f := range r.Figures {
			pdf.SetFont("Arial", "", 10)
			pdf.CellFormat(contentWidth/2, rowHeight+1, tr(f.Label), "1", 0, "L", true, 0, "")
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(contentWidth/2, rowHeight+1, tr(f.Value), "1", 1, "R", true, 0, "")
		}
		pdf.Ln(4)
	}
	for _, t := range r.Tables {
		writeTable(pdf, tr, t)
	}
	return pdf.Output(w)
}

func writeTable(pdf *fpdf.Fpdf, tr func(string) string, t Table) {
	if t.Title != "" {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(0, 51, 102)
		pdf.CellFormat(contentWidth, 8, tr(t.Title), "", 1, "L", false, 0, "")
	}
	if len(t.Header) == 0 {
		return
	}
	width := contentWidth / float64(len(t.Header))
	align := func(i int) string {
		if i < len(t.Numeric) && t.Numeric[i] {
			return "R"
		}
		return "L"
	}
	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(0, 51, 102)
		pdf.SetTextColor(255, 255, 255)
		for i, h := range t.Header {
			pdf.CellFormat(width, rowHeight+1, tr(h), "1", 0, align(i), true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(50, 50, 50)
	}
	header()
	_, pageHeight := pdf.GetPageSize()
	for n, row := range t.Rows {
		if pdf.GetY()+rowHeight > pageHeight-marginBottom {
			pdf.AddPage()
			header()
		}
		fill := n%2 == 1
		pdf.SetFillColor(245, 247, 250)
		for i := range t.Header {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pdf.CellFormat(width, rowHeight, tr(cell), "1", 0, align(i), fill, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}
