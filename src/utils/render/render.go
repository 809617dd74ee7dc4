package render

import (
	"fmt"
	"io"
	"sort"

	"papertrading/src/utils"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/jung-kurt/gofpdf"
)

// Slice is one labelled value of a pie chart.
type Slice struct {
	Name  string
	Value float64
}

// RenderPieGraph writes a standalone HTML page with a pie chart of slices, largest
// first. Non-positive slices are left out.
func RenderPieGraph(w io.Writer, title, subtitle string, slices []Slice) error {
	sorted := make([]Slice, 0, len(slices))
	for _, s := range slices {
		if s.Value > 0 {
			sorted = append(sorted, s)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title}),
	)

	items := make([]opts.PieData, 0, len(sorted))
	for i, s := range sorted {
		items = append(items, opts.PieData{
			Name:      s.Name,
			Value:     s.Value,
			ItemStyle: &opts.ItemStyle{Color: utils.GetChartColor(i)},
		})
	}
	pie.AddSeries("Allocation", items)
	return pie.Render(w)
}

// Table is a titled grid of cells for a PDF document.
type Table struct {
	Title   string
	Headers []string
	Widths  []float64
	Rows    [][]string
}

// Document is a simple portrait A4 report: a heading, key/value summary lines and
// any number of tables.
type Document struct {
	Title   string
	Summary [][2]string
	Tables  []Table
}

// GeneratePDF writes doc as a PDF to w.
func GeneratePDF(w io.Writer, doc Document) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, doc.Title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range doc.Summary {
		pdf.CellFormat(60, 6, line[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, line[1], "", 1, "L", false, 0, "")
	}

	for _, table := range doc.Tables {
		if len(table.Widths) != len(table.Headers) {
			return fmt.Errorf("table %q: %d widths for %d headers", table.Title, len(table.Widths), len(table.Headers))
		}
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, table.Title, "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		for i, header := range table.Headers {
			pdf.CellFormat(table.Widths[i], 6, header, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 8)
		for _, row := range table.Rows {
			for i := range table.Headers {
				var cell string
				if i < len(row) {
					cell = row[i]
				}
				pdf.CellFormat(table.Widths[i], 5, cell, "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
