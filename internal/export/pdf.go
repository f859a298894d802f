package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"audit-backend/internal/report"
	"audit-backend/internal/shared/telemetry"
)

const (
	contentTypePDF = "application/pdf"

	pageWidth   = 210.0
	marginLeft  = 15.0
	marginTop   = 15.0
	marginBot   = 15.0
	contentW    = pageWidth - 2*marginLeft
	headerH     = 45.0
	rowLineH    = 6.0
	headRowH    = 8.0
	metricCellW = contentW / 4
)

// Artifact is a rendered export ready for download or storage.
type Artifact struct {
	FileName    string
	ContentType string
	Body        []byte
}

// ExportError reports a rendering failure. The report itself is unaffected.
type ExportError struct {
	Format string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// PDF renders the report as an A4 document.
func PDF(r report.Result, now time.Time) (art Artifact, err error) {
	plan := Layout(r, now)
	defer func() {
		if rec := recover(); rec != nil {
			art = Artifact{}
			err = &ExportError{Format: "pdf", Err: fmt.Errorf("panic: %v", rec)}
		}
		if err != nil {
			telemetry.Error("export.pdf.failed", map[string]any{"file": plan.FileName, "error": err})
		}
	}()

	body, renderErr := renderPDF(plan, now)
	if renderErr != nil {
		return Artifact{}, &ExportError{Format: "pdf", Err: renderErr}
	}
	telemetry.Info("export.pdf.ok", map[string]any{"file": plan.FileName, "bytes": len(body), "tables": len(plan.Tables)})
	return Artifact{FileName: plan.FileName, ContentType: contentTypePDF, Body: body}, nil
}

func renderPDF(plan Plan, now time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginLeft)
	pdf.SetAutoPageBreak(true, marginBot)
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(plan.Title, false)
	pdf.SetCreator("audit-backend", false)

	regular, bold := currentFonts()
	pdf.AddUTF8FontFromBytes(fontFamily, "", regular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", bold)
	tr := bmpText
	pdf.AddPage()

	drawHeader(pdf, tr, plan)
	drawVerdict(pdf, tr, plan.Verdict)

	pdf.SetXY(marginLeft, 92)
	for _, t := range plan.Tables {
		drawTable(pdf, tr, t)
		pdf.Ln(6)
	}
	drawConclusion(pdf, tr, plan.Conclusion)
	drawMetrics(pdf, tr, plan.Metrics)

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawHeader(pdf *fpdf.Fpdf, tr func(string) string, plan Plan) {
	pdf.SetFillColor(colorHeader.R, colorHeader.G, colorHeader.B)
	pdf.Rect(0, 0, pageWidth, headerH, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont(fontFamily, "B", 22)
	pdf.Text(marginLeft, 20, tr(plan.Title))
	pdf.SetFont(fontFamily, "", 9)
	pdf.Text(marginLeft, 30, tr(plan.Reference))
	pdf.Text(marginLeft, 35, tr(plan.UnderwriterID))
}

func drawVerdict(pdf *fpdf.Fpdf, tr func(string) string, v Verdict) {
	pdf.SetFillColor(v.Color.R, v.Color.G, v.Color.B)
	pdf.RoundedRect(marginLeft, 55, contentW, 25, 3, "1234", "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont(fontFamily, "B", 10)
	pdf.Text(25, 64, "AUDIT VERDICT")
	pdf.Text(120, 64, "MONTHLY REPAYMENT")
	pdf.SetFont(fontFamily, "B", 18)
	pdf.Text(25, 74, tr(v.Label))
	pdf.Text(120, 74, tr(v.Repayment))
}

func drawTable(pdf *fpdf.Fpdf, tr func(string) string, t Table) {
	pdf.SetTextColor(colorHeader.R, colorHeader.G, colorHeader.B)
	pdf.SetFont(fontFamily, "B", 12)
	pdf.SetX(marginLeft)
	pdf.CellFormat(contentW, 8, tr(t.Title), "", 1, "L", false, 0, "")

	drawHeadRow(pdf, tr, t)
	pdf.SetFont(fontFamily, "", 9)
	for _, row := range t.Rows {
		lines := rowLines(pdf, tr, t.Widths, row)
		if !fits(pdf, linesHeight(lines)) {
			pdf.AddPage()
			drawHeadRow(pdf, tr, t)
			pdf.SetFont(fontFamily, "", 9)
		}
		drawRow(pdf, t.Widths, lines)
	}
}

func drawHeadRow(pdf *fpdf.Fpdf, tr func(string) string, t Table) {
	pdf.SetFont(fontFamily, "B", 9)
	pdf.SetFillColor(t.HeadColor.R, t.HeadColor.G, t.HeadColor.B)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetDrawColor(203, 213, 225)
	pdf.SetX(marginLeft)
	for i, h := range t.Head {
		pdf.CellFormat(t.Widths[i], headRowH, tr(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(15, 23, 42)
}

// rowLines splits every cell into printable lines. A cell taller than one page is
// cut off with an ellipsis so a row never straddles a page break.
func rowLines(pdf *fpdf.Fpdf, tr func(string) string, widths []float64, cells []string) [][]string {
	limit := maxRowLines(pdf)
	out := make([][]string, len(cells))
	for i, c := range cells {
		w := widths[i] - 2
		lines := pdf.SplitText(tr(c), w)
		if len(lines) > limit {
			lines = lines[:limit]
			lines[limit-1] = ellipsize(pdf, lines[limit-1], w)
		}
		out[i] = lines
	}
	return out
}

func maxRowLines(pdf *fpdf.Fpdf) int {
	_, pageH := pdf.GetPageSize()
	return int((pageH - marginTop - marginBot - headRowH) / rowLineH)
}

func ellipsize(pdf *fpdf.Fpdf, line string, w float64) string {
	const more = "..."
	runes := []rune(strings.TrimRight(line, " "))
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+more) > w {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + more
}

func linesHeight(lines [][]string) float64 {
	n := 1
	for _, l := range lines {
		if len(l) > n {
			n = len(l)
		}
	}
	return float64(n) * rowLineH
}

func fits(pdf *fpdf.Fpdf, h float64) bool {
	_, pageH := pdf.GetPageSize()
	return pdf.GetY()+h <= pageH-marginBot
}

func drawRow(pdf *fpdf.Fpdf, widths []float64, lines [][]string) {
	h := linesHeight(lines)
	x, y := marginLeft, pdf.GetY()
	for i, cell := range lines {
		pdf.Rect(x, y, widths[i], h, "D")
		for k, line := range cell {
			pdf.SetXY(x+1, y+float64(k)*rowLineH)
			pdf.CellFormat(widths[i]-2, rowLineH, line, "", 0, "L", false, 0, "")
		}
		x += widths[i]
	}
	pdf.SetXY(marginLeft, y+h)
}

func drawConclusion(pdf *fpdf.Fpdf, tr func(string) string, n Narrative) {
	if !fits(pdf, 30) {
		pdf.AddPage()
	}
	pdf.SetTextColor(colorHeader.R, colorHeader.G, colorHeader.B)
	pdf.SetFont(fontFamily, "B", 12)
	pdf.SetX(marginLeft)
	pdf.CellFormat(contentW, 8, tr(n.Title), "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	pdf.SetTextColor(51, 65, 85)
	pdf.SetX(marginLeft)
	pdf.MultiCell(contentW, 5, tr(n.Text), "", "L", false)
	pdf.Ln(4)
}

func drawMetrics(pdf *fpdf.Fpdf, tr func(string) string, metrics []Metric) {
	const h = 16.0
	if !fits(pdf, h) {
		pdf.AddPage()
	}
	x, y := marginLeft, pdf.GetY()
	pdf.SetFillColor(241, 245, 249)
	pdf.SetDrawColor(203, 213, 225)
	for _, m := range metrics {
		pdf.Rect(x, y, metricCellW, h, "FD")
		pdf.SetTextColor(100, 116, 139)
		pdf.SetFont(fontFamily, "", 8)
		pdf.Text(x+3, y+6, tr(m.Label))
		pdf.SetTextColor(15, 23, 42)
		pdf.SetFont(fontFamily, "B", 10)
		pdf.Text(x+3, y+12, tr(m.Value))
		x += metricCellW
	}
	pdf.SetXY(marginLeft, y+h)
}
