package printing

import (
	"io"
	"strings"
	"time"

	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
)

// StatementConfig configures the distribution statement layout
type StatementConfig struct {
	// Title printed in the header and the PDF metadata
	Title     string
	PaperSize PaperSize
	Margins   Margins
	// Currency is printed next to the period, e.g. "USD"
	Currency string
}

// StatementRenderer draws distribution statements
type StatementRenderer struct {
	config StatementConfig
}

// NewStatementRenderer creates a StatementRenderer. Zero fields fall back to
// A4 with DefaultMargins.
func NewStatementRenderer(config StatementConfig) *StatementRenderer {
	if config.Title == "" {
		config.Title = "Distribution Statement"
	}
	if config.PaperSize == "" {
		config.PaperSize = PaperSizeA4
	}
	if config.Margins == (Margins{}) {
		config.Margins = DefaultMargins()
	}
	return &StatementRenderer{config: config}
}

var shareColumns = []struct {
	title string
	width float64
	align string
}{
	{"OWNER", 40, "L"},
	{"SHARE %", 22, "R"},
	{"GROSS", 32, "R"},
	{"PENDING", 30, "R"},
	{"NET", 32, "R"},
	{"CLAIMED", 26, "C"},
}

// Render writes the statement of d to w
func (r *StatementRenderer) Render(w io.Writer, d ledger.Distribution, generatedAt time.Time) error {
	if !r.config.PaperSize.IsValid() {
		return NewRenderError(ErrCodeInvalidPaperSize, "unsupported paper size "+string(r.config.PaperSize), nil)
	}

	pdf := gofpdf.New("P", "mm", string(r.config.PaperSize), "")
	pdf.SetTitle(r.config.Title, false)
	pdf.SetCreator("ops-console", false)
	pdf.SetMargins(r.config.Margins.Left, r.config.Margins.Top, r.config.Margins.Right)
	pdf.AddPage()

	period := d.Summary.Period
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, r.config.Title)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Period: "+period.Start.Format(ledger.DateLayout)+" to "+period.End.Format(ledger.DateLayout)+
		" ("+string(period.Granularity)+")")
	pdf.Ln(5)
	if r.config.Currency != "" {
		pdf.Cell(0, 6, "Amounts in "+r.config.Currency)
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, "Selected owners: "+strings.Join(d.Selected, ", "))
	pdf.Ln(10)

	r.summaryTable(pdf, d)
	pdf.Ln(6)
	r.sharesTable(pdf, d)

	pdf.SetY(-18)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 10, "Generated "+generatedAt.UTC().Format(time.RFC3339), "", 0, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return NewRenderError(ErrCodeRenderFailed, "pdf build failed", err)
	}
	return nil
}

func (r *StatementRenderer) summaryTable(pdf *gofpdf.Fpdf, d ledger.Distribution) {
	rows := []struct {
		label string
		value decimal.Decimal
	}{
		{"Revenue", d.Summary.TotalRevenue},
		{"Business expense", d.Summary.BusinessExpense},
		{"Payroll", d.Summary.PayrollExpense},
		{"Net income", d.Summary.NetIncome},
		{"Bank savings", d.BankBalance},
		{"Available", d.Available},
	}

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 8, row.label, "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(50, 8, formatMoney(row.value), "1", 1, "R", false, 0, "")
	}
}

func (r *StatementRenderer) sharesHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(245, 245, 245)
	for i, col := range shareColumns {
		ln := 0
		if i == len(shareColumns)-1 {
			ln = 1
		}
		pdf.CellFormat(col.width, 8, col.title, "1", ln, "C", true, 0, "")
	}
	pdf.SetFont("Helvetica", "", 9)
}

func (r *StatementRenderer) sharesTable(pdf *gofpdf.Fpdf, d ledger.Distribution) {
	r.sharesHeader(pdf)
	for _, s := range d.Shares {
		if pdf.GetY() > 270 {
			pdf.AddPage()
			r.sharesHeader(pdf)
		}
		claimed := "-"
		if s.Claimed && s.ClaimedAt != nil {
			claimed = s.ClaimedAt.UTC().Format(ledger.DateLayout)
		} else if !s.Eligible {
			claimed = "ineligible"
		}
		cells := []string{
			trimTo(s.Owner, 24),
			s.Percentage.StringFixed(2),
			formatMoney(s.GrossShare),
			formatMoney(s.PersonalPending),
			formatMoney(s.NetShare),
			claimed,
		}
		for i, col := range shareColumns {
			ln := 0
			if i == len(shareColumns)-1 {
				ln = 1
			}
			pdf.CellFormat(col.width, 8, cells[i], "1", ln, col.align, false, 0, "")
		}
	}
}

func trimTo(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// formatMoney renders d with two decimals and thousands separators
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	if d.IsNegative() && !d.Round(2).IsZero() {
		b.WriteByte('-')
	}
	for i := 0; i < len(intPart); i++ {
		b.WriteByte(intPart[i])
		rem := len(intPart) - i - 1
		if rem > 0 && rem%3 == 0 {
			b.WriteByte(',')
		}
	}
	b.WriteString(frac)
	return b.String()
}
