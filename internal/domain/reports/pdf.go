package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

var financeColumns = []struct {
	title string
	width float64
}{
	{"Team", 60},
	{"Revenue", 32},
	{"Payroll", 32},
	{"Expenses", 32},
	{"Profit", 32},
}

func RenderFinancePDF(companyName string, report FinanceReport, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Team finances")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	if companyName != "" {
		pdf.Cell(0, 7, fmt.Sprintf("Company: %s", companyName))
		pdf.Ln(6)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Generated: %s", generatedAt.UTC().Format("2006-01-02 15:04 MST")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	for _, col := range financeColumns {
		pdf.CellFormat(col.width, 8, col.title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, team := range report.Teams {
		financeRow(pdf, team.TeamName, team.Revenue, team.Payroll, team.Expenses, team.Profit)
	}
	pdf.SetFont("Helvetica", "B", 11)
	c := report.Company
	financeRow(pdf, "Company total", c.Revenue, c.Payroll, c.Expenses, c.Profit)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func financeRow(pdf *gofpdf.Fpdf, label string, amounts ...float64) {
	pdf.CellFormat(financeColumns[0].width, 7, pdf.UnicodeTranslatorFromDescriptor("")(label), "1", 0, "L", false, 0, "")
	for i, amount := range amounts {
		pdf.CellFormat(financeColumns[i+1].width, 7, fmt.Sprintf("%.2f", amount), "1", 0, "R", false, 0, "")
	}
	pdf.Ln(-1)
}
