package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Page layout (mm)
const (
	pdfMarginLeft   = 20.0
	pdfMarginTop    = 20.0
	pdfMarginRight  = 20.0
	pdfMarginBottom = 20.0
	pdfPageWidth    = 210.0
	pdfContentWidth = pdfPageWidth - pdfMarginLeft - pdfMarginRight
	pdfLabelWidth   = 120.0
	pdfRowHeight    = 7.0
)

// PayslipPDF renders a payslip as a one-page A4 PDF
type PayslipPDF struct {
	pdf     *fpdf.Fpdf
	payslip Payslip
}

// NewPayslipPDF prepares the document for a payslip
func NewPayslipPDF(p Payslip) *PayslipPDF {
	doc := &PayslipPDF{
		pdf:     fpdf.New("P", "mm", "A4", ""),
		payslip: p,
	}
	doc.pdf.SetMargins(pdfMarginLeft, pdfMarginTop, pdfMarginRight)
	doc.pdf.SetAutoPageBreak(true, pdfMarginBottom)
	doc.pdf.SetTitle("Payslip "+p.Period, false)
	doc.pdf.SetAuthor(p.Employer, false)
	return doc
}

// Bytes renders the payslip and returns the PDF document
func (d *PayslipPDF) Bytes() ([]byte, error) {
	d.pdf.AddPage()
	d.addHeader()
	d.addEarnings()
	d.addDeductions()
	d.addNetPay()
	d.addEmployer()
	d.addFooter()

	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "render payslip pdf")
	}
	return buf.Bytes(), nil
}

// WriteFile renders the payslip into dir and returns the file path
func (d *PayslipPDF) WriteFile(dir string) (string, error) {
	data, err := d.Bytes()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "create %s", dir)
	}
	path := filepath.Join(dir, d.payslip.Filename())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}

func (d *PayslipPDF) addHeader() {
	p := d.payslip

	d.pdf.SetFont("Arial", "B", 20)
	d.pdf.SetTextColor(14, 124, 58)
	d.pdf.CellFormat(pdfContentWidth, 10, p.Employer, "", 1, "L", false, 0, "")

	d.pdf.SetFont("Arial", "", 12)
	d.pdf.SetTextColor(80, 80, 80)
	d.pdf.CellFormat(pdfContentWidth, 7, "Payslip for "+p.Period, "", 1, "L", false, 0, "")
	d.pdf.Ln(4)

	d.pdf.SetFillColor(245, 247, 250)
	d.pdf.SetDrawColor(200, 200, 200)
	d.pdf.SetFont("Arial", "", 10)
	d.pdf.SetTextColor(50, 50, 50)
	d.pdf.CellFormat(pdfContentWidth/2, pdfRowHeight, "Employee: "+p.Employee, "LT", 0, "L", true, 0, "")
	d.pdf.CellFormat(pdfContentWidth/2, pdfRowHeight, "Employee No: "+p.EmployeeNumber, "RT", 1, "L", true, 0, "")
	d.pdf.CellFormat(pdfContentWidth, pdfRowHeight, "Reference: "+p.Reference.String(), "LRB", 1, "L", true, 0, "")
}

func (d *PayslipPDF) sectionTitle(title string) {
	d.pdf.Ln(6)
	d.pdf.SetFont("Arial", "B", 11)
	d.pdf.SetTextColor(14, 124, 58)
	d.pdf.SetFillColor(230, 242, 235)
	d.pdf.CellFormat(pdfContentWidth, 8, title, "1", 1, "L", true, 0, "")
	d.pdf.SetFont("Arial", "", 10)
	d.pdf.SetTextColor(50, 50, 50)
}

func (d *PayslipPDF) row(label string, amount decimal.Decimal) {
	d.pdf.CellFormat(pdfLabelWidth, pdfRowHeight, label, "L", 0, "L", false, 0, "")
	d.pdf.CellFormat(pdfContentWidth-pdfLabelWidth, pdfRowHeight, formatDecimalKES(amount), "R", 1, "R", false, 0, "")
}

func (d *PayslipPDF) totalRow(label string, amount decimal.Decimal) {
	d.pdf.SetFont("Arial", "B", 10)
	d.pdf.CellFormat(pdfLabelWidth, pdfRowHeight, label, "LTB", 0, "L", false, 0, "")
	d.pdf.CellFormat(pdfContentWidth-pdfLabelWidth, pdfRowHeight, formatDecimalKES(amount), "RTB", 1, "R", false, 0, "")
	d.pdf.SetFont("Arial", "", 10)
}

func (d *PayslipPDF) addEarnings() {
	p := d.payslip
	d.sectionTitle("Earnings")
	d.row("Basic salary", p.Gross)
	if p.TaxableBenefits.IsPositive() {
		d.row("Taxable benefits (not paid in cash)", p.TaxableBenefits)
	}
	d.row("Taxable income", p.TaxableIncome)
	d.totalRow("Gross pay", p.Gross)
}

func (d *PayslipPDF) addDeductions() {
	p := d.payslip
	d.sectionTitle("Deductions")
	for _, line := range p.Deductions {
		d.row(line.Label, line.Amount)
	}
	d.totalRow("Total deductions", p.TotalDeductions)
}

func (d *PayslipPDF) addNetPay() {
	d.pdf.Ln(6)
	d.pdf.SetFont("Arial", "B", 14)
	d.pdf.SetFillColor(14, 124, 58)
	d.pdf.SetTextColor(255, 255, 255)
	d.pdf.CellFormat(pdfLabelWidth, 11, "  NET PAY", "", 0, "L", true, 0, "")
	d.pdf.CellFormat(pdfContentWidth-pdfLabelWidth, 11, formatDecimalKES(d.payslip.Net)+"  ", "", 1, "R", true, 0, "")
}

func (d *PayslipPDF) addEmployer() {
	p := d.payslip
	d.sectionTitle("Employer contributions (not deducted)")
	for _, line := range p.EmployerContributions {
		d.row(line.Label, line.Amount)
	}
	d.totalRow("Total cost to employer", p.EmployerCost)
}

func (d *PayslipPDF) addFooter() {
	d.pdf.Ln(10)
	d.pdf.SetFont("Arial", "I", 8)
	d.pdf.SetTextColor(120, 120, 120)
	note := fmt.Sprintf("Amounts rounded to whole shillings. Generated %s.",
		d.payslip.GeneratedAt.Format("2 January 2006 15:04"))
	d.pdf.MultiCell(pdfContentWidth, 4, note, "", "L", false)
}

// formatDecimalKES formats a rounded payslip amount
func formatDecimalKES(amount decimal.Decimal) string {
	return FormatMoney(amount.InexactFloat64())
}
