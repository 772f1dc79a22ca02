package docgen

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Generator renders payroll and settlement documents to disk.
type Generator struct {
	outputDir string
}

func NewGenerator(outputDir string) *Generator {
	return &Generator{outputDir: outputDir}
}

// PayslipData carries everything a single payslip needs.
type PayslipData struct {
	EmployeeCode string
	EmployeeName string
	Month        int
	Year         int
	Earnings     []LineItem
	Deductions   []LineItem
	GrossPay     decimal.Decimal
	TotalDeduct  decimal.Decimal
	NetPay       decimal.Decimal
}

type LineItem struct {
	Label  string
	Amount decimal.Decimal
}

// Payslip writes a one-page payslip PDF and returns its path.
func (g *Generator) Payslip(data PayslipData) (string, error) {
	dir := filepath.Join(g.outputDir, "payslips")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(dir, fmt.Sprintf("%s-%04d-%02d.pdf", data.EmployeeCode, data.Year, data.Month))

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", data.EmployeeName, data.EmployeeCode))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %02d/%04d", data.Month, data.Year))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Earnings")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	for _, item := range data.Earnings {
		pdf.Cell(0, 8, fmt.Sprintf("%s: %s", item.Label, item.Amount.StringFixed(2)))
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Deductions")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	for _, item := range data.Deductions {
		pdf.Cell(0, 8, fmt.Sprintf("%s: %s", item.Label, item.Amount.StringFixed(2)))
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Gross: %s", data.GrossPay.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total Deductions: %s", data.TotalDeduct.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Net Pay: %s", data.NetPay.StringFixed(2)))

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}

// SettlementStatementData carries the final settlement breakdown.
type SettlementStatementData struct {
	CaseID         string
	EmployeeCode   string
	EmployeeName   string
	LastWorkingDay string
	Payables       []LineItem
	Receivables    []LineItem
	TotalPayable   decimal.Decimal
	TotalRecovery  decimal.Decimal
	NetSettlement  decimal.Decimal
}

// SettlementStatement writes the full-and-final statement PDF.
func (g *Generator) SettlementStatement(data SettlementStatementData) (string, error) {
	dir := filepath.Join(g.outputDir, "settlements")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(dir, fmt.Sprintf("fnf-%s.pdf", data.CaseID))

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Full and Final Settlement Statement")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", data.EmployeeName, data.EmployeeCode))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Last Working Day: %s", data.LastWorkingDay))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Payables")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	for _, item := range data.Payables {
		pdf.Cell(0, 8, fmt.Sprintf("%s: %s", item.Label, item.Amount.StringFixed(2)))
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Recoveries and Deductions")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	for _, item := range data.Receivables {
		pdf.Cell(0, 8, fmt.Sprintf("%s: %s", item.Label, item.Amount.StringFixed(2)))
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total Payable: %s", data.TotalPayable.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total Recoveries: %s", data.TotalRecovery.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Net Settlement: %s", data.NetSettlement.StringFixed(2)))

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}

// BankTransferRow is one line of the payout file sent to the bank.
type BankTransferRow struct {
	EmployeeCode  string
	EmployeeName  string
	BankName      string
	AccountNumber string
	IFSC          string
	Amount        decimal.Decimal
	Remarks       string
}

// WriteBankTransferCSV emits the bank payout file for a posted run.
// Each row carries a fresh transaction reference; the bank rejects
// files that reuse one.
func WriteBankTransferCSV(w io.Writer, rows []BankTransferRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"txn_ref", "employee_code", "employee_name", "bank_name", "account_number", "ifsc", "amount", "remarks"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			uuid.New().String(),
			row.EmployeeCode,
			row.EmployeeName,
			row.BankName,
			row.AccountNumber,
			row.IFSC,
			row.Amount.StringFixed(2),
			row.Remarks,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// BankTransferFile writes the payout CSV for a run into the output dir
// and returns its path.
func (g *Generator) BankTransferFile(year, month int, rows []BankTransferRow) (string, error) {
	dir := filepath.Join(g.outputDir, "bank")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(dir, fmt.Sprintf("payout-%04d-%02d.csv", year, month))

	f, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteBankTransferCSV(f, rows); err != nil {
		return "", err
	}
	return filePath, nil
}
