package docgen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBankTransferCSV(t *testing.T) {
	rows := []BankTransferRow{
		{
			EmployeeCode:  "2024-0001",
			EmployeeName:  "Asha Verma",
			BankName:      "HDFC",
			AccountNumber: "0012345678",
			IFSC:          "HDFC0000123",
			Amount:        decimal.RequireFromString("18250.50"),
			Remarks:       "Salary 01/2025",
		},
		{
			EmployeeCode:  "2024-0002",
			EmployeeName:  "Ravi Kumar",
			BankName:      "SBI",
			AccountNumber: "9987654321",
			IFSC:          "SBIN0000456",
			Amount:        decimal.RequireFromString("21400"),
			Remarks:       "Salary 01/2025",
		},
	}

	var buf bytes.Buffer
	err := WriteBankTransferCSV(&buf, rows)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "txn_ref,employee_code,employee_name,bank_name,account_number,ifsc,amount,remarks", lines[0])
	assert.Contains(t, lines[1], "18250.50")
	assert.Contains(t, lines[2], "21400.00")

	// Every payout line gets its own transaction reference.
	ref1 := strings.SplitN(lines[1], ",", 2)[0]
	ref2 := strings.SplitN(lines[2], ",", 2)[0]
	assert.NotEmpty(t, ref1)
	assert.NotEqual(t, ref1, ref2)
}

func TestPayslipWritesFile(t *testing.T) {
	g := NewGenerator(t.TempDir())

	path, err := g.Payslip(PayslipData{
		EmployeeCode: "2024-0001",
		EmployeeName: "Asha Verma",
		Month:        1,
		Year:         2025,
		Earnings: []LineItem{
			{Label: "Basic", Amount: decimal.RequireFromString("15000")},
			{Label: "Incentive", Amount: decimal.RequireFromString("700")},
		},
		Deductions: []LineItem{
			{Label: "PF", Amount: decimal.RequireFromString("1800")},
		},
		GrossPay:    decimal.RequireFromString("15700"),
		TotalDeduct: decimal.RequireFromString("1800"),
		NetPay:      decimal.RequireFromString("13900"),
	})
	require.NoError(t, err)
	assert.Contains(t, path, "2024-0001-2025-01.pdf")
}

func TestSettlementStatementWritesFile(t *testing.T) {
	g := NewGenerator(t.TempDir())

	path, err := g.SettlementStatement(SettlementStatementData{
		CaseID:         "case-1",
		EmployeeCode:   "2024-0001",
		EmployeeName:   "Asha Verma",
		LastWorkingDay: "2025-03-15",
		Payables: []LineItem{
			{Label: "Unpaid Salary", Amount: decimal.RequireFromString("9677.42")},
		},
		Receivables: []LineItem{
			{Label: "Notice Shortfall", Amount: decimal.RequireFromString("5000")},
		},
		TotalPayable:  decimal.RequireFromString("9677.42"),
		TotalRecovery: decimal.RequireFromString("5000"),
		NetSettlement: decimal.RequireFromString("4677.42"),
	})
	require.NoError(t, err)
	assert.Contains(t, path, "fnf-case-1.pdf")
}
