package leave

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestComputeClosing_Recurrence(t *testing.T) {
	entry := LedgerEntry{
		Opening:        d("4"),
		Accrual:        d("1"),
		Used:           d("2"),
		Encashed:       d("0"),
		CarriedForward: d("0.5"),
	}
	ComputeClosing(&entry)

	assert.True(t, entry.Closing.Equal(d("3.5")), "closing = %s", entry.Closing)
	assert.True(t, entry.NegativeBalance.IsZero())
}

func TestComputeClosing_ClampsAtZero(t *testing.T) {
	entry := LedgerEntry{
		Opening: d("1"),
		Used:    d("3"),
	}
	ComputeClosing(&entry)

	assert.True(t, entry.Closing.IsZero(), "closing never persisted negative")
	assert.True(t, entry.NegativeBalance.Equal(d("2")), "deficit recorded, got %s", entry.NegativeBalance)
	assert.True(t, entry.RawBalance().Equal(d("-2")))
}

func TestComputeClosing_Idempotent(t *testing.T) {
	entry := LedgerEntry{Opening: d("2"), Accrual: d("1"), Used: d("4")}
	ComputeClosing(&entry)
	first := entry.Closing
	firstNeg := entry.NegativeBalance

	ComputeClosing(&entry)
	assert.True(t, entry.Closing.Equal(first))
	assert.True(t, entry.NegativeBalance.Equal(firstNeg))
}

func TestRequestDays_HalfDayAware(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.True(t, RequestDays(start, start, LeaveDurationFullDay).Equal(d("1")))
	assert.True(t, RequestDays(start, start, LeaveDurationHalfDayMorning).Equal(d("0.5")))

	end := start.AddDate(0, 0, 2)
	assert.True(t, RequestDays(start, end, LeaveDurationFullDay).Equal(d("3")))
	assert.True(t, RequestDays(start, end, LeaveDurationHalfDayAfternoon).Equal(d("2.5")))
}

func TestPolicy_MonthlyAccrualRate(t *testing.T) {
	p := LeavePolicy{DaysPerYear: d("12"), MonthlyAccrual: true}
	assert.True(t, p.MonthlyAccrualRate().Equal(d("1")))

	flat := d("1.25")
	p.FlatMonthlyRate = &flat
	assert.True(t, p.MonthlyAccrualRate().Equal(flat))
}

func TestPolicy_RequiresMedicalCert(t *testing.T) {
	threshold := 3
	p := LeavePolicy{MedicalCertAfterDays: &threshold}

	assert.False(t, p.RequiresMedicalCert(d("3")))
	assert.True(t, p.RequiresMedicalCert(d("3.5")))

	p.MedicalCertAfterDays = nil
	assert.False(t, p.RequiresMedicalCert(d("10")))
}

func TestPrevPeriod_YearBoundary(t *testing.T) {
	y, m := PrevPeriod(2025, 1)
	assert.Equal(t, 2024, y)
	assert.Equal(t, 12, m)

	y, m = PrevPeriod(2025, 6)
	assert.Equal(t, 2025, y)
	assert.Equal(t, 5, m)
}

func TestUsageDetails_Contains(t *testing.T) {
	details := UsageDetails{{RequestID: "req-1", Days: d("2"), AppliedAt: time.Now()}}
	assert.True(t, details.Contains("req-1"))
	assert.False(t, details.Contains("req-2"))
}
