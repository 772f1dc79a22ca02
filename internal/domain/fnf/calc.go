package fnf

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnpaidSalaryFor prorates gross over the actual calendar days of the
// final month: daily-rate × days worked from the 1st through the last
// working day. Note the deliberate asymmetry with EL encashment, which
// uses a flat /30 divisor (observed behavior, kept).
func UnpaidSalaryFor(gross decimal.Decimal, lastWorkingDay time.Time) (int, decimal.Decimal) {
	daysInMonth := time.Date(lastWorkingDay.Year(), lastWorkingDay.Month()+1, 0, 0, 0, 0, 0, lastWorkingDay.Location()).Day()
	daysWorked := lastWorkingDay.Day()

	amount := gross.
		Div(decimal.NewFromInt(int64(daysInMonth))).
		Mul(decimal.NewFromInt(int64(daysWorked))).
		Round(2)

	return daysWorked, amount
}

// ELEncashmentFor values the closing EL balance at basic/30 per day.
func ELEncashmentFor(basic, closingDays decimal.Decimal) decimal.Decimal {
	return basic.
		Div(decimal.NewFromInt(30)).
		Mul(closingDays).
		Round(2)
}

// NoticeShortfallFor values unserved notice days at basic/30 per day.
func NoticeShortfallFor(basic decimal.Decimal, requiredDays, givenDays int) (int, decimal.Decimal) {
	shortfall := requiredDays - givenDays
	if shortfall <= 0 {
		return 0, decimal.Zero
	}

	amount := basic.
		Div(decimal.NewFromInt(30)).
		Mul(decimal.NewFromInt(int64(shortfall))).
		Round(2)

	return shortfall, amount
}

// ComputeTotals folds the five blocks into payable/receivable/net.
func ComputeTotals(c *FnFCase) {
	c.TotalPayable = c.UnpaidSalary.Amount.
		Add(c.ELEncashment.Amount).
		Add(c.Incentives.Amount)
	c.TotalReceivable = c.Recoveries.Total.Add(c.Statutory.Total)
	c.NetSettlement = c.TotalPayable.Sub(c.TotalReceivable)
}
