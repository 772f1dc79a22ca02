package payroll

import "github.com/shopspring/decimal"

// StatutoryRates carries the configured statutory deduction parameters.
// The rates are illustrative configuration, not tax-law assertions.
type StatutoryRates struct {
	PFRatePct          decimal.Decimal
	PFWageCeiling      decimal.Decimal
	ESICRatePct        decimal.Decimal
	ESICGrossThreshold decimal.Decimal
	PTAmount           decimal.Decimal
}

func DefaultStatutoryRates() StatutoryRates {
	return StatutoryRates{
		PFRatePct:          decimal.NewFromInt(12),
		PFWageCeiling:      decimal.NewFromInt(15000),
		ESICRatePct:        decimal.RequireFromString("0.75"),
		ESICGrossThreshold: decimal.NewFromInt(21000),
		PTAmount:           decimal.NewFromInt(200),
	}
}

// PF is the employee provident-fund contribution on basic, capped at the
// wage ceiling.
func (r StatutoryRates) PF(basic decimal.Decimal) decimal.Decimal {
	wage := basic
	if wage.GreaterThan(r.PFWageCeiling) {
		wage = r.PFWageCeiling
	}
	return wage.Mul(r.PFRatePct).Div(decimal.NewFromInt(100)).Round(2)
}

// ESIC applies only while gross stays at or under the threshold.
func (r StatutoryRates) ESIC(gross decimal.Decimal) decimal.Decimal {
	if gross.GreaterThan(r.ESICGrossThreshold) {
		return decimal.Zero
	}
	return gross.Mul(r.ESICRatePct).Div(decimal.NewFromInt(100)).Round(2)
}

// TDSBand maps amounts up to UpTo (zero means unbounded) to a flat rate.
type TDSBand struct {
	UpTo    decimal.Decimal
	RatePct decimal.Decimal
}

// DefaultTDSBands is the simplified monthly banded table; the whole
// amount is taxed at its band's rate, not marginally.
var DefaultTDSBands = []TDSBand{
	{UpTo: decimal.NewFromInt(25000), RatePct: decimal.Zero},
	{UpTo: decimal.NewFromInt(50000), RatePct: decimal.NewFromInt(5)},
	{UpTo: decimal.NewFromInt(100000), RatePct: decimal.NewFromInt(10)},
	{UpTo: decimal.Decimal{}, RatePct: decimal.NewFromInt(20)},
}

// TDSFor returns the banded deduction for the amount.
func TDSFor(amount decimal.Decimal, bands []TDSBand) decimal.Decimal {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	for _, b := range bands {
		if b.UpTo.IsZero() || amount.LessThanOrEqual(b.UpTo) {
			return amount.Mul(b.RatePct).Div(decimal.NewFromInt(100)).Round(2)
		}
	}
	return decimal.Zero
}
