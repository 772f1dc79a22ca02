package incentive

import "github.com/shopspring/decimal"

// Slab is one band of the achievement table. The incentive rate applies
// to sales in excess of the band's floor (MinPct of target), capped at
// the band's ceiling (MaxPct of target; zero MaxPct means unbounded).
type Slab struct {
	Name    string
	MinPct  decimal.Decimal
	MaxPct  decimal.Decimal
	RatePct decimal.Decimal
}

// DefaultSlabs in descending threshold order: >=150% pays 10%, >=120%
// pays 7%, >=100% pays 5%, below target pays nothing.
var DefaultSlabs = []Slab{
	{Name: "EXCELLENT", MinPct: decimal.NewFromInt(150), MaxPct: decimal.Decimal{}, RatePct: decimal.NewFromInt(10)},
	{Name: "GOOD", MinPct: decimal.NewFromInt(120), MaxPct: decimal.NewFromInt(150), RatePct: decimal.NewFromInt(7)},
	{Name: "BASE", MinPct: decimal.NewFromInt(100), MaxPct: decimal.NewFromInt(120), RatePct: decimal.NewFromInt(5)},
}

var hundred = decimal.NewFromInt(100)

// AchievementPercent = actual/target*100, or 0 when target is 0.
func AchievementPercent(actual, target decimal.Decimal) decimal.Decimal {
	if target.IsZero() {
		return decimal.Zero
	}
	return actual.Div(target).Mul(hundred)
}

// FindSlab returns the band matching the achievement percentage, highest
// threshold first. ok is false below the lowest band.
func FindSlab(achievementPct decimal.Decimal, slabs []Slab) (Slab, bool) {
	for _, s := range slabs {
		if achievementPct.GreaterThanOrEqual(s.MinPct) {
			return s, true
		}
	}
	return Slab{}, false
}

// SlabAmount applies the band rate to sales in excess of the band floor,
// capping counted sales at the band ceiling.
func SlabAmount(target, actual decimal.Decimal, slab Slab) decimal.Decimal {
	floor := target.Mul(slab.MinPct).Div(hundred)

	counted := actual
	if !slab.MaxPct.IsZero() {
		ceiling := target.Mul(slab.MaxPct).Div(hundred)
		if counted.GreaterThan(ceiling) {
			counted = ceiling
		}
	}

	excess := counted.Sub(floor)
	if excess.IsNegative() {
		return decimal.Zero
	}

	return excess.Mul(slab.RatePct).Div(hundred).Round(2)
}

type Tier string

const (
	TierVeryHigh Tier = "VERY_HIGH"
	TierHigh     Tier = "HIGH"
	TierMedium   Tier = "MEDIUM"
	TierLow      Tier = "LOW"
)

// TierFor classifies an incentive amount; tiers route approval authority
// downstream.
func TierFor(amount decimal.Decimal) Tier {
	switch {
	case amount.GreaterThanOrEqual(decimal.NewFromInt(50000)):
		return TierVeryHigh
	case amount.GreaterThanOrEqual(decimal.NewFromInt(25000)):
		return TierHigh
	case amount.GreaterThanOrEqual(decimal.NewFromInt(10000)):
		return TierMedium
	default:
		return TierLow
	}
}

// ProportionalClawback computes R/S * A: the share of the original
// approved incentive A attributable to the returned amount R out of the
// original sales S.
func ProportionalClawback(returnAmount, originalSales, approvedAmount decimal.Decimal) decimal.Decimal {
	if originalSales.IsZero() {
		return decimal.Zero
	}
	return returnAmount.Div(originalSales).Mul(approvedAmount).Round(2)
}
