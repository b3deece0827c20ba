package pricing

import (
	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// CalculateTiered prices a non-negative quantity against ordered volume
// tiers with cumulative thresholds. Units are consumed band by band: tier 1
// covers units up to its threshold at tier 1's price, tier 2 covers the band
// between the tier 1 and tier 2 thresholds, and so on. Quantity remaining
// past the last configured tier is charged at that last tier's price.
//
// A tier with a missing or zero threshold is treated as absent and skipped.
// With no usable tiers the quantity is charged flat at flatPrice.
//
// Pure function: non-negative input never errors.
func CalculateTiered(quantity decimal.Decimal, tiers []billing.Tier, flatPrice decimal.Decimal) decimal.Decimal {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	active := make([]billing.Tier, 0, len(tiers))
	for _, t := range tiers {
		if t.IsZero() {
			continue
		}
		active = append(active, t)
	}

	if len(active) == 0 {
		return quantity.Mul(flatPrice)
	}

	total := decimal.Zero
	remaining := quantity
	previousThreshold := decimal.Zero

	for _, tier := range active {
		band := tier.Threshold.Sub(previousThreshold)
		if band.LessThanOrEqual(decimal.Zero) {
			// Non-increasing threshold; treat as absent.
			continue
		}

		consumed := decimal.Min(remaining, band)
		total = total.Add(consumed.Mul(tier.Price))
		remaining = remaining.Sub(consumed)
		previousThreshold = tier.Threshold

		if remaining.LessThanOrEqual(decimal.Zero) {
			return total
		}
	}

	// Overflow past the last configured tier stays at the last tier's price.
	last := active[len(active)-1]
	return total.Add(remaining.Mul(last.Price))
}
