package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FeeFor returns the percentage fee for the outcome value: value times the
// configured percentage. Only this configuration participates; base fees and
// sibling configs of a composite model never contribute.
func (c OutcomeConfig) FeeFor(outcomeValue decimal.Decimal) decimal.Decimal {
	return outcomeValue.Mul(c.Percentage).Div(decimal.NewFromInt(100))
}

// AppliedTier returns the label of the first percentage tier, in ascending
// threshold order, whose threshold is greater than or equal to the outcome
// value. Equality at a boundary selects the lower tier. Returns nil when no
// tier qualifies or no tiers are configured.
func (c OutcomeConfig) AppliedTier(outcomeValue decimal.Decimal) *string {
	for i, tier := range c.Tiers {
		if tier.IsZero() {
			continue
		}
		if tier.Threshold.GreaterThanOrEqual(outcomeValue) {
			label := fmt.Sprintf("tier_%d", i+1)
			return &label
		}
	}
	return nil
}

// BonusFor returns the success bonus for the outcome value: value times the
// bonus percentage once the value meets the bonus threshold, else zero. The
// bonus is reported alongside the fee and never added into it.
func (c OutcomeConfig) BonusFor(outcomeValue decimal.Decimal) decimal.Decimal {
	b := c.SuccessBonus
	if b.Threshold.LessThanOrEqual(decimal.Zero) || b.Percentage.IsZero() {
		return decimal.Zero
	}
	if outcomeValue.LessThan(b.Threshold) {
		return decimal.Zero
	}
	return outcomeValue.Mul(b.Percentage).Div(decimal.NewFromInt(100))
}
