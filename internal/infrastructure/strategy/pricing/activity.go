package pricing

import (
	"context"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// ActivityCostStrategy prices discrete actions per unit with volume tiers.
// Each configuration contributes a per-agent base fee plus the tiered unit
// charge, floored by its own minimum charge.
//
// The selector on the cost context chooses between the two summation
// operations: SelectorSumActive sums every active configuration,
// SelectorByType prices only the configuration matching the usage data's
// declared activity type.
type ActivityCostStrategy struct {
	strategy.BaseStrategy
	configs []billing.ActivityConfig
}

// NewActivityCostStrategy creates an activity cost strategy from its configurations
func NewActivityCostStrategy(configs []billing.ActivityConfig) *ActivityCostStrategy {
	return &ActivityCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"activity",
			strategy.StrategyTypeCost,
			"Per-unit activity pricing with volume tiers and minimum charge",
		),
		configs: configs,
	}
}

// Kind returns the model kind this strategy prices
func (s *ActivityCostStrategy) Kind() billing.ModelKind {
	return billing.ModelKindActivity
}

// Calculate computes the activity charge for the given usage
func (s *ActivityCostStrategy) Calculate(
	ctx context.Context,
	costCtx strategy.CostContext,
) (strategy.CostResult, error) {
	total := decimal.Zero
	appliedRules := []string{}

	activityType := costCtx.Usage.Str(billing.UsageKeyActivityType)

	for i := range s.configs {
		cfg := &s.configs[i]
		if !cfg.IsActive {
			continue
		}
		if costCtx.Selector == strategy.SelectorByType && cfg.ActivityType != activityType {
			continue
		}

		cost, rules := s.configCost(cfg, costCtx.Usage)
		total = total.Add(cost)
		appliedRules = append(appliedRules, rules...)
	}

	return strategy.CostResult{
		Amount:       total,
		Currency:     costCtx.Currency,
		AppliedRules: appliedRules,
	}, nil
}

func (s *ActivityCostStrategy) configCost(cfg *billing.ActivityConfig, usage billing.UsageData) (decimal.Decimal, []string) {
	agents := usage.Decimal(billing.UsageKeyAgents)
	units := usage.Decimal(billing.UsageKeyUnits)
	rules := []string{}

	cost := cfg.BaseFeePerAgent.Mul(agents)
	cost = cost.Add(CalculateTiered(units, cfg.Tiers, cfg.PricePerUnit))
	if len(cfg.Tiers) > 0 {
		rules = append(rules, "tiered_pricing")
	}

	if cost.LessThan(cfg.MinimumCharge) {
		cost = cfg.MinimumCharge
		rules = append(rules, "minimum_charge")
	}

	return cost, rules
}
