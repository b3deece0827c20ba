package pricing

import (
	"context"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// OutcomeCostStrategy prices business outcomes as a percentage of the
// outcome value.
//
// SelectorSumActive sums the percentage charge of every attached
// configuration; SelectorByType charges only the configuration matching the
// usage data's declared outcome type. Per-config math lives on
// OutcomeConfig.FeeFor, shared with the outcome-recording path.
type OutcomeCostStrategy struct {
	strategy.BaseStrategy
	configs []billing.OutcomeConfig
}

// NewOutcomeCostStrategy creates an outcome cost strategy from its configurations
func NewOutcomeCostStrategy(configs []billing.OutcomeConfig) *OutcomeCostStrategy {
	return &OutcomeCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"outcome",
			strategy.StrategyTypeCost,
			"Outcome-percentage pricing over delivered business value",
		),
		configs: configs,
	}
}

// Kind returns the model kind this strategy prices
func (s *OutcomeCostStrategy) Kind() billing.ModelKind {
	return billing.ModelKindOutcome
}

// Calculate computes the outcome charge for the given usage
func (s *OutcomeCostStrategy) Calculate(
	ctx context.Context,
	costCtx strategy.CostContext,
) (strategy.CostResult, error) {
	total := decimal.Zero
	appliedRules := []string{}

	outcomeValue := costCtx.Usage.Decimal(billing.UsageKeyOutcomeValue)
	outcomeType := costCtx.Usage.Str(billing.UsageKeyOutcomeType)

	for i := range s.configs {
		cfg := &s.configs[i]
		if costCtx.Selector == strategy.SelectorByType && cfg.OutcomeType != outcomeType {
			continue
		}

		total = total.Add(cfg.FeeFor(outcomeValue))
		appliedRules = append(appliedRules, "outcome_percentage")
	}

	return strategy.CostResult{
		Amount:       total,
		Currency:     costCtx.Currency,
		AppliedRules: appliedRules,
	}, nil
}
