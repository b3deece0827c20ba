package pricing

import (
	"context"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/domain/shared/strategy"
)

// HybridCostStrategy composes the agent, activity, and outcome strategies
// on top of a flat base fee. An absent sub-config contributes exactly zero.
type HybridCostStrategy struct {
	strategy.BaseStrategy
	cfg billing.HybridConfig
}

// NewHybridCostStrategy creates a hybrid cost strategy from its configuration
func NewHybridCostStrategy(cfg billing.HybridConfig) *HybridCostStrategy {
	return &HybridCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"hybrid",
			strategy.StrategyTypeCost,
			"Additive composition of agent, activity, and outcome pricing plus a base fee",
		),
		cfg: cfg,
	}
}

// Kind returns the model kind this strategy prices
func (s *HybridCostStrategy) Kind() billing.ModelKind {
	return billing.ModelKindHybrid
}

// Calculate sums the base fee and every configured sub-strategy
func (s *HybridCostStrategy) Calculate(
	ctx context.Context,
	costCtx strategy.CostContext,
) (strategy.CostResult, error) {
	total := s.cfg.BaseFee
	appliedRules := []string{"hybrid_base_fee"}

	if s.cfg.Agent != nil {
		result, err := NewAgentCostStrategy(*s.cfg.Agent).Calculate(ctx, costCtx)
		if err != nil {
			return strategy.CostResult{}, err
		}
		total = total.Add(result.Amount)
		appliedRules = append(appliedRules, result.AppliedRules...)
	}

	if len(s.cfg.Activities) > 0 {
		result, err := NewActivityCostStrategy(s.cfg.Activities).Calculate(ctx, costCtx)
		if err != nil {
			return strategy.CostResult{}, err
		}
		total = total.Add(result.Amount)
		appliedRules = append(appliedRules, result.AppliedRules...)
	}

	if len(s.cfg.Outcomes) > 0 {
		result, err := NewOutcomeCostStrategy(s.cfg.Outcomes).Calculate(ctx, costCtx)
		if err != nil {
			return strategy.CostResult{}, err
		}
		total = total.Add(result.Amount)
		appliedRules = append(appliedRules, result.AppliedRules...)
	}

	return strategy.CostResult{
		Amount:       total,
		Currency:     costCtx.Currency,
		AppliedRules: appliedRules,
	}, nil
}
