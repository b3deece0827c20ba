package pricing

import (
	"context"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// AgentCostStrategy prices flat per-seat billing: base fee times agent
// count, optionally plus the one-time setup fee, reduced by the volume
// discount once the seat count meets its threshold.
type AgentCostStrategy struct {
	strategy.BaseStrategy
	cfg billing.AgentConfig
}

// NewAgentCostStrategy creates an agent cost strategy from its configuration
func NewAgentCostStrategy(cfg billing.AgentConfig) *AgentCostStrategy {
	return &AgentCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"agent",
			strategy.StrategyTypeCost,
			"Flat per-seat pricing with optional setup fee and volume discount",
		),
		cfg: cfg,
	}
}

// Kind returns the model kind this strategy prices
func (s *AgentCostStrategy) Kind() billing.ModelKind {
	return billing.ModelKindAgent
}

// Calculate computes the per-seat charge for the usage's agent count
func (s *AgentCostStrategy) Calculate(
	ctx context.Context,
	costCtx strategy.CostContext,
) (strategy.CostResult, error) {
	agents := costCtx.Usage.Decimal(billing.UsageKeyAgents)
	appliedRules := []string{}

	cost := s.cfg.BaseFee.Mul(agents)

	if costCtx.Usage.Bool(billing.UsageKeyIncludeSetupFee) {
		cost = cost.Add(s.cfg.SetupFee)
		appliedRules = append(appliedRules, "setup_fee")
	}

	if s.cfg.VolumeDiscount.AppliesTo(agents) {
		discount := cost.Mul(s.cfg.VolumeDiscount.Percentage).Div(decimal.NewFromInt(100))
		cost = cost.Sub(discount)
		appliedRules = append(appliedRules, "volume_discount")
	}

	return strategy.CostResult{
		Amount:       cost,
		Currency:     costCtx.Currency,
		AppliedRules: appliedRules,
	}, nil
}
