package pricing

import (
	"context"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// WorkflowCostStrategy prices named workflow executions. Each workflow type
// present in usage is priced against its own tiers and floored by its own
// minimum charge; the overage multiplier applies when usage declares the
// commitment exceeded. The model-level volume discount reduces the running
// total once the summed execution count across all types meets the global
// threshold.
type WorkflowCostStrategy struct {
	strategy.BaseStrategy
	cfg billing.WorkflowConfig
}

// NewWorkflowCostStrategy creates a workflow cost strategy from its configuration
func NewWorkflowCostStrategy(cfg billing.WorkflowConfig) *WorkflowCostStrategy {
	return &WorkflowCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"workflow",
			strategy.StrategyTypeCost,
			"Per-workflow-type tiered pricing with commitment overage and global discount",
		),
		cfg: cfg,
	}
}

// Kind returns the model kind this strategy prices
func (s *WorkflowCostStrategy) Kind() billing.ModelKind {
	return billing.ModelKindWorkflow
}

// Calculate computes the workflow charge for the given usage
func (s *WorkflowCostStrategy) Calculate(
	ctx context.Context,
	costCtx strategy.CostContext,
) (strategy.CostResult, error) {
	total := s.cfg.BasePlatformFee
	totalCount := decimal.Zero
	appliedRules := []string{}

	commitmentExceeded := costCtx.Usage.Bool(billing.UsageKeyCommitmentExceeded)
	overage := commitmentExceeded && s.cfg.OverageMultiplier.GreaterThan(decimal.Zero)

	for name, count := range costCtx.Usage.Workflows() {
		totalCount = totalCount.Add(count)

		wt := s.cfg.TypeByName(name)
		if wt == nil {
			// Unpriced workflow type; contributes nothing.
			continue
		}

		cost := CalculateTiered(count, wt.Tiers, wt.PricePerWorkflow)
		if cost.LessThan(wt.MinimumCharge) {
			cost = wt.MinimumCharge
		}
		if overage {
			cost = cost.Mul(s.cfg.OverageMultiplier)
		}
		total = total.Add(cost)
	}

	if overage {
		appliedRules = append(appliedRules, "overage_multiplier")
	}

	if s.cfg.VolumeDiscount.AppliesTo(totalCount) {
		discount := total.Mul(s.cfg.VolumeDiscount.Percentage).Div(decimal.NewFromInt(100))
		total = total.Sub(discount)
		appliedRules = append(appliedRules, "volume_discount")
	}

	return strategy.CostResult{
		Amount:       total,
		Currency:     costCtx.Currency,
		AppliedRules: appliedRules,
	}, nil
}
