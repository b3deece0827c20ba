package pricing

import (
	"context"
	"fmt"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/domain/shared"
	"github.com/agentbill/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// Calculator is the single entry point for all cost calculations. It
// dispatches on the snapshot's model kind to the matching cost strategy and
// verifies that the configuration payload matches the declared kind.
//
// The calculator is stateless and side-effect free: identical
// (snapshot, usage) inputs always yield identical output.
type Calculator struct{}

// NewCalculator creates a cost calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate computes the full cost result for the snapshot and usage data.
// The dispatch over model kinds is exhaustive; an unsupported kind or a
// missing kind-matching configuration is a ConfigurationError.
func (c *Calculator) Calculate(
	ctx context.Context,
	snapshot billing.ModelSnapshot,
	usage billing.UsageData,
	selector strategy.ConfigSelector,
) (strategy.CostResult, error) {
	costStrategy, err := c.strategyFor(snapshot)
	if err != nil {
		return strategy.CostResult{}, err
	}

	return costStrategy.Calculate(ctx, strategy.CostContext{
		Usage:    usage,
		Currency: string(snapshot.Currency),
		Selector: selector,
	})
}

// CalculateCost computes the single non-negative monetary amount for the
// snapshot and usage data, summing all active configurations of the
// snapshot's kind
func (c *Calculator) CalculateCost(
	ctx context.Context,
	snapshot billing.ModelSnapshot,
	usage billing.UsageData,
) (decimal.Decimal, error) {
	result, err := c.Calculate(ctx, snapshot, usage, strategy.SelectorSumActive)
	if err != nil {
		return decimal.Zero, err
	}
	return result.Amount, nil
}

func (c *Calculator) strategyFor(snapshot billing.ModelSnapshot) (strategy.CostStrategy, error) {
	switch snapshot.Kind {
	case billing.ModelKindAgent:
		if snapshot.Agent == nil {
			return nil, missingConfig(snapshot.Kind)
		}
		return NewAgentCostStrategy(*snapshot.Agent), nil

	case billing.ModelKindActivity:
		if len(snapshot.Activities) == 0 {
			return nil, missingConfig(snapshot.Kind)
		}
		return NewActivityCostStrategy(snapshot.Activities), nil

	case billing.ModelKindOutcome:
		if len(snapshot.Outcomes) == 0 {
			return nil, missingConfig(snapshot.Kind)
		}
		return NewOutcomeCostStrategy(snapshot.Outcomes), nil

	case billing.ModelKindWorkflow:
		if snapshot.Workflow == nil {
			return nil, missingConfig(snapshot.Kind)
		}
		return NewWorkflowCostStrategy(*snapshot.Workflow), nil

	case billing.ModelKindHybrid:
		if snapshot.Hybrid == nil {
			return nil, missingConfig(snapshot.Kind)
		}
		return NewHybridCostStrategy(*snapshot.Hybrid), nil

	default:
		return nil, shared.NewConfigurationError("UNSUPPORTED_MODEL_KIND",
			fmt.Sprintf("Unsupported model kind: %q", snapshot.Kind))
	}
}

func missingConfig(kind billing.ModelKind) error {
	return shared.NewConfigurationError("CONFIG_MISSING",
		fmt.Sprintf("No %s configuration attached to %s billing model", kind, kind))
}
