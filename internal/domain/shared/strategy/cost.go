package strategy

import (
	"context"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// ConfigSelector picks how a strategy combines multiple configurations of
// one kind for a single calculation
type ConfigSelector string

const (
	// SelectorSumActive sums every active configuration of the kind
	SelectorSumActive ConfigSelector = "sum_active"

	// SelectorByType selects the single configuration matching the usage
	// data's declared activity/outcome type
	SelectorByType ConfigSelector = "by_type"
)

// CostContext provides context for a cost calculation. It is consumed for
// the duration of one call only.
type CostContext struct {
	Usage    billing.UsageData
	Currency string
	Selector ConfigSelector
}

// CostResult contains the result of a cost calculation
type CostResult struct {
	Amount       decimal.Decimal
	Currency     string
	AppliedRules []string
}

// CostStrategy calculates a monetary charge from usage data. Implementations
// are pure: identical inputs always yield identical results, and no strategy
// blocks, retries, or touches shared state.
type CostStrategy interface {
	Strategy
	// Kind returns the billing model kind this strategy prices
	Kind() billing.ModelKind
	// Calculate computes the charge for the given usage
	Calculate(ctx context.Context, costCtx CostContext) (CostResult, error)
}
