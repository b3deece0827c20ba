// Package billing provides domain models for the agent monetization bounded context.
//
// This package is responsible for:
//   - Describing billing models (agent seats, activities, outcomes, hybrid, workflows)
//     and their pricing configurations
//   - Recording outcome metrics and advancing their verification/billing lifecycle
//   - Evaluating verification rules against recorded outcomes
//   - Producing immutable cost ledger entries for calculated charges
//
// Key Aggregates:
//   - BillingModel: An organization's pricing configuration for one model kind
//   - OutcomeMetric: An immutable record of a single business outcome, with a
//     two-axis (verification/billing) lifecycle
//   - CostEntry: A ledger entry for a single calculated charge
//
// Value Objects:
//   - ModelSnapshot: An immutable copy of a billing model taken at calculation time
//   - OutcomeState: The combined verification/billing state; only valid
//     combinations are constructible
//   - Tier, VolumeDiscount, SuccessBonus: Pricing configuration primitives
//
// The actual price calculation lives behind the cost strategy interfaces in
// internal/domain/shared/strategy, implemented under
// internal/infrastructure/strategy/pricing.
package billing
