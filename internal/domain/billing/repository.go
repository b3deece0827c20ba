package billing

import (
	"context"

	"github.com/agentbill/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BillingModelRepository persists billing model configurations
type BillingModelRepository interface {
	shared.OrgRepository[BillingModel]
	FindActiveForOrg(ctx context.Context, orgID uuid.UUID) ([]BillingModel, error)
}

// OutcomeMetricRepository persists outcome metrics. SaveAll must be applied
// atomically by the implementation; the lifecycle itself only guarantees that
// each metric ends in an internally consistent state.
type OutcomeMetricRepository interface {
	shared.OrgRepository[OutcomeMetric]
	FindByIDsForOrg(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]OutcomeMetric, error)
	FindByBillingStatusForOrg(ctx context.Context, orgID uuid.UUID, status BillingStatus, filter shared.Filter) ([]OutcomeMetric, error)
	SaveAll(ctx context.Context, metrics []*OutcomeMetric) error
}

// VerificationRuleRepository persists outcome verification rules
type VerificationRuleRepository interface {
	shared.OrgRepository[OutcomeVerificationRule]
	FindForOutcomeType(ctx context.Context, orgID uuid.UUID, outcomeType string) ([]OutcomeVerificationRule, error)
}

// CostEntryRepository persists the cost ledger
type CostEntryRepository interface {
	Save(ctx context.Context, entry *CostEntry) error
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]CostEntry, error)
}
