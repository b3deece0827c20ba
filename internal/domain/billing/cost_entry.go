package billing

import (
	"time"

	"github.com/agentbill/backend/internal/domain/shared"
	"github.com/agentbill/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostEntry is an immutable ledger entry for one calculated charge.
// Corrections are made with new entries, never by editing existing ones.
type CostEntry struct {
	shared.OrgAggregateRoot
	ModelID     uuid.UUID
	ModelKind   ModelKind
	Amount      decimal.Decimal
	Currency    valueobject.Currency
	PeriodStart time.Time
	PeriodEnd   time.Time
	Usage       UsageData
	Description string
}

// NewCostEntry creates a ledger entry for the current billing month
func NewCostEntry(
	orgID uuid.UUID,
	modelID uuid.UUID,
	kind ModelKind,
	amount decimal.Decimal,
	currency valueobject.Currency,
	usage UsageData,
) (*CostEntry, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Cost amount cannot be negative")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	now := time.Now()
	periodStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	periodEnd := periodStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	return &CostEntry{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		ModelID:          modelID,
		ModelKind:        kind,
		Amount:           amount,
		Currency:         currency,
		PeriodStart:      periodStart,
		PeriodEnd:        periodEnd,
		Usage:            usage,
	}, nil
}

// WithDescription sets a human-readable description
func (e *CostEntry) WithDescription(description string) *CostEntry {
	e.Description = description
	return e
}
