package billing

import (
	"fmt"
	"time"

	"github.com/agentbill/backend/internal/domain/shared"
	"github.com/agentbill/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VerificationStatus records whether an outcome's authenticity/value is confirmed
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// BillingStatus records whether an outcome has actually been invoiced
type BillingStatus string

const (
	BillingPending  BillingStatus = "pending"
	BillingReady    BillingStatus = "ready"
	BillingRejected BillingStatus = "rejected"
	BillingBilled   BillingStatus = "billed"
)

// OutcomeState is the combined verification/billing state of an outcome
// metric. Only the valid combinations are constructible, so states such as
// billed-while-rejected cannot exist:
//
//	pending/pending -> verified/ready -> verified/billed
//	pending/pending -> rejected/rejected
//
// "billed" and "rejected" are terminal.
type OutcomeState struct {
	verification VerificationStatus
	billing      BillingStatus
}

// StatePendingVerification is the initial state for outcomes requiring verification
func StatePendingVerification() OutcomeState {
	return OutcomeState{verification: VerificationPending, billing: BillingPending}
}

// StateVerified is the billable state: verification confirmed, not yet invoiced
func StateVerified() OutcomeState {
	return OutcomeState{verification: VerificationVerified, billing: BillingReady}
}

// StateBilled is the terminal invoiced state
func StateBilled() OutcomeState {
	return OutcomeState{verification: VerificationVerified, billing: BillingBilled}
}

// StateRejected is the terminal rejected state
func StateRejected() OutcomeState {
	return OutcomeState{verification: VerificationRejected, billing: BillingRejected}
}

// ParseOutcomeState rebuilds a state from its two persisted axes, rejecting
// combinations that cannot be produced by the lifecycle
func ParseOutcomeState(v VerificationStatus, b BillingStatus) (OutcomeState, error) {
	s := OutcomeState{verification: v, billing: b}
	switch s {
	case StatePendingVerification(), StateVerified(), StateBilled(), StateRejected():
		return s, nil
	default:
		return OutcomeState{}, fmt.Errorf("invalid outcome state: verification=%q billing=%q", v, b)
	}
}

// VerificationStatus returns the verification axis
func (s OutcomeState) VerificationStatus() VerificationStatus {
	return s.verification
}

// BillingStatus returns the billing axis
func (s OutcomeState) BillingStatus() BillingStatus {
	return s.billing
}

// IsPending returns true while verification has not concluded
func (s OutcomeState) IsPending() bool {
	return s.verification == VerificationPending
}

// CanBill returns true when the outcome may be marked billed
func (s OutcomeState) CanBill() bool {
	return s.billing == BillingReady
}

// IsTerminal returns true for billed and rejected states
func (s OutcomeState) IsTerminal() bool {
	return s.billing == BillingBilled || s.billing == BillingRejected
}

// String returns "verification/billing"
func (s OutcomeState) String() string {
	return string(s.verification) + "/" + string(s.billing)
}

// OutcomeMetric is the record of a single business outcome. It is created
// once, with its fee computed from a configuration snapshot at record time,
// and mutated only by verification and bulk billing-mark operations.
type OutcomeMetric struct {
	shared.OrgAggregateRoot
	ModelID          uuid.UUID
	OutcomeType      string
	OutcomeValue     decimal.Decimal
	Currency         valueobject.Currency
	AttributionStart time.Time
	AttributionEnd   time.Time
	State            OutcomeState
	CalculatedFee    decimal.Decimal
	TierApplied      *string
	BonusApplied     decimal.Decimal
	VerifiedBy       *string
	VerifiedAt       *time.Time
	BillingPeriod    *string
}

// NewOutcomeMetric records a new outcome. When the configuration does not
// require verification the metric starts out verified and billable.
func NewOutcomeMetric(
	orgID uuid.UUID,
	modelID uuid.UUID,
	outcomeType string,
	outcomeValue decimal.Decimal,
	currency valueobject.Currency,
	attributionWindowDays int,
	requiresVerification bool,
) (*OutcomeMetric, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if outcomeType == "" {
		return nil, shared.NewDomainError("INVALID_OUTCOME_TYPE", "Outcome type cannot be empty")
	}
	if outcomeValue.IsNegative() {
		return nil, shared.NewDomainError("INVALID_OUTCOME_VALUE", "Outcome value cannot be negative")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	state := StatePendingVerification()
	if !requiresVerification {
		state = StateVerified()
	}

	now := time.Now()
	return &OutcomeMetric{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		ModelID:          modelID,
		OutcomeType:      outcomeType,
		OutcomeValue:     outcomeValue,
		Currency:         currency,
		AttributionStart: now.AddDate(0, 0, -attributionWindowDays),
		AttributionEnd:   now,
		State:            state,
		CalculatedFee:    decimal.Zero,
		BonusApplied:     decimal.Zero,
	}, nil
}

// SetCalculation records the fee, applied tier, and reported bonus computed
// at record time. The bonus is reported alongside the fee and is never part
// of the fee itself.
func (m *OutcomeMetric) SetCalculation(fee decimal.Decimal, tierApplied *string, bonus decimal.Decimal) {
	m.CalculatedFee = fee
	m.TierApplied = tierApplied
	m.BonusApplied = bonus
	m.UpdatedAt = time.Now()
}

// Verify confirms the outcome and makes it billable
func (m *OutcomeMetric) Verify(verifier string, at time.Time) error {
	if !m.State.IsPending() {
		return shared.ErrInvalidState
	}
	m.State = StateVerified()
	m.VerifiedBy = &verifier
	m.VerifiedAt = &at
	m.UpdatedAt = time.Now()
	return nil
}

// Reject moves the outcome to its terminal rejected state and zeroes the
// calculated fee. Rejection is a normal lifecycle transition, not an error.
func (m *OutcomeMetric) Reject(verifier string, at time.Time) error {
	if m.State.IsTerminal() {
		return shared.ErrInvalidState
	}
	m.State = StateRejected()
	m.CalculatedFee = decimal.Zero
	m.VerifiedBy = &verifier
	m.VerifiedAt = &at
	m.UpdatedAt = time.Now()
	return nil
}

// MarkBilled stamps the billing period and moves the outcome to billed.
// Returns false without modifying the metric when it is not currently
// billable; callers bulk-marking ids treat that as a no-op, not an error.
func (m *OutcomeMetric) MarkBilled(period string) bool {
	if !m.State.CanBill() {
		return false
	}
	m.State = StateBilled()
	m.BillingPeriod = &period
	m.UpdatedAt = time.Now()
	return true
}
