package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/domain/shared"
	"github.com/agentbill/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordOutcomeInput contains input for recording a business outcome
type RecordOutcomeInput struct {
	OrgID        uuid.UUID
	ModelID      uuid.UUID
	OutcomeType  string
	OutcomeValue decimal.Decimal
	Currency     valueobject.Currency
}

// VerifyOutcomeInput contains input for verifying a recorded outcome
type VerifyOutcomeInput struct {
	OrgID    uuid.UUID
	MetricID uuid.UUID
	// Requested is the caller's desired verification outcome. A violated
	// minimum-value rule overrides it and forces rejection.
	Requested billing.VerificationStatus
	Verifier  string
}

// VerifyOutcomeResult pairs the updated metric with the rule evaluation
type VerifyOutcomeResult struct {
	Metric     *billing.OutcomeMetric
	Evaluation billing.Evaluation
}

// MarkBilledResult reports which ids transitioned and which were skipped
type MarkBilledResult struct {
	BilledIDs  []uuid.UUID `json:"billed_ids"`
	SkippedIDs []uuid.UUID `json:"skipped_ids,omitempty"`
}

// OutcomeService owns the outcome metric lifecycle: recording with a fee
// computed from a configuration snapshot, verification against configured
// rules, and bulk billing marks.
type OutcomeService struct {
	snapshots  SnapshotProvider
	metricRepo billing.OutcomeMetricRepository
	ruleRepo   billing.VerificationRuleRepository
	logger     *zap.Logger
}

// NewOutcomeService creates a new OutcomeService
func NewOutcomeService(
	snapshots SnapshotProvider,
	metricRepo billing.OutcomeMetricRepository,
	ruleRepo billing.VerificationRuleRepository,
	logger *zap.Logger,
) *OutcomeService {
	return &OutcomeService{
		snapshots:  snapshots,
		metricRepo: metricRepo,
		ruleRepo:   ruleRepo,
		logger:     logger,
	}
}

// RecordOutcome creates an outcome metric with its fee, applied tier, and
// reported bonus computed once, from the configuration snapshot taken at
// record time. A recorded outcome names its type, so the fee comes from the
// matched configuration alone; on a hybrid model neither the base fee nor
// any other sub-config joins a per-outcome fee.
func (s *OutcomeService) RecordOutcome(ctx context.Context, input RecordOutcomeInput) (*billing.OutcomeMetric, error) {
	snapshot, err := s.snapshots.Snapshot(ctx, input.OrgID, input.ModelID)
	if err != nil {
		return nil, err
	}

	cfg := snapshot.OutcomeConfigForType(input.OutcomeType)
	if cfg == nil {
		return nil, shared.NewConfigurationError("CONFIG_MISSING",
			fmt.Sprintf("No outcome configuration for type %q", input.OutcomeType))
	}

	currency := input.Currency
	if currency == "" {
		currency = snapshot.Currency
	}

	metric, err := billing.NewOutcomeMetric(
		input.OrgID,
		snapshot.ID,
		input.OutcomeType,
		input.OutcomeValue,
		currency,
		cfg.AttributionWindowDays,
		cfg.RequiresVerification,
	)
	if err != nil {
		return nil, err
	}

	metric.SetCalculation(cfg.FeeFor(input.OutcomeValue), cfg.AppliedTier(input.OutcomeValue), cfg.BonusFor(input.OutcomeValue))

	if err := s.metricRepo.Save(ctx, metric); err != nil {
		return nil, err
	}

	s.logger.Info("Outcome recorded",
		zap.String("org_id", input.OrgID.String()),
		zap.String("metric_id", metric.ID.String()),
		zap.String("outcome_type", input.OutcomeType),
		zap.String("fee", metric.CalculatedFee.String()),
		zap.String("state", metric.State.String()))

	return metric, nil
}

// VerifyOutcome evaluates every applicable verification rule and advances
// the metric's state. Any violated minimum-value rule forces rejection and
// zeroes the fee, regardless of the requested status; maximum-value
// violations are reported as warnings only.
func (s *OutcomeService) VerifyOutcome(ctx context.Context, input VerifyOutcomeInput) (*VerifyOutcomeResult, error) {
	metric, err := s.metricRepo.FindByIDForOrg(ctx, input.OrgID, input.MetricID)
	if err != nil {
		return nil, err
	}
	if metric == nil {
		return nil, shared.ErrNotFound
	}

	rules, err := s.ruleRepo.FindForOutcomeType(ctx, input.OrgID, metric.OutcomeType)
	if err != nil {
		return nil, err
	}

	eval := billing.EvaluateRules(metric, rules)
	now := time.Now()

	switch {
	case !eval.IsValid:
		err = metric.Reject(input.Verifier, now)
	case input.Requested == billing.VerificationRejected:
		err = metric.Reject(input.Verifier, now)
	default:
		err = metric.Verify(input.Verifier, now)
	}
	if err != nil {
		return nil, err
	}

	if err := s.metricRepo.Save(ctx, metric); err != nil {
		return nil, err
	}

	if len(eval.Warnings) > 0 {
		s.logger.Warn("Outcome verified with warnings",
			zap.String("metric_id", metric.ID.String()),
			zap.Int("warnings", len(eval.Warnings)))
	}
	s.logger.Info("Outcome verification completed",
		zap.String("org_id", input.OrgID.String()),
		zap.String("metric_id", metric.ID.String()),
		zap.String("state", metric.State.String()))

	return &VerifyOutcomeResult{Metric: metric, Evaluation: eval}, nil
}

// MarkOutcomesBilled bulk-transitions exactly the supplied ids that are
// currently ready for billing, stamping the billing period. Ids not
// currently ready (or not found) are left untouched and reported as
// skipped; that is not an error.
func (s *OutcomeService) MarkOutcomesBilled(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID, period string) (*MarkBilledResult, error) {
	if period == "" {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Billing period cannot be empty")
	}

	metrics, err := s.metricRepo.FindByIDsForOrg(ctx, orgID, ids)
	if err != nil {
		return nil, err
	}

	found := make(map[uuid.UUID]bool, len(metrics))
	result := &MarkBilledResult{}
	changed := make([]*billing.OutcomeMetric, 0, len(metrics))

	for i := range metrics {
		metric := &metrics[i]
		found[metric.ID] = true
		if metric.MarkBilled(period) {
			result.BilledIDs = append(result.BilledIDs, metric.ID)
			changed = append(changed, metric)
		} else {
			result.SkippedIDs = append(result.SkippedIDs, metric.ID)
		}
	}
	for _, id := range ids {
		if !found[id] {
			result.SkippedIDs = append(result.SkippedIDs, id)
		}
	}

	if len(changed) > 0 {
		if err := s.metricRepo.SaveAll(ctx, changed); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Outcomes marked billed",
		zap.String("org_id", orgID.String()),
		zap.String("period", period),
		zap.Int("billed", len(result.BilledIDs)),
		zap.Int("skipped", len(result.SkippedIDs)))

	return result, nil
}

// ListOutcomesByBillingStatus returns the organization's outcome metrics in
// the given billing status
func (s *OutcomeService) ListOutcomesByBillingStatus(
	ctx context.Context,
	orgID uuid.UUID,
	status billing.BillingStatus,
	filter shared.Filter,
) ([]billing.OutcomeMetric, error) {
	return s.metricRepo.FindByBillingStatusForOrg(ctx, orgID, status, filter)
}
