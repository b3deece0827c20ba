package billing

import (
	"context"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/domain/shared"
	"github.com/agentbill/backend/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CostCalculator computes charges from a model snapshot and usage data.
// Implemented by the pricing calculator; deterministic and side-effect free.
type CostCalculator interface {
	Calculate(ctx context.Context, snapshot billing.ModelSnapshot, usage billing.UsageData, selector strategy.ConfigSelector) (strategy.CostResult, error)
	CalculateCost(ctx context.Context, snapshot billing.ModelSnapshot, usage billing.UsageData) (decimal.Decimal, error)
}

// SnapshotProvider resolves an immutable billing-model snapshot for an
// organization's model, typically through a cache in front of the repository
type SnapshotProvider interface {
	Snapshot(ctx context.Context, orgID, modelID uuid.UUID) (billing.ModelSnapshot, error)
}

// CostResultDTO is the outcome of one cost calculation
type CostResultDTO struct {
	EntryID      uuid.UUID       `json:"entry_id"`
	ModelID      uuid.UUID       `json:"model_id"`
	ModelKind    string          `json:"model_kind"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	AppliedRules []string        `json:"applied_rules,omitempty"`
}

// CalculationService turns usage data into persisted cost ledger entries.
// The calculation itself is pure; this service adds snapshot resolution,
// ledger persistence, and logging around it.
type CalculationService struct {
	snapshots  SnapshotProvider
	calculator CostCalculator
	costRepo   billing.CostEntryRepository
	logger     *zap.Logger
}

// NewCalculationService creates a new CalculationService
func NewCalculationService(
	snapshots SnapshotProvider,
	calculator CostCalculator,
	costRepo billing.CostEntryRepository,
	logger *zap.Logger,
) *CalculationService {
	return &CalculationService{
		snapshots:  snapshots,
		calculator: calculator,
		costRepo:   costRepo,
		logger:     logger,
	}
}

// CalculateCost prices the usage data against the organization's billing
// model and writes a cost ledger entry for the resulting amount
func (s *CalculationService) CalculateCost(
	ctx context.Context,
	orgID, modelID uuid.UUID,
	usage billing.UsageData,
) (*CostResultDTO, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}

	snapshot, err := s.snapshots.Snapshot(ctx, orgID, modelID)
	if err != nil {
		return nil, err
	}
	if !snapshot.IsActive {
		return nil, shared.NewDomainError("MODEL_INACTIVE", "Billing model is not active")
	}

	result, err := s.calculator.Calculate(ctx, snapshot, usage, strategy.SelectorSumActive)
	if err != nil {
		return nil, err
	}

	entry, err := billing.NewCostEntry(orgID, snapshot.ID, snapshot.Kind, result.Amount, snapshot.Currency, usage)
	if err != nil {
		return nil, err
	}
	entry.WithDescription(snapshot.Name)

	if err := s.costRepo.Save(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("Cost calculated",
		zap.String("org_id", orgID.String()),
		zap.String("model_id", modelID.String()),
		zap.String("model_kind", snapshot.Kind.String()),
		zap.String("amount", result.Amount.String()),
		zap.Strings("applied_rules", result.AppliedRules))

	return &CostResultDTO{
		EntryID:      entry.ID,
		ModelID:      snapshot.ID,
		ModelKind:    snapshot.Kind.String(),
		Amount:       result.Amount,
		Currency:     string(snapshot.Currency),
		AppliedRules: result.AppliedRules,
	}, nil
}

// PreviewCost prices the usage data without writing a ledger entry
func (s *CalculationService) PreviewCost(
	ctx context.Context,
	orgID, modelID uuid.UUID,
	usage billing.UsageData,
) (*CostResultDTO, error) {
	snapshot, err := s.snapshots.Snapshot(ctx, orgID, modelID)
	if err != nil {
		return nil, err
	}

	result, err := s.calculator.Calculate(ctx, snapshot, usage, strategy.SelectorSumActive)
	if err != nil {
		return nil, err
	}

	return &CostResultDTO{
		ModelID:      snapshot.ID,
		ModelKind:    snapshot.Kind.String(),
		Amount:       result.Amount,
		Currency:     string(snapshot.Currency),
		AppliedRules: result.AppliedRules,
	}, nil
}
