package billing

import (
	"context"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/domain/shared"
	"github.com/agentbill/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SnapshotInvalidator drops a cached snapshot after its source model
// changes. A nil invalidator disables invalidation.
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context, orgID, modelID uuid.UUID) error
}

// CreateModelInput contains input for creating a billing model
type CreateModelInput struct {
	OrgID      uuid.UUID
	Name       string
	Kind       billing.ModelKind
	Currency   valueobject.Currency
	Agent      *billing.AgentConfig
	Activities []billing.ActivityConfig
	Outcomes   []billing.OutcomeConfig
	Workflow   *billing.WorkflowConfig
	Hybrid     *billing.HybridConfig
}

// ModelService manages billing model configurations
type ModelService struct {
	modelRepo   billing.BillingModelRepository
	invalidator SnapshotInvalidator
	logger      *zap.Logger
}

// NewModelService creates a new ModelService
func NewModelService(
	modelRepo billing.BillingModelRepository,
	invalidator SnapshotInvalidator,
	logger *zap.Logger,
) *ModelService {
	return &ModelService{
		modelRepo:   modelRepo,
		invalidator: invalidator,
		logger:      logger,
	}
}

// CreateModel creates a new billing model. The configuration payload
// matching the declared kind must be present; payloads for other kinds may
// be attached but are never consulted.
func (s *ModelService) CreateModel(ctx context.Context, input CreateModelInput) (*billing.BillingModel, error) {
	model, err := billing.NewBillingModel(input.OrgID, input.Name, input.Kind)
	if err != nil {
		return nil, err
	}
	model.WithCurrency(input.Currency)

	if input.Agent != nil {
		model.WithAgentConfig(*input.Agent)
	}
	if len(input.Activities) > 0 {
		model.WithActivityConfigs(input.Activities...)
	}
	if len(input.Outcomes) > 0 {
		model.WithOutcomeConfigs(input.Outcomes...)
	}
	if input.Workflow != nil {
		model.WithWorkflowConfig(*input.Workflow)
	}
	if input.Hybrid != nil {
		model.WithHybridConfig(*input.Hybrid)
	}

	if err := validateKindConfig(model); err != nil {
		return nil, err
	}

	if err := s.modelRepo.Save(ctx, model); err != nil {
		return nil, err
	}

	s.logger.Info("Billing model created",
		zap.String("org_id", input.OrgID.String()),
		zap.String("model_id", model.ID.String()),
		zap.String("kind", model.Kind.String()))

	return model, nil
}

// GetModel returns the organization's billing model by id
func (s *ModelService) GetModel(ctx context.Context, orgID, modelID uuid.UUID) (*billing.BillingModel, error) {
	return s.modelRepo.FindByIDForOrg(ctx, orgID, modelID)
}

// ListModels returns the organization's billing models with pagination
func (s *ModelService) ListModels(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (shared.Paginated[billing.BillingModel], error) {
	models, err := s.modelRepo.FindAllForOrg(ctx, orgID, filter)
	if err != nil {
		return shared.Paginated[billing.BillingModel]{}, err
	}

	total, err := s.modelRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[billing.BillingModel]{}, err
	}

	return shared.NewPaginated(models, total, filter.Page, filter.PageSize), nil
}

// ListActiveModels returns all active billing models for the organization
func (s *ModelService) ListActiveModels(ctx context.Context, orgID uuid.UUID) ([]billing.BillingModel, error) {
	return s.modelRepo.FindActiveForOrg(ctx, orgID)
}

// SetModelActive activates or deactivates a billing model and drops its
// cached snapshot
func (s *ModelService) SetModelActive(ctx context.Context, orgID, modelID uuid.UUID, active bool) (*billing.BillingModel, error) {
	model, err := s.modelRepo.FindByIDForOrg(ctx, orgID, modelID)
	if err != nil {
		return nil, err
	}

	if active {
		model.Activate()
	} else {
		model.Deactivate()
	}

	if err := s.modelRepo.Save(ctx, model); err != nil {
		return nil, err
	}
	s.invalidateSnapshot(ctx, orgID, modelID)

	return model, nil
}

// DeleteModel removes a billing model and drops its cached snapshot.
// Recorded outcome metrics and cost entries keep their copied values and
// are unaffected.
func (s *ModelService) DeleteModel(ctx context.Context, orgID, modelID uuid.UUID) error {
	if _, err := s.modelRepo.FindByIDForOrg(ctx, orgID, modelID); err != nil {
		return err
	}
	if err := s.modelRepo.Delete(ctx, modelID); err != nil {
		return err
	}
	s.invalidateSnapshot(ctx, orgID, modelID)

	s.logger.Info("Billing model deleted",
		zap.String("org_id", orgID.String()),
		zap.String("model_id", modelID.String()))
	return nil
}

func (s *ModelService) invalidateSnapshot(ctx context.Context, orgID, modelID uuid.UUID) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, orgID, modelID); err != nil {
		s.logger.Warn("Failed to invalidate snapshot cache",
			zap.String("org_id", orgID.String()),
			zap.String("model_id", modelID.String()),
			zap.Error(err))
	}
}

// validateKindConfig checks that the configuration payload matching the
// model's kind is attached
func validateKindConfig(model *billing.BillingModel) error {
	missing := false
	switch model.Kind {
	case billing.ModelKindAgent:
		missing = model.Agent == nil
	case billing.ModelKindActivity:
		missing = len(model.Activities) == 0
	case billing.ModelKindOutcome:
		missing = len(model.Outcomes) == 0
	case billing.ModelKindWorkflow:
		missing = model.Workflow == nil
	case billing.ModelKindHybrid:
		missing = model.Hybrid == nil
	}
	if missing {
		return shared.NewConfigurationError("CONFIG_MISSING",
			"Billing model has no configuration for its kind")
	}
	return nil
}
