package billing

import (
	"context"
	"testing"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestModelService_CreateModel(t *testing.T) {
	orgID := uuid.New()

	t.Run("creates agent model with matching config", func(t *testing.T) {
		modelRepo := new(mockBillingModelRepo)
		modelRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.BillingModel")).Return(nil)
		service := NewModelService(modelRepo, nil, zap.NewNop())

		model, err := service.CreateModel(context.Background(), CreateModelInput{
			OrgID: orgID,
			Name:  "Standard Agent Plan",
			Kind:  billing.ModelKindAgent,
			Agent: &billing.AgentConfig{
				BaseFee:          dec("100"),
				BillingFrequency: billing.BillingFrequencyMonthly,
			},
		})
		require.NoError(t, err)

		assert.Equal(t, orgID, model.OrgID)
		assert.Equal(t, billing.ModelKindAgent, model.Kind)
		assert.True(t, model.IsActive)
		require.NotNil(t, model.Agent)
		assert.True(t, model.Agent.BaseFee.Equal(dec("100")))
		modelRepo.AssertExpectations(t)
	})

	t.Run("rejects model without config for its kind", func(t *testing.T) {
		modelRepo := new(mockBillingModelRepo)
		service := NewModelService(modelRepo, nil, zap.NewNop())

		_, err := service.CreateModel(context.Background(), CreateModelInput{
			OrgID: orgID,
			Name:  "Empty Outcome Plan",
			Kind:  billing.ModelKindOutcome,
		})

		var cfgErr *shared.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "CONFIG_MISSING", cfgErr.Code)
		modelRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		modelRepo := new(mockBillingModelRepo)
		service := NewModelService(modelRepo, nil, zap.NewNop())

		_, err := service.CreateModel(context.Background(), CreateModelInput{
			OrgID: orgID,
			Name:  "Mystery Plan",
			Kind:  billing.ModelKind("subscription"),
		})

		var cfgErr *shared.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "UNSUPPORTED_MODEL_KIND", cfgErr.Code)
	})

	t.Run("rejects empty org", func(t *testing.T) {
		modelRepo := new(mockBillingModelRepo)
		service := NewModelService(modelRepo, nil, zap.NewNop())

		_, err := service.CreateModel(context.Background(), CreateModelInput{
			OrgID: uuid.Nil,
			Name:  "Orphan Plan",
			Kind:  billing.ModelKindAgent,
			Agent: &billing.AgentConfig{BaseFee: dec("10")},
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ORG", domainErr.Code)
	})
}

func TestModelService_SetModelActive(t *testing.T) {
	orgID := uuid.New()

	newModel := func(t *testing.T) *billing.BillingModel {
		model, err := billing.NewBillingModel(orgID, "Agent Plan", billing.ModelKindAgent)
		require.NoError(t, err)
		model.WithAgentConfig(billing.AgentConfig{BaseFee: dec("100")})
		return model
	}

	t.Run("deactivates model and invalidates snapshot", func(t *testing.T) {
		model := newModel(t)
		modelRepo := new(mockBillingModelRepo)
		modelRepo.On("FindByIDForOrg", mock.Anything, orgID, model.ID).Return(model, nil)
		modelRepo.On("Save", mock.Anything, model).Return(nil)
		invalidator := new(mockSnapshotInvalidator)
		invalidator.On("Invalidate", mock.Anything, orgID, model.ID).Return(nil)
		service := NewModelService(modelRepo, invalidator, zap.NewNop())

		updated, err := service.SetModelActive(context.Background(), orgID, model.ID, false)
		require.NoError(t, err)

		assert.False(t, updated.IsActive)
		invalidator.AssertExpectations(t)
	})

	t.Run("invalidation failure does not fail the update", func(t *testing.T) {
		model := newModel(t)
		modelRepo := new(mockBillingModelRepo)
		modelRepo.On("FindByIDForOrg", mock.Anything, orgID, model.ID).Return(model, nil)
		modelRepo.On("Save", mock.Anything, model).Return(nil)
		invalidator := new(mockSnapshotInvalidator)
		invalidator.On("Invalidate", mock.Anything, orgID, model.ID).Return(assert.AnError)
		service := NewModelService(modelRepo, invalidator, zap.NewNop())

		updated, err := service.SetModelActive(context.Background(), orgID, model.ID, true)
		require.NoError(t, err)
		assert.True(t, updated.IsActive)
	})

	t.Run("unknown model returns not found", func(t *testing.T) {
		modelRepo := new(mockBillingModelRepo)
		missingID := uuid.New()
		modelRepo.On("FindByIDForOrg", mock.Anything, orgID, missingID).Return(nil, shared.ErrNotFound)
		service := NewModelService(modelRepo, nil, zap.NewNop())

		_, err := service.SetModelActive(context.Background(), orgID, missingID, true)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestModelService_DeleteModel(t *testing.T) {
	orgID := uuid.New()

	t.Run("deletes model and invalidates snapshot", func(t *testing.T) {
		model, err := billing.NewBillingModel(orgID, "Agent Plan", billing.ModelKindAgent)
		require.NoError(t, err)

		modelRepo := new(mockBillingModelRepo)
		modelRepo.On("FindByIDForOrg", mock.Anything, orgID, model.ID).Return(model, nil)
		modelRepo.On("Delete", mock.Anything, model.ID).Return(nil)
		invalidator := new(mockSnapshotInvalidator)
		invalidator.On("Invalidate", mock.Anything, orgID, model.ID).Return(nil)
		service := NewModelService(modelRepo, invalidator, zap.NewNop())

		require.NoError(t, service.DeleteModel(context.Background(), orgID, model.ID))
		modelRepo.AssertExpectations(t)
		invalidator.AssertExpectations(t)
	})

	t.Run("unknown model returns not found without deleting", func(t *testing.T) {
		modelRepo := new(mockBillingModelRepo)
		missingID := uuid.New()
		modelRepo.On("FindByIDForOrg", mock.Anything, orgID, missingID).Return(nil, shared.ErrNotFound)
		service := NewModelService(modelRepo, nil, zap.NewNop())

		err := service.DeleteModel(context.Background(), orgID, missingID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		modelRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestModelService_ListModels(t *testing.T) {
	orgID := uuid.New()

	t.Run("returns paginated models", func(t *testing.T) {
		model, err := billing.NewBillingModel(orgID, "Agent Plan", billing.ModelKindAgent)
		require.NoError(t, err)

		filter := shared.DefaultFilter()
		modelRepo := new(mockBillingModelRepo)
		modelRepo.On("FindAllForOrg", mock.Anything, orgID, filter).Return([]billing.BillingModel{*model}, nil)
		modelRepo.On("Count", mock.Anything, filter).Return(int64(1), nil)
		service := NewModelService(modelRepo, nil, zap.NewNop())

		page, err := service.ListModels(context.Background(), orgID, filter)
		require.NoError(t, err)

		assert.Len(t, page.Items, 1)
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, 1, page.TotalPages)
	})

	t.Run("lists only active models", func(t *testing.T) {
		modelRepo := new(mockBillingModelRepo)
		modelRepo.On("FindActiveForOrg", mock.Anything, orgID).Return([]billing.BillingModel{}, nil)
		service := NewModelService(modelRepo, nil, zap.NewNop())

		models, err := service.ListActiveModels(context.Background(), orgID)
		require.NoError(t, err)
		assert.Empty(t, models)
	})
}
