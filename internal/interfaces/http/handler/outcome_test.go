package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	appbilling "github.com/agentbill/backend/internal/application/billing"
	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/domain/shared"
	"github.com/agentbill/backend/internal/infrastructure/strategy/pricing"
	"github.com/agentbill/backend/internal/interfaces/http/dto"
	"github.com/agentbill/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// stubSnapshotProvider serves a fixed snapshot
type stubSnapshotProvider struct {
	snapshot billing.ModelSnapshot
	err      error
}

func (s *stubSnapshotProvider) Snapshot(ctx context.Context, orgID, modelID uuid.UUID) (billing.ModelSnapshot, error) {
	if s.err != nil {
		return billing.ModelSnapshot{}, s.err
	}
	return s.snapshot, nil
}

// MockOutcomeMetricRepository implements billing.OutcomeMetricRepository for testing
type MockOutcomeMetricRepository struct {
	mock.Mock
}

func (m *MockOutcomeMetricRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.OutcomeMetric, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.OutcomeMetric), args.Error(1)
}

func (m *MockOutcomeMetricRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.OutcomeMetric, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.OutcomeMetric), args.Error(1)
}

func (m *MockOutcomeMetricRepository) Save(ctx context.Context, metric *billing.OutcomeMetric) error {
	args := m.Called(ctx, metric)
	return args.Error(0)
}

func (m *MockOutcomeMetricRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutcomeMetricRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOutcomeMetricRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.OutcomeMetric, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.OutcomeMetric), args.Error(1)
}

func (m *MockOutcomeMetricRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]billing.OutcomeMetric, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.OutcomeMetric), args.Error(1)
}

func (m *MockOutcomeMetricRepository) FindByIDsForOrg(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]billing.OutcomeMetric, error) {
	args := m.Called(ctx, orgID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.OutcomeMetric), args.Error(1)
}

func (m *MockOutcomeMetricRepository) FindByBillingStatusForOrg(ctx context.Context, orgID uuid.UUID, status billing.BillingStatus, filter shared.Filter) ([]billing.OutcomeMetric, error) {
	args := m.Called(ctx, orgID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.OutcomeMetric), args.Error(1)
}

func (m *MockOutcomeMetricRepository) SaveAll(ctx context.Context, metrics []*billing.OutcomeMetric) error {
	args := m.Called(ctx, metrics)
	return args.Error(0)
}

// MockVerificationRuleRepository implements billing.VerificationRuleRepository for testing
type MockVerificationRuleRepository struct {
	mock.Mock
}

func (m *MockVerificationRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.OutcomeVerificationRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.OutcomeVerificationRule), args.Error(1)
}

func (m *MockVerificationRuleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.OutcomeVerificationRule, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.OutcomeVerificationRule), args.Error(1)
}

func (m *MockVerificationRuleRepository) Save(ctx context.Context, rule *billing.OutcomeVerificationRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockVerificationRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVerificationRuleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVerificationRuleRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.OutcomeVerificationRule, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.OutcomeVerificationRule), args.Error(1)
}

func (m *MockVerificationRuleRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]billing.OutcomeVerificationRule, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.OutcomeVerificationRule), args.Error(1)
}

func (m *MockVerificationRuleRepository) FindForOutcomeType(ctx context.Context, orgID uuid.UUID, outcomeType string) ([]billing.OutcomeVerificationRule, error) {
	args := m.Called(ctx, orgID, outcomeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.OutcomeVerificationRule), args.Error(1)
}

func outcomeTestSnapshot(t *testing.T, orgID uuid.UUID) billing.ModelSnapshot {
	model, err := billing.NewBillingModel(orgID, "Outcome Plan", billing.ModelKindOutcome)
	require.NoError(t, err)
	model.WithOutcomeConfigs(billing.OutcomeConfig{
		OutcomeType:           "resolved_ticket",
		Percentage:            decimal.RequireFromString("5"),
		AttributionWindowDays: 30,
		RequiresVerification:  false,
	})
	return model.Snapshot()
}

func newOutcomeHandler(snapshot billing.ModelSnapshot, metricRepo billing.OutcomeMetricRepository, ruleRepo billing.VerificationRuleRepository) *OutcomeHandler {
	service := appbilling.NewOutcomeService(
		&stubSnapshotProvider{snapshot: snapshot},
		metricRepo,
		ruleRepo,
		zap.NewNop(),
	)
	return NewOutcomeHandler(service)
}

func TestOutcomeHandler_Record(t *testing.T) {
	orgID := uuid.New()
	snapshot := outcomeTestSnapshot(t, orgID)

	t.Run("records outcome with computed fee", func(t *testing.T) {
		metricRepo := new(MockOutcomeMetricRepository)
		metricRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.OutcomeMetric")).Return(nil)
		h := newOutcomeHandler(snapshot, metricRepo, new(MockVerificationRuleRepository))

		body := []byte(`{
			"model_id": "` + snapshot.ID.String() + `",
			"outcome_type": "resolved_ticket",
			"outcome_value": "1000"
		}`)
		w := performRequest(h.Record, http.MethodPost, "/outcomes", orgID.String(), body)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})

		// 5% of 1000, no verification required -> immediately billable
		assert.Equal(t, "50", data["calculated_fee"])
		assert.Equal(t, "verified", data["verification_status"])
		assert.Equal(t, "ready", data["billing_status"])
		metricRepo.AssertExpectations(t)
	})

	t.Run("unknown outcome type maps to 400", func(t *testing.T) {
		metricRepo := new(MockOutcomeMetricRepository)
		h := newOutcomeHandler(snapshot, metricRepo, new(MockVerificationRuleRepository))

		body := []byte(`{
			"model_id": "` + snapshot.ID.String() + `",
			"outcome_type": "unconfigured_type",
			"outcome_value": "1000"
		}`)
		w := performRequest(h.Record, http.MethodPost, "/outcomes", orgID.String(), body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeConfiguration)
	})

	t.Run("missing org context returns 401", func(t *testing.T) {
		h := newOutcomeHandler(snapshot, new(MockOutcomeMetricRepository), new(MockVerificationRuleRepository))

		body := []byte(`{"model_id": "` + snapshot.ID.String() + `", "outcome_type": "resolved_ticket", "outcome_value": "1"}`)
		w := performRequest(h.Record, http.MethodPost, "/outcomes", "", body)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOutcomeHandler_MarkBilled(t *testing.T) {
	orgID := uuid.New()
	snapshot := outcomeTestSnapshot(t, orgID)

	metric, err := billing.NewOutcomeMetric(orgID, snapshot.ID, "resolved_ticket",
		decimal.RequireFromString("1000"), "USD", 30, false)
	require.NoError(t, err)

	metricRepo := new(MockOutcomeMetricRepository)
	metricRepo.On("FindByIDsForOrg", mock.Anything, orgID, []uuid.UUID{metric.ID}).
		Return([]billing.OutcomeMetric{*metric}, nil)
	metricRepo.On("SaveAll", mock.Anything, mock.AnythingOfType("[]*billing.OutcomeMetric")).Return(nil)
	h := newOutcomeHandler(snapshot, metricRepo, new(MockVerificationRuleRepository))

	body := []byte(`{"metric_ids": ["` + metric.ID.String() + `"], "billing_period": "2026-09"}`)
	w := performRequest(h.MarkBilled, http.MethodPost, "/outcomes/mark-billed", orgID.String(), body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), metric.ID.String())
	metricRepo.AssertExpectations(t)
}

func TestCalculationHandler_Calculate(t *testing.T) {
	orgID := uuid.New()

	model, err := billing.NewBillingModel(orgID, "Agent Plan", billing.ModelKindAgent)
	require.NoError(t, err)
	model.WithAgentConfig(billing.AgentConfig{
		BaseFee:          decimal.RequireFromString("100"),
		BillingFrequency: billing.BillingFrequencyMonthly,
	})
	snapshot := model.Snapshot()

	newHandler := func(costRepo billing.CostEntryRepository) *CalculationHandler {
		service := appbilling.NewCalculationService(
			&stubSnapshotProvider{snapshot: snapshot},
			pricing.NewCalculator(),
			costRepo,
			zap.NewNop(),
		)
		return NewCalculationHandler(service)
	}

	t.Run("calculates and persists", func(t *testing.T) {
		costRepo := new(MockCostEntryRepository)
		costRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.CostEntry")).Return(nil)
		h := newHandler(costRepo)

		body := []byte(`{"model_id": "` + snapshot.ID.String() + `", "usage": {"agents": 3}}`)
		w := performRequest(h.Calculate, http.MethodPost, "/costs/calculate", orgID.String(), body)

		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "300", data["amount"])
		costRepo.AssertExpectations(t)
	})

	t.Run("preview does not persist", func(t *testing.T) {
		costRepo := new(MockCostEntryRepository)
		h := newHandler(costRepo)

		body := []byte(`{"model_id": "` + snapshot.ID.String() + `", "usage": {"agents": 3}}`)
		w := performRequest(h.Preview, http.MethodPost, "/costs/preview", orgID.String(), body)

		require.Equal(t, http.StatusOK, w.Code)
		costRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("malformed usage rejected", func(t *testing.T) {
		h := newHandler(new(MockCostEntryRepository))

		body := []byte(`{"model_id": "not-a-uuid", "usage": {}}`)
		w := performRequest(h.Calculate, http.MethodPost, "/costs/calculate", orgID.String(), body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// MockCostEntryRepository implements billing.CostEntryRepository for testing
type MockCostEntryRepository struct {
	mock.Mock
}

func (m *MockCostEntryRepository) Save(ctx context.Context, entry *billing.CostEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockCostEntryRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]billing.CostEntry, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.CostEntry), args.Error(1)
}
