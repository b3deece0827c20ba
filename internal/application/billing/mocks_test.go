package billing

import (
	"context"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// snapshotProviderStub serves a fixed snapshot without caching
type snapshotProviderStub struct {
	snapshot billing.ModelSnapshot
	err      error
}

func (s *snapshotProviderStub) Snapshot(ctx context.Context, orgID, modelID uuid.UUID) (billing.ModelSnapshot, error) {
	if s.err != nil {
		return billing.ModelSnapshot{}, s.err
	}
	return s.snapshot, nil
}

// mockOutcomeMetricRepo is a mock implementation of billing.OutcomeMetricRepository
type mockOutcomeMetricRepo struct {
	mock.Mock
}

func (m *mockOutcomeMetricRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.OutcomeMetric, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.OutcomeMetric), args.Error(1)
}

func (m *mockOutcomeMetricRepo) FindAll(ctx context.Context, filter shared.Filter) ([]billing.OutcomeMetric, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.OutcomeMetric), args.Error(1)
}

func (m *mockOutcomeMetricRepo) Save(ctx context.Context, metric *billing.OutcomeMetric) error {
	args := m.Called(ctx, metric)
	return args.Error(0)
}

func (m *mockOutcomeMetricRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutcomeMetricRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOutcomeMetricRepo) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.OutcomeMetric, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.OutcomeMetric), args.Error(1)
}

func (m *mockOutcomeMetricRepo) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]billing.OutcomeMetric, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.OutcomeMetric), args.Error(1)
}

func (m *mockOutcomeMetricRepo) FindByIDsForOrg(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]billing.OutcomeMetric, error) {
	args := m.Called(ctx, orgID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.OutcomeMetric), args.Error(1)
}

func (m *mockOutcomeMetricRepo) FindByBillingStatusForOrg(ctx context.Context, orgID uuid.UUID, status billing.BillingStatus, filter shared.Filter) ([]billing.OutcomeMetric, error) {
	args := m.Called(ctx, orgID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.OutcomeMetric), args.Error(1)
}

func (m *mockOutcomeMetricRepo) SaveAll(ctx context.Context, metrics []*billing.OutcomeMetric) error {
	args := m.Called(ctx, metrics)
	return args.Error(0)
}

// mockVerificationRuleRepo is a mock implementation of billing.VerificationRuleRepository
type mockVerificationRuleRepo struct {
	mock.Mock
}

func (m *mockVerificationRuleRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.OutcomeVerificationRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.OutcomeVerificationRule), args.Error(1)
}

func (m *mockVerificationRuleRepo) FindAll(ctx context.Context, filter shared.Filter) ([]billing.OutcomeVerificationRule, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.OutcomeVerificationRule), args.Error(1)
}

func (m *mockVerificationRuleRepo) Save(ctx context.Context, rule *billing.OutcomeVerificationRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *mockVerificationRuleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockVerificationRuleRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockVerificationRuleRepo) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.OutcomeVerificationRule, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.OutcomeVerificationRule), args.Error(1)
}

func (m *mockVerificationRuleRepo) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]billing.OutcomeVerificationRule, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.OutcomeVerificationRule), args.Error(1)
}

func (m *mockVerificationRuleRepo) FindForOutcomeType(ctx context.Context, orgID uuid.UUID, outcomeType string) ([]billing.OutcomeVerificationRule, error) {
	args := m.Called(ctx, orgID, outcomeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.OutcomeVerificationRule), args.Error(1)
}

// mockCostEntryRepo is a mock implementation of billing.CostEntryRepository
type mockCostEntryRepo struct {
	mock.Mock
}

func (m *mockCostEntryRepo) Save(ctx context.Context, entry *billing.CostEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockCostEntryRepo) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]billing.CostEntry, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.CostEntry), args.Error(1)
}

// mockBillingModelRepo is a mock implementation of billing.BillingModelRepository
type mockBillingModelRepo struct {
	mock.Mock
}

func (m *mockBillingModelRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.BillingModel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.BillingModel), args.Error(1)
}

func (m *mockBillingModelRepo) FindAll(ctx context.Context, filter shared.Filter) ([]billing.BillingModel, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.BillingModel), args.Error(1)
}

func (m *mockBillingModelRepo) Save(ctx context.Context, model *billing.BillingModel) error {
	args := m.Called(ctx, model)
	return args.Error(0)
}

func (m *mockBillingModelRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockBillingModelRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockBillingModelRepo) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.BillingModel, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.BillingModel), args.Error(1)
}

func (m *mockBillingModelRepo) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]billing.BillingModel, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.BillingModel), args.Error(1)
}

func (m *mockBillingModelRepo) FindActiveForOrg(ctx context.Context, orgID uuid.UUID) ([]billing.BillingModel, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.BillingModel), args.Error(1)
}

// mockSnapshotInvalidator is a mock implementation of SnapshotInvalidator
type mockSnapshotInvalidator struct {
	mock.Mock
}

func (m *mockSnapshotInvalidator) Invalidate(ctx context.Context, orgID, modelID uuid.UUID) error {
	args := m.Called(ctx, orgID, modelID)
	return args.Error(0)
}
