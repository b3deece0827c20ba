package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetric(t *testing.T, orgID uuid.UUID, requiresVerification bool) *billing.OutcomeMetric {
	t.Helper()
	metric, err := billing.NewOutcomeMetric(orgID, uuid.New(), "sale", dec("1000"), "USD", 30, requiresVerification)
	require.NoError(t, err)
	tier := "tier_1"
	metric.SetCalculation(dec("50"), &tier, dec("12"))
	return metric
}

func TestGormOutcomeMetricRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOutcomeMetricRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("round-trips a metric with its combined state", func(t *testing.T) {
		metric := newTestMetric(t, orgID, true)
		require.NoError(t, repo.Save(ctx, metric))

		found, err := repo.FindByIDForOrg(ctx, orgID, metric.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.StatePendingVerification(), found.State)
		assert.True(t, dec("50").Equal(found.CalculatedFee))
		require.NotNil(t, found.TierApplied)
		assert.Equal(t, "tier_1", *found.TierApplied)
		assert.True(t, dec("12").Equal(found.BonusApplied))
	})

	t.Run("persists verification details", func(t *testing.T) {
		metric := newTestMetric(t, orgID, true)
		require.NoError(t, metric.Verify("ops@example.com", time.Now()))
		require.NoError(t, repo.Save(ctx, metric))

		found, err := repo.FindByID(ctx, metric.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.StateVerified(), found.State)
		require.NotNil(t, found.VerifiedBy)
		assert.Equal(t, "ops@example.com", *found.VerifiedBy)
		assert.NotNil(t, found.VerifiedAt)
	})

	t.Run("returns not found for missing metric", func(t *testing.T) {
		_, err := repo.FindByIDForOrg(ctx, orgID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormOutcomeMetricRepository_FindByIDsForOrg(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOutcomeMetricRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	first := newTestMetric(t, orgID, false)
	second := newTestMetric(t, orgID, false)
	foreign := newTestMetric(t, uuid.New(), false)
	for _, m := range []*billing.OutcomeMetric{first, second, foreign} {
		require.NoError(t, repo.Save(ctx, m))
	}

	t.Run("returns only the organization's metrics among the ids", func(t *testing.T) {
		metrics, err := repo.FindByIDsForOrg(ctx, orgID, []uuid.UUID{first.ID, foreign.ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, metrics, 1)
		assert.Equal(t, first.ID, metrics[0].ID)
	})

	t.Run("empty id list returns empty result", func(t *testing.T) {
		metrics, err := repo.FindByIDsForOrg(ctx, orgID, nil)
		require.NoError(t, err)
		assert.Empty(t, metrics)
	})
}

func TestGormOutcomeMetricRepository_FindByBillingStatusForOrg(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOutcomeMetricRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	ready := newTestMetric(t, orgID, false)
	pending := newTestMetric(t, orgID, true)
	billed := newTestMetric(t, orgID, false)
	require.True(t, billed.MarkBilled("2026-01"))
	for _, m := range []*billing.OutcomeMetric{ready, pending, billed} {
		require.NoError(t, repo.Save(ctx, m))
	}

	metrics, err := repo.FindByBillingStatusForOrg(ctx, orgID, billing.BillingReady, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, ready.ID, metrics[0].ID)

	filter := shared.DefaultFilter()
	filter.Filters["billing_period"] = "2026-01"
	metrics, err = repo.FindByBillingStatusForOrg(ctx, orgID, billing.BillingBilled, filter)
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, billed.ID, metrics[0].ID)
	require.NotNil(t, metrics[0].BillingPeriod)
	assert.Equal(t, "2026-01", *metrics[0].BillingPeriod)
}

func TestGormOutcomeMetricRepository_SaveAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOutcomeMetricRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	first := newTestMetric(t, orgID, false)
	second := newTestMetric(t, orgID, false)
	for _, m := range []*billing.OutcomeMetric{first, second} {
		require.NoError(t, repo.Save(ctx, m))
	}

	require.True(t, first.MarkBilled("2026-02"))
	require.True(t, second.MarkBilled("2026-02"))
	require.NoError(t, repo.SaveAll(ctx, []*billing.OutcomeMetric{first, second}))

	metrics, err := repo.FindByBillingStatusForOrg(ctx, orgID, billing.BillingBilled, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, metrics, 2)

	assert.NoError(t, repo.SaveAll(ctx, nil))
}

func TestGormCostEntryRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCostEntryRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	entry, err := billing.NewCostEntry(orgID, uuid.New(), billing.ModelKindAgent, dec("300"), "USD", billing.UsageData{
		billing.UsageKeyAgents: 3,
	})
	require.NoError(t, err)
	entry.WithDescription("Agent Plan")
	require.NoError(t, repo.Save(ctx, entry))

	other, err := billing.NewCostEntry(uuid.New(), uuid.New(), billing.ModelKindAgent, dec("100"), "USD", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	entries, err := repo.FindAllForOrg(ctx, orgID, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.True(t, dec("300").Equal(entries[0].Amount))
	assert.Equal(t, "Agent Plan", entries[0].Description)
	assert.Equal(t, int64(3), entries[0].Usage.Int(billing.UsageKeyAgents))
}
