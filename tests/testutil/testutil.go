// Package testutil provides common test utilities for the billing backend:
// in-memory database setup, billing model fixtures, and HTTP test helpers.
package testutil

import (
	"testing"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewTestDB creates an in-memory SQLite database with the billing schema.
// Each call returns an isolated database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "Failed to open in-memory database")

	err = db.AutoMigrate(
		&persistence.BillingModelModel{},
		&persistence.OutcomeMetricModel{},
		&persistence.VerificationRuleModel{},
		&persistence.CostEntryModel{},
	)
	require.NoError(t, err, "Failed to migrate billing schema")

	return db
}

// Dec parses a decimal literal, failing the test on malformed input
func Dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err, "Invalid decimal literal %q", s)
	return d
}

// NewAgentModel builds an active agent-based billing model fixture
func NewAgentModel(t *testing.T, orgID uuid.UUID, baseFee string) *billing.BillingModel {
	t.Helper()

	model, err := billing.NewBillingModel(orgID, "Agent Plan", billing.ModelKindAgent)
	require.NoError(t, err)
	model.WithAgentConfig(billing.AgentConfig{
		BaseFee:          Dec(t, baseFee),
		BillingFrequency: billing.BillingFrequencyMonthly,
	})
	return model
}

// NewActivityModel builds an active activity-based billing model fixture
// with a single per-unit priced activity type
func NewActivityModel(t *testing.T, orgID uuid.UUID, activityType, pricePerUnit string) *billing.BillingModel {
	t.Helper()

	model, err := billing.NewBillingModel(orgID, "Activity Plan", billing.ModelKindActivity)
	require.NoError(t, err)
	model.WithActivityConfigs(billing.ActivityConfig{
		ActivityType: activityType,
		PricePerUnit: Dec(t, pricePerUnit),
		IsActive:     true,
	})
	return model
}

// NewOutcomeModel builds an active outcome-based billing model fixture
// charging a percentage of the outcome value
func NewOutcomeModel(t *testing.T, orgID uuid.UUID, outcomeType, percentage string, requiresVerification bool) *billing.BillingModel {
	t.Helper()

	model, err := billing.NewBillingModel(orgID, "Outcome Plan", billing.ModelKindOutcome)
	require.NoError(t, err)
	model.WithOutcomeConfigs(billing.OutcomeConfig{
		OutcomeType:           outcomeType,
		Percentage:            Dec(t, percentage),
		AttributionWindowDays: 30,
		RequiresVerification:  requiresVerification,
	})
	return model
}
