package testutil

import (
	"context"
	"net/http"
	"testing"

	"github.com/agentbill/backend/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTestDB(t *testing.T) {
	db := NewTestDB(t)

	for _, table := range []string{"billing_models", "outcome_metrics", "outcome_verification_rules", "cost_entries"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestFixturesRoundTrip(t *testing.T) {
	db := NewTestDB(t)
	repo := persistence.NewGormBillingModelRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	model := NewOutcomeModel(t, orgID, "resolved_ticket", "5", true)
	require.NoError(t, repo.Save(ctx, model))

	found, err := repo.FindByIDForOrg(ctx, orgID, model.ID)
	require.NoError(t, err)
	require.Len(t, found.Outcomes, 1)
	assert.Equal(t, "resolved_ticket", found.Outcomes[0].OutcomeType)
	assert.True(t, found.Outcomes[0].RequiresVerification)
}

func TestPerformRequest(t *testing.T) {
	engine := gin.New()
	engine.POST("/echo", func(c *gin.Context) {
		var body map[string]interface{}
		require.NoError(t, c.ShouldBindJSON(&body))
		c.JSON(http.StatusOK, gin.H{"success": true, "data": body, "org": c.GetHeader(OrgHeader)})
	})

	w := PerformRequest(t, engine, http.MethodPost, "/echo", "org-1", map[string]interface{}{"k": "v"})
	RequireStatus(t, w, http.StatusOK)

	data := DecodeEnvelope(t, w)
	assert.Equal(t, "v", data["k"])
}
