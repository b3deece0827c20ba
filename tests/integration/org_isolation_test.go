package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/agentbill/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every read and write is scoped to the org named in the request header;
// one org must never observe or affect another org's models or charges.
func TestOrgIsolation(t *testing.T) {
	env := NewTestEnv(t)
	ctx := context.Background()
	orgA := uuid.New()
	orgB := uuid.New()

	model := testutil.NewAgentModel(t, orgA, "50")
	require.NoError(t, env.ModelRepo.Save(ctx, model))

	t.Run("cross-org reads miss", func(t *testing.T) {
		w := testutil.PerformRequest(t, env.Engine, http.MethodGet, "/api/v1/billing-models/"+model.ID.String(), orgB.String(), nil)
		testutil.RequireStatus(t, w, http.StatusNotFound)

		w = testutil.PerformRequest(t, env.Engine, http.MethodGet, "/api/v1/billing-models/"+model.ID.String(), orgA.String(), nil)
		testutil.RequireStatus(t, w, http.StatusOK)
	})

	t.Run("cross-org calculation misses", func(t *testing.T) {
		w := testutil.PerformRequest(t, env.Engine, http.MethodPost, "/api/v1/costs/calculate", orgB.String(), map[string]interface{}{
			"model_id": model.ID.String(),
			"usage":    map[string]interface{}{"agents": 1},
		})
		testutil.RequireStatus(t, w, http.StatusNotFound)
	})

	t.Run("listings stay per-org", func(t *testing.T) {
		w := testutil.PerformRequest(t, env.Engine, http.MethodGet, "/api/v1/billing-models", orgB.String(), nil)
		testutil.RequireStatus(t, w, http.StatusOK)
		var envelope struct {
			Data []interface{} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.Empty(t, envelope.Data)
	})

	t.Run("malformed org header is rejected", func(t *testing.T) {
		w := testutil.PerformRequest(t, env.Engine, http.MethodGet, "/api/v1/billing-models", "not-a-uuid", nil)
		testutil.RequireStatus(t, w, http.StatusUnauthorized)
	})
}
