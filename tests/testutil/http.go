package testutil

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// OrgHeader is the header carrying the organization scope on API requests
const OrgHeader = "X-Org-ID"

// PerformRequest sends a JSON request through the engine and returns the
// recorded response. An empty orgID leaves the org header unset.
func PerformRequest(t *testing.T, engine *gin.Engine, method, path, orgID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err, "Failed to marshal request body")
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if orgID != "" {
		req.Header.Set(OrgHeader, orgID)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// DecodeEnvelope unmarshals the standard response envelope and returns the
// data payload as a generic map
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var envelope struct {
		Success bool                   `json:"success"`
		Data    json.RawMessage        `json:"data"`
		Error   map[string]interface{} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), "Response is not a valid envelope")

	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(envelope.Data, &data), "Envelope data is not an object")
	return data
}

// DecodeError returns the error block of a failed response envelope
func DecodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var envelope struct {
		Success bool                   `json:"success"`
		Error   map[string]interface{} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), "Response is not a valid envelope")
	require.False(t, envelope.Success, "Expected an error envelope, got success")
	return envelope.Error
}

// RequireStatus asserts the response status, printing the body on mismatch
func RequireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "unexpected status, body: %s", w.Body.String())
}
