package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHealth struct {
	healthy    bool
	components map[string]bool
}

func (s stubHealth) IsHealthy() bool             { return s.healthy }
func (s stubHealth) Components() map[string]bool { return s.components }

func TestCheckHealth(t *testing.T) {
	cases := []struct {
		name   string
		health ServiceHealth
		want   string
	}{
		{"healthy", stubHealth{true, map[string]bool{"store": true, "oracle": false}}, "healthy"},
		{"unhealthy", stubHealth{false, map[string]bool{"store": false}}, "unhealthy"},
		{"unbound", nil, "unhealthy"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			NewHealthHandler(tc.health).CheckHealth(rr, httptest.NewRequest("GET", "/api/health", nil))

			require.Equal(t, http.StatusOK, rr.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.want, body["status"])
			assert.NotEmpty(t, body["timestamp"])
		})
	}
}

func TestCheckHealth_ReportsComponents(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler(stubHealth{true, map[string]bool{"store": true, "oracle": false}}).
		CheckHealth(rr, httptest.NewRequest("GET", "/api/health", nil))

	var body struct {
		Components map[string]bool `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, map[string]bool{"store": true, "oracle": false}, body.Components)
}
