package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/SentriLabs/SentriAuth/pkg/domain/threat"
	"github.com/SentriLabs/SentriAuth/pkg/infra/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedThreats(t *testing.T, threats threat.Repository) {
	t.Helper()
	ctx := context.Background()
	for ip, score := range map[string]int{
		"10.0.0.1": 20,
		"10.0.0.2": 85,
		"10.0.0.3": 55,
	} {
		score := score
		_, err := threats.Update(ctx, ip, func(rec *threat.Intelligence) {
			rec.RiskScore = score
			rec.Blocked = score >= threat.BlockThreshold
		})
		require.NoError(t, err)
	}
}

type listThreatsResponse struct {
	Threats []*threat.Intelligence `json:"threats"`
	Count   int                    `json:"count"`
}

func TestListThreatsHandler_SortsByRiskDescending(t *testing.T) {
	threats := repository.NewMemoryThreatRepository(nil)
	seedThreats(t, threats)

	handler := NewListThreatsHandler(testLogger(), threats)
	app := fiber.New()
	app.Get("/api/v1/threats", handler.Handle)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/threats", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body listThreatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, 3, body.Count)
	assert.Equal(t, "10.0.0.2", body.Threats[0].IP)
	assert.Equal(t, "10.0.0.3", body.Threats[1].IP)
	assert.Equal(t, "10.0.0.1", body.Threats[2].IP)
}

func TestListThreatsHandler_BlockedFilter(t *testing.T) {
	threats := repository.NewMemoryThreatRepository(nil)
	seedThreats(t, threats)

	handler := NewListThreatsHandler(testLogger(), threats)
	app := fiber.New()
	app.Get("/api/v1/threats", handler.Handle)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/threats?blocked=true", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body listThreatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "10.0.0.2", body.Threats[0].IP)
}

func TestGetThreatHandler(t *testing.T) {
	threats := repository.NewMemoryThreatRepository(nil)
	seedThreats(t, threats)

	handler := NewGetThreatHandler(testLogger(), threats, nil)
	app := fiber.New()
	app.Get("/api/v1/threats/:ip", handler.Handle)

	t.Run("known ip", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/threats/10.0.0.3", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var record threat.Intelligence
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
		assert.Equal(t, 55, record.RiskScore)
	})

	t.Run("unknown ip", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/threats/10.9.9.9", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})
}
