package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/SentriLabs/SentriAuth/pkg/domain/audit"
	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
	"github.com/SentriLabs/SentriAuth/pkg/domain/threat"
	"github.com/SentriLabs/SentriAuth/pkg/infra/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockIPHandler_RaisesScoreAndBlocks(t *testing.T) {
	threats := repository.NewMemoryThreatRepository(nil)
	auditor := newTestAuditService()
	handler := NewBlockIPHandler(testLogger(), threats, auditor)

	app := fiber.New()
	app.Post("/api/v1/threats/:ip/block", handler.Handle)

	req := httptest.NewRequest("POST", "/api/v1/threats/198.51.100.7/block", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var record threat.Intelligence
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	assert.True(t, record.Blocked)
	assert.Equal(t, threat.BlockThreshold, record.RiskScore)
	assert.Contains(t, record.Patterns, "manual_block")

	blocked, err := threats.IsBlocked(context.Background(), "198.51.100.7")
	require.NoError(t, err)
	assert.True(t, blocked)

	result, err := auditor.Query(context.Background(), audit.Filter{Type: "manual_block"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "ip_blocked", result.Events[0].Action)
	assert.Equal(t, security.SeverityHigh, result.Events[0].Severity)
}

func TestBlockIPHandler_KeepsHigherExistingScore(t *testing.T) {
	threats := repository.NewMemoryThreatRepository(nil)
	_, err := threats.Update(context.Background(), "198.51.100.8", func(rec *threat.Intelligence) {
		rec.RiskScore = 95
	})
	require.NoError(t, err)

	handler := NewBlockIPHandler(testLogger(), threats, newTestAuditService())
	app := fiber.New()
	app.Post("/api/v1/threats/:ip/block", handler.Handle)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/threats/198.51.100.8/block", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var record threat.Intelligence
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	assert.Equal(t, 95, record.RiskScore)
	assert.True(t, record.Blocked)
}
