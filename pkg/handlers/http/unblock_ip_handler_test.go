package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/SentriLabs/SentriAuth/pkg/domain/audit"
	"github.com/SentriLabs/SentriAuth/pkg/domain/threat"
	"github.com/SentriLabs/SentriAuth/pkg/infra/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnblockIPHandler_ClearsBlockAndScore(t *testing.T) {
	threats := repository.NewMemoryThreatRepository(nil)
	_, err := threats.Update(context.Background(), "198.51.100.9", func(rec *threat.Intelligence) {
		rec.Blocked = true
		rec.RiskScore = threat.BlockThreshold
	})
	require.NoError(t, err)

	auditor := newTestAuditService()
	handler := NewUnblockIPHandler(testLogger(), threats, auditor)

	app := fiber.New()
	app.Delete("/api/v1/threats/:ip/block", handler.Handle)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/v1/threats/198.51.100.9/block", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var record threat.Intelligence
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	assert.False(t, record.Blocked)
	assert.Equal(t, 0, record.RiskScore)
	assert.Contains(t, record.Patterns, "manual_unblock")

	blocked, err := threats.IsBlocked(context.Background(), "198.51.100.9")
	require.NoError(t, err)
	assert.False(t, blocked)

	result, err := auditor.Query(context.Background(), audit.Filter{Type: "manual_unblock"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "ip_unblocked", result.Events[0].Action)
}
