package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	auditservice "github.com/SentriLabs/SentriAuth/pkg/audit"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newComplianceApp(t *testing.T) *fiber.App {
	t.Helper()
	svc := newTestAuditService()
	seedAuditEvents(t, svc)

	handler := NewComplianceReportHandler(testLogger(), svc)
	app := fiber.New()
	app.Get("/api/v1/audit/compliance/:regulation", handler.Handle)
	return app
}

func TestComplianceReportHandler_DefaultPeriod(t *testing.T) {
	app := newComplianceApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/audit/compliance/SOC2", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var report auditservice.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "SOC2", report.Regulation)
	assert.Equal(t, 3, report.TotalEvents)
	assert.Equal(t, 1, report.FailedEvents)
	assert.Equal(t, 95, report.ComplianceScore)
}

func TestComplianceReportHandler_OrgScoped(t *testing.T) {
	app := newComplianceApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/audit/compliance/GDPR?org_id=globex", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var report auditservice.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "globex", report.OrgID)
	assert.Equal(t, 1, report.TotalEvents)
}

func TestComplianceReportHandler_InvalidRange(t *testing.T) {
	app := newComplianceApp(t)

	for name, query := range map[string]string{
		"bad start":    "?start=notatime",
		"end precedes": "?start=2026-08-01T00:00:00Z&end=2026-07-01T00:00:00Z",
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/audit/compliance/SOC2"+query, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, 400, resp.StatusCode)
		})
	}
}
