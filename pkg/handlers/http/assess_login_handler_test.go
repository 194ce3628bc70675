package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	auditservice "github.com/SentriLabs/SentriAuth/pkg/audit"
	"github.com/SentriLabs/SentriAuth/pkg/domain/profile"
	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
	"github.com/SentriLabs/SentriAuth/pkg/infra/repository"
	"github.com/SentriLabs/SentriAuth/pkg/risk"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestAuditService() auditservice.Service {
	events := repository.NewMemoryAuditRepository(0)
	return auditservice.NewService(events, nil, nil, testLogger(), 365, nil)
}

type fixedEvaluator struct {
	name   string
	factor *security.RiskFactor
}

func (e fixedEvaluator) Name() string { return e.name }

func (e fixedEvaluator) Evaluate(
	_ context.Context,
	_ *risk.AuthAttempt,
	_ *profile.UserSecurityProfile,
) (*security.RiskFactor, error) {
	return e.factor, nil
}

func newAssessApp(evaluators ...risk.Evaluator) *fiber.App {
	profiles := repository.NewMemoryProfileRepository(nil)
	engine := risk.NewEngine(profiles, evaluators, nil, testLogger(), nil)
	handler := NewAssessLoginHandler(testLogger(), engine, newTestAuditService())

	app := fiber.New()
	app.Post("/api/v1/assessments", handler.Handle)
	return app
}

func TestAssessLoginHandler_CleanAttemptAllows(t *testing.T) {
	app := newAssessApp()

	body, err := json.Marshal(map[string]interface{}{
		"email":      "alice@example.com",
		"password":   "s3cure-enough",
		"ip":         "203.0.113.10",
		"user_agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/assessments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var event security.SecurityEvent
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&event))
	assert.Equal(t, security.ActionAllow, event.Action)
	assert.Equal(t, 0, event.RiskScore)
	assert.Equal(t, "alice@example.com", event.Email)
	assert.Equal(t, "203.0.113.10", event.IP)
}

func TestAssessLoginHandler_HighRiskRequiresVerification(t *testing.T) {
	app := newAssessApp(fixedEvaluator{
		name: "stub",
		factor: &security.RiskFactor{
			Type:     security.FactorCompromisedCredential,
			Severity: security.SeverityHigh,
			Score:    70,
		},
	})

	body, err := json.Marshal(map[string]interface{}{
		"email":    "bob@example.com",
		"password": "hunter2",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/assessments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var event security.SecurityEvent
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&event))
	assert.Equal(t, security.ActionRequireVerification, event.Action)
	assert.Equal(t, 70, event.RiskScore)
	require.Len(t, event.Factors, 1)
	assert.Equal(t, security.FactorCompromisedCredential, event.Factors[0].Type)
}

func TestAssessLoginHandler_MissingFields(t *testing.T) {
	app := newAssessApp()

	for name, payload := range map[string]map[string]interface{}{
		"missing email":    {"password": "hunter2"},
		"missing password": {"email": "alice@example.com"},
	} {
		t.Run(name, func(t *testing.T) {
			body, err := json.Marshal(payload)
			require.NoError(t, err)

			req := httptest.NewRequest("POST", "/api/v1/assessments", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, 400, resp.StatusCode)
		})
	}
}

func TestAssessLoginHandler_FallsBackToRequestIP(t *testing.T) {
	app := newAssessApp()

	body, err := json.Marshal(map[string]interface{}{
		"email":    "carol@example.com",
		"password": "s3cure-enough",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/assessments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var event security.SecurityEvent
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&event))
	assert.NotEmpty(t, event.IP)
	assert.Equal(t, "Mozilla/5.0 (X11; Linux x86_64)", event.UserAgent)
}
