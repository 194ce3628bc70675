package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	auditservice "github.com/SentriLabs/SentriAuth/pkg/audit"
	"github.com/SentriLabs/SentriAuth/pkg/domain/audit"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAuditEvents(t *testing.T, svc auditservice.Service) {
	t.Helper()
	ctx := context.Background()
	browserUA := "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

	_, err := svc.LogAuth(ctx, auditservice.Entry{
		Action: "user_login", Outcome: audit.OutcomeSuccess,
		UserID: "alice", OrgID: "acme", UserAgent: browserUA,
	})
	require.NoError(t, err)
	_, err = svc.LogAuth(ctx, auditservice.Entry{
		Action: "user_login", Outcome: audit.OutcomeFailure,
		UserID: "bob", OrgID: "acme", UserAgent: browserUA,
	})
	require.NoError(t, err)
	_, err = svc.LogUserManagement(ctx, auditservice.Entry{
		Action: "user_deleted", Outcome: audit.OutcomeSuccess,
		UserID: "alice", OrgID: "globex", UserAgent: browserUA,
	})
	require.NoError(t, err)
}

func newQueryApp(t *testing.T) (*fiber.App, auditservice.Service) {
	t.Helper()
	svc := newTestAuditService()
	seedAuditEvents(t, svc)

	handler := NewQueryAuditEventsHandler(testLogger(), svc)
	app := fiber.New()
	app.Get("/api/v1/audit/events", handler.Handle)
	return app, svc
}

func TestQueryAuditEventsHandler_NoFilterReturnsAll(t *testing.T) {
	app, _ := newQueryApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/audit/events", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result audit.QueryResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 3, result.Total)
	assert.False(t, result.HasMore)
}

func TestQueryAuditEventsHandler_Filters(t *testing.T) {
	app, _ := newQueryApp(t)

	cases := map[string]struct {
		query string
		total int
	}{
		"by org":      {query: "?org_id=acme", total: 2},
		"by outcome":  {query: "?outcome=failure", total: 1},
		"by category": {query: "?category=user_management", total: 1},
		"by user":     {query: "?user_id=alice", total: 2},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/audit/events"+tc.query, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)

			var result audit.QueryResult
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
			assert.Equal(t, tc.total, result.Total)
		})
	}
}

func TestQueryAuditEventsHandler_Pagination(t *testing.T) {
	app, _ := newQueryApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/audit/events?limit=2&offset=0", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result audit.QueryResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 3, result.Total)
	assert.Len(t, result.Events, 2)
	assert.True(t, result.HasMore)
}

func TestQueryAuditEventsHandler_InvalidParams(t *testing.T) {
	app, _ := newQueryApp(t)

	for name, query := range map[string]string{
		"bad from":   "?from=yesterday",
		"bad limit":  "?limit=abc",
		"bad offset": "?offset=-3",
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/audit/events"+query, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, 400, resp.StatusCode)
		})
	}
}
