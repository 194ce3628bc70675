package audit_test

import (
	"context"
	"testing"
	"time"

	auditservice "github.com/SentriLabs/SentriAuth/pkg/audit"
	"github.com/SentriLabs/SentriAuth/pkg/domain/audit"
	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplianceReport_Score(t *testing.T) {
	now := time.Unix(1756710000, 0)
	svc, _ := newTestService(now)
	ctx := context.Background()

	// Two critical security events and three failures inside the window.
	for i := 0; i < 2; i++ {
		_, err := svc.LogSecurity(ctx, auditservice.Entry{
			Type:      "suspicious_activity",
			Action:    "attack_detected",
			Outcome:   audit.OutcomeFailure,
			OrgID:     "org-1",
			UserAgent: testUserAgent,
		}, security.SeverityCritical)
		require.NoError(t, err)
	}
	_, err := svc.LogAuth(ctx, auditservice.Entry{
		Action:    "user_login",
		Outcome:   audit.OutcomeFailure,
		OrgID:     "org-1",
		UserAgent: testUserAgent,
	})
	require.NoError(t, err)

	report, err := svc.ComplianceReport(ctx, "org-1", "GDPR", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalEvents)
	assert.Equal(t, 2, report.CriticalEvents)
	assert.Equal(t, 3, report.FailedEvents)
	// 100 - 2*10 - 3*5
	assert.Equal(t, 65, report.ComplianceScore)
	assert.Equal(t, 2, report.CategoryDistribution[audit.CategorySecurity])
	assert.Equal(t, 1, report.CategoryDistribution[audit.CategoryAuthentication])
}

func TestComplianceReport_ScoreClampedAtZero(t *testing.T) {
	now := time.Unix(1756710000, 0)
	svc, _ := newTestService(now)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		_, err := svc.LogSecurity(ctx, auditservice.Entry{
			Type:      "suspicious_activity",
			Action:    "attack_detected",
			Outcome:   audit.OutcomeFailure,
			OrgID:     "org-1",
			UserAgent: testUserAgent,
		}, security.SeverityCritical)
		require.NoError(t, err)
	}

	report, err := svc.ComplianceReport(ctx, "org-1", "SOC2", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, report.ComplianceScore)
}

func TestComplianceReport_FiltersByRegulation(t *testing.T) {
	now := time.Unix(1756710000, 0)
	svc, _ := newTestService(now)
	ctx := context.Background()

	// Authorization events are SOC2-only, never HIPAA.
	_, err := svc.LogAuthz(ctx, auditservice.Entry{
		Action:    "permission_granted",
		Outcome:   audit.OutcomeSuccess,
		OrgID:     "org-1",
		UserAgent: testUserAgent,
	})
	require.NoError(t, err)

	report, err := svc.ComplianceReport(ctx, "org-1", "HIPAA", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalEvents)
	assert.Equal(t, 100, report.ComplianceScore)
}

func TestComplianceReport_Recommendations(t *testing.T) {
	now := time.Unix(1756710000, 0)
	svc, _ := newTestService(now)
	ctx := context.Background()

	_, err := svc.LogAuth(ctx, auditservice.Entry{
		Action:    "user_login",
		Outcome:   audit.OutcomeSuccess,
		OrgID:     "org-1",
		UserAgent: testUserAgent,
	})
	require.NoError(t, err)

	gdpr, err := svc.ComplianceReport(ctx, "org-1", "GDPR", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Contains(t, gdpr.Recommendations[0], "data subject")

	soc2, err := svc.ComplianceReport(ctx, "org-1", "SOC2", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, soc2.Recommendations, 1)
	assert.Contains(t, soc2.Recommendations[0], "No immediate action")
}
