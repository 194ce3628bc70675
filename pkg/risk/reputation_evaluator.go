package risk

import (
	"context"
	"errors"

	domain "github.com/SentriLabs/SentriAuth/pkg/domain/errors"
	"github.com/SentriLabs/SentriAuth/pkg/domain/profile"
	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
	"github.com/SentriLabs/SentriAuth/pkg/domain/threat"
)

const (
	blockedIPScore      = 100
	highReputationScore = 50
	highReputationFloor = 60
	warnReputationScore = 25
	warnReputationFloor = 30
)

type reputationEvaluator struct {
	threats threat.Repository
}

// NewReputationEvaluator consults the per-IP threat intelligence store. A
// blocked IP yields a critical factor so the assessment blocks regardless
// of every other signal.
func NewReputationEvaluator(threats threat.Repository) Evaluator {
	return &reputationEvaluator{threats: threats}
}

func (e *reputationEvaluator) Name() string {
	return "ip_reputation"
}

func (e *reputationEvaluator) Evaluate(ctx context.Context, attempt *AuthAttempt, _ *profile.UserSecurityProfile) (*security.RiskFactor, error) {
	record, err := e.threats.Get(ctx, attempt.IP)
	if err != nil {
		if errors.As(err, &domain.ErrEntityNotFound) {
			return nil, nil
		}
		return nil, err
	}

	evidence := map[string]interface{}{
		"threat_score":    record.RiskScore,
		"failed_attempts": record.FailedAttempts,
	}

	switch {
	case record.Blocked:
		return &security.RiskFactor{
			Type:        security.FactorSuspiciousPattern,
			Severity:    security.SeverityCritical,
			Score:       blockedIPScore,
			Description: "source IP is on the active block list",
			Evidence:    evidence,
		}, nil
	case record.RiskScore >= highReputationFloor:
		return &security.RiskFactor{
			Type:        security.FactorSuspiciousPattern,
			Severity:    security.SeverityHigh,
			Score:       highReputationScore,
			Description: "source IP has an elevated threat score",
			Evidence:    evidence,
		}, nil
	case record.RiskScore >= warnReputationFloor:
		return &security.RiskFactor{
			Type:        security.FactorSuspiciousPattern,
			Severity:    security.SeverityMedium,
			Score:       warnReputationScore,
			Description: "source IP has prior suspicious activity",
			Evidence:    evidence,
		}, nil
	default:
		return nil, nil
	}
}
