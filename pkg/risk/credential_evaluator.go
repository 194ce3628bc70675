package risk

import (
	"context"

	"github.com/SentriLabs/SentriAuth/pkg/domain/profile"
	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
	"github.com/SentriLabs/SentriAuth/pkg/infra/breach"
)

const (
	breachedCredentialScore = 70
	commonPasswordScore     = 40
)

type credentialEvaluator struct {
	checker *breach.Checker
}

// NewCredentialEvaluator checks the attempt against the known-breach set
// and the common-password list.
func NewCredentialEvaluator(checker *breach.Checker) Evaluator {
	return &credentialEvaluator{checker: checker}
}

func (e *credentialEvaluator) Name() string {
	return "credential"
}

func (e *credentialEvaluator) Evaluate(_ context.Context, attempt *AuthAttempt, _ *profile.UserSecurityProfile) (*security.RiskFactor, error) {
	if e.checker.IsBreached(attempt.Email, attempt.Password) {
		return &security.RiskFactor{
			Type:        security.FactorCompromisedCredential,
			Severity:    security.SeverityHigh,
			Score:       breachedCredentialScore,
			Description: "credentials found in known breach corpus",
			Evidence: map[string]interface{}{
				"source": "breach_corpus",
			},
		}, nil
	}
	if e.checker.IsCommonPassword(attempt.Password) {
		return &security.RiskFactor{
			Type:        security.FactorCompromisedCredential,
			Severity:    security.SeverityMedium,
			Score:       commonPasswordScore,
			Description: "password appears on the common password list",
			Evidence: map[string]interface{}{
				"source": "common_password_list",
			},
		}, nil
	}
	return nil, nil
}
