package risk

import (
	"context"

	"github.com/SentriLabs/SentriAuth/pkg/domain/profile"
	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
)

// AuthAttempt carries everything the evaluators need about a single
// authentication request. Fingerprint is optional.
type AuthAttempt struct {
	Email       string
	Password    string
	IP          string
	UserAgent   string
	SessionID   string
	Fingerprint *profile.DeviceFingerprint
	Metadata    map[string]interface{}
}

// Evaluator is one heuristic check. It returns nil when the attempt raises
// no concern. An error never fails the assessment; the engine logs it and
// moves on without the factor.
//
//go:generate mockery --name=Evaluator --dir=. --output=../../mocks --filename=risk_evaluator_mock.go --case=underscore --with-expecter
type Evaluator interface {
	Name() string
	Evaluate(ctx context.Context, attempt *AuthAttempt, prof *profile.UserSecurityProfile) (*security.RiskFactor, error)
}
