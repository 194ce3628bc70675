package security

import (
	"time"

	"github.com/google/uuid"
)

// FactorType is the tagged variant over the heuristics that can contribute
// to an authentication risk score.
type FactorType string

const (
	FactorGeoVelocity           FactorType = "geo_velocity"
	FactorDeviceChange          FactorType = "device_change"
	FactorSuspiciousPattern     FactorType = "suspicious_pattern"
	FactorCompromisedCredential FactorType = "compromised_credential"
	FactorRateLimit             FactorType = "rate_limit"
	FactorAnomaly               FactorType = "anomaly"
)

// RiskFactor is one heuristic's contribution to an assessment. Value
// object, immutable once produced by an evaluator.
type RiskFactor struct {
	Type        FactorType             `json:"type"`
	Severity    Severity               `json:"severity"`
	Score       int                    `json:"score"`
	Description string                 `json:"description"`
	Evidence    map[string]interface{} `json:"evidence,omitempty"`
}

// Action is the discrete decision derived from an assessment.
type Action string

const (
	ActionAllow               Action = "allow"
	ActionMonitor             Action = "monitor"
	ActionChallengeMFA        Action = "challenge_mfa"
	ActionRequireVerification Action = "require_verification"
	ActionBlock               Action = "block"
)

// SecurityEvent is the immutable result of a single authentication risk
// assessment. RiskScore is clamped to [0,100]; RawScore keeps the unclamped
// sum the action thresholds were applied to.
type SecurityEvent struct {
	ID        uuid.UUID              `json:"id"`
	Email     string                 `json:"email"`
	SessionID string                 `json:"session_id,omitempty"`
	IP        string                 `json:"ip"`
	UserAgent string                 `json:"user_agent"`
	Timestamp time.Time              `json:"timestamp"`
	Factors   []RiskFactor           `json:"factors"`
	RiskScore int                    `json:"risk_score"`
	RawScore  int                    `json:"raw_score"`
	Action    Action                 `json:"action"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// HasCritical reports whether any factor carries critical severity.
func (e *SecurityEvent) HasCritical() bool {
	for _, f := range e.Factors {
		if f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// ActionForAssessment applies the decision thresholds to an unclamped score
// sum. A critical factor forces a block regardless of the total.
func ActionForAssessment(rawScore int, critical bool) Action {
	switch {
	case critical || rawScore >= 90:
		return ActionBlock
	case rawScore >= 70:
		return ActionRequireVerification
	case rawScore >= 40:
		return ActionChallengeMFA
	case rawScore >= 20:
		return ActionMonitor
	default:
		return ActionAllow
	}
}
