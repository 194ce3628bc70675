package audit

import (
	"time"

	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
	"github.com/google/uuid"
)

// Category groups audit events by the subsystem that produced them.
type Category string

const (
	CategoryAuthentication Category = "authentication"
	CategoryAuthorization  Category = "authorization"
	CategoryUserManagement Category = "user_management"
	CategoryOrganization   Category = "organization"
	CategorySecurity       Category = "security"
	CategorySystem         Category = "system"
)

// Outcome is the result of the audited action.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomePending Outcome = "pending"
)

// Risk is the nested risk sub-object computed for every audit event.
type Risk struct {
	Score   int               `json:"score"`
	Factors []string          `json:"factors,omitempty"`
	Verdict security.Severity `json:"verdict"`
}

// Compliance carries the regulatory metadata attached to an event.
type Compliance struct {
	Regulations        []string `json:"regulations,omitempty"`
	RetentionDays      int      `json:"retention_days"`
	DataClassification string   `json:"data_classification,omitempty"`
}

// Event is an immutable audit record. Events are appended once and only
// ever read afterwards.
type Event struct {
	ID          uuid.UUID              `json:"id"`
	Timestamp   time.Time              `json:"timestamp"`
	Type        string                 `json:"type"`
	Category    Category               `json:"category"`
	Action      string                 `json:"action"`
	Resource    string                 `json:"resource,omitempty"`
	Outcome     Outcome                `json:"outcome"`
	Severity    security.Severity      `json:"severity"`
	UserID      string                 `json:"user_id,omitempty"`
	OrgID       string                 `json:"org_id,omitempty"`
	IP          string                 `json:"ip,omitempty"`
	UserAgent   string                 `json:"user_agent,omitempty"`
	Description string                 `json:"description,omitempty"`
	Risk        Risk                   `json:"risk"`
	Compliance  Compliance             `json:"compliance"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// highImpactActions add a fixed surcharge to an event's risk score.
var highImpactActions = map[string]struct{}{
	"user_deleted":   {},
	"org_deleted":    {},
	"sso_configured": {},
}

// ScoreEvent computes the risk sub-score for an audit event: base 10, +30
// on failure, +20 for high-impact actions, +15 for a missing or very short
// user agent. The verdict uses the shared severity thresholds.
func ScoreEvent(action string, outcome Outcome, userAgent string) Risk {
	score := 10
	var factors []string

	if outcome == OutcomeFailure {
		score += 30
		factors = append(factors, "failed_outcome")
	}
	if _, ok := highImpactActions[action]; ok {
		score += 20
		factors = append(factors, "high_impact_action")
	}
	if len(userAgent) < 10 {
		score += 15
		factors = append(factors, "missing_user_agent")
	}

	return Risk{
		Score:   score,
		Factors: factors,
		Verdict: security.VerdictForScore(score),
	}
}
