package threat

import (
	"time"

	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
)

const (
	// MaxPatterns caps the rolling per-IP pattern list.
	MaxPatterns = 20

	// BlockThreshold is the risk score at which an IP is auto-blocked.
	BlockThreshold = 80

	// UnblockThreshold is the score below which a decayed IP is unblocked.
	UnblockThreshold = 30

	// ExtraFailedAttemptCap bounds the failed-attempt surcharge.
	ExtraFailedAttemptCap = 30
)

// Intelligence is the per-IP threat record maintained by the security
// monitor. Score is clamped to [0,100] and never negative.
type Intelligence struct {
	IP             string              `json:"ip"`
	RiskScore      int                 `json:"risk_score"`
	FailedAttempts int                 `json:"failed_attempts"`
	Patterns       []string            `json:"patterns"`
	Blocked        bool                `json:"blocked"`
	FirstSeen      time.Time           `json:"first_seen"`
	LastSeen       time.Time           `json:"last_seen"`
	LastSeverity   security.Severity   `json:"last_severity,omitempty"`
}

// New returns a fresh record for an IP.
func New(ip string, now time.Time) *Intelligence {
	return &Intelligence{
		IP:        ip,
		FirstSeen: now,
		LastSeen:  now,
	}
}

// Raise applies a severity-weighted risk increment. Once failed attempts
// exceed five, each adds a 5-point surcharge capped at
// ExtraFailedAttemptCap. Crossing BlockThreshold sets Blocked.
func (t *Intelligence) Raise(severity security.Severity, failed bool, now time.Time) {
	if failed {
		t.FailedAttempts++
	}

	increment := severity.BaseScore()
	if t.FailedAttempts > 5 {
		extra := (t.FailedAttempts - 5) * 5
		if extra > ExtraFailedAttemptCap {
			extra = ExtraFailedAttemptCap
		}
		increment += extra
	}

	t.RiskScore = security.ClampScore(t.RiskScore + increment)
	t.LastSeverity = severity
	t.LastSeen = now

	if severity == security.SeverityCritical {
		t.RiskScore = 100
		t.Blocked = true
		return
	}
	if t.RiskScore >= BlockThreshold {
		t.Blocked = true
	}
}

// Decay lowers the score for an inactive IP and unblocks it once the score
// falls below UnblockThreshold.
func (t *Intelligence) Decay(points int) {
	t.RiskScore = security.ClampScore(t.RiskScore - points)
	if t.Blocked && t.RiskScore < UnblockThreshold {
		t.Blocked = false
	}
}

// RecordPattern appends to the rolling pattern list, dropping the oldest
// entry past MaxPatterns.
func (t *Intelligence) RecordPattern(pattern string) {
	t.Patterns = append(t.Patterns, pattern)
	if len(t.Patterns) > MaxPatterns {
		t.Patterns = t.Patterns[len(t.Patterns)-MaxPatterns:]
	}
}
