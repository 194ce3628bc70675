package security

// Severity classifies how dangerous a single signal is. The same scale is
// used by the risk engine, the audit log and the threat monitor so that
// scoring never drifts between components.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityBaseScore is the shared severity-to-score table.
var severityBaseScore = map[Severity]int{
	SeverityLow:      5,
	SeverityMedium:   15,
	SeverityHigh:     30,
	SeverityCritical: 50,
}

// BaseScore returns the score contribution for a severity. Unknown
// severities score zero.
func (s Severity) BaseScore() int {
	return severityBaseScore[s]
}

func (s Severity) String() string {
	return string(s)
}

// Rank orders severities for sorting, critical highest.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// VerdictForScore maps an aggregate 0-100 score to a severity verdict.
func VerdictForScore(score int) Severity {
	switch {
	case score >= 80:
		return SeverityCritical
	case score >= 60:
		return SeverityHigh
	case score >= 30:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// ClampScore bounds a score to the displayable [0,100] range.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
