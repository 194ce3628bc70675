package audit

import (
	"time"

	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
)

// SortKey selects the ordering of query results.
type SortKey string

const (
	SortByTimestamp SortKey = "timestamp"
	SortBySeverity  SortKey = "severity"
	SortByRiskScore SortKey = "risk_score"
)

// NoLimit disables pagination; reports and exports need every match.
const NoLimit = -1

// Filter narrows an audit query. Zero values match everything.
type Filter struct {
	OrgID    string
	UserID   string
	Type     string
	Category Category
	Outcome  Outcome
	Severity security.Severity
	IP       string
	From     time.Time
	To       time.Time
	SortBy   SortKey
	Limit    int
	Offset   int
}

// Matches reports whether an event satisfies every set predicate.
func (f Filter) Matches(e *Event) bool {
	if f.OrgID != "" && e.OrgID != f.OrgID {
		return false
	}
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Outcome != "" && e.Outcome != f.Outcome {
		return false
	}
	if f.Severity != "" && e.Severity != f.Severity {
		return false
	}
	if f.IP != "" && e.IP != f.IP {
		return false
	}
	if !f.From.IsZero() && e.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Timestamp.After(f.To) {
		return false
	}
	return true
}

// QueryResult is a page of matching events.
type QueryResult struct {
	Events  []*Event `json:"events"`
	Total   int      `json:"total"`
	HasMore bool     `json:"has_more"`
}
