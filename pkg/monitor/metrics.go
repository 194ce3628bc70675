package monitor

import (
	"sort"
	"time"

	"github.com/SentriLabs/SentriAuth/pkg/domain/threat"
)

const topThreatCount = 5

// SecurityMetrics is the aggregate snapshot regenerated on every
// maintenance cycle and served on the dashboard.
type SecurityMetrics struct {
	TotalThreats     int                    `json:"total_threats"`
	BlockedIPs       int                    `json:"blocked_ips"`
	AverageRiskScore float64                `json:"average_risk_score"`
	TopThreats       []*threat.Intelligence `json:"top_threats"`
	CriticalEvents   int                    `json:"critical_events"`
	GeneratedAt      time.Time              `json:"generated_at"`
}

func computeMetrics(records []*threat.Intelligence, criticalEvents int, now time.Time) *SecurityMetrics {
	metrics := &SecurityMetrics{
		TotalThreats:   len(records),
		CriticalEvents: criticalEvents,
		GeneratedAt:    now,
	}

	total := 0
	for _, rec := range records {
		total += rec.RiskScore
		if rec.Blocked {
			metrics.BlockedIPs++
		}
	}
	if len(records) > 0 {
		metrics.AverageRiskScore = float64(total) / float64(len(records))
	}

	sorted := append([]*threat.Intelligence(nil), records...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].RiskScore > sorted[j].RiskScore
	})
	if len(sorted) > topThreatCount {
		sorted = sorted[:topThreatCount]
	}
	metrics.TopThreats = sorted

	return metrics
}
