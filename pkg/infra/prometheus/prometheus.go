package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Risk score buckets follow the action thresholds so a histogram read
	// maps directly onto the decision bands.
	riskScoreBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	latencyBuckets = []float64{
		1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000,
	}

	AssessmentsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentriauth_assessments_total",
			Help: "Total number of authentication risk assessments by resulting action",
		},
		[]string{"action"},
	)

	AssessmentRiskScore = promauto.With(registerer).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentriauth_assessment_risk_score",
			Help:    "Distribution of clamped assessment risk scores",
			Buckets: riskScoreBuckets,
		},
	)

	AssessmentLatency = promauto.With(registerer).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentriauth_assessment_latency_ms",
			Help:    "Risk assessment latency in milliseconds",
			Buckets: latencyBuckets,
		},
	)

	AuditEventsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentriauth_audit_events_total",
			Help: "Total number of audit events recorded by category and outcome",
		},
		[]string{"category", "outcome"},
	)

	ThreatEventsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentriauth_threat_events_total",
			Help: "Total number of security events recorded by severity",
		},
		[]string{"severity"},
	)

	BlockedIPs = promauto.With(registerer).NewGauge(
		prometheus.GaugeOpts{
			Name: "sentriauth_blocked_ips",
			Help: "Number of currently auto-blocked IP addresses",
		},
	)

	RequestsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentriauth_requests_total",
			Help: "Total number of admin API requests processed",
		},
		[]string{"method", "status"},
	)
)

func Initialize() {
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}
