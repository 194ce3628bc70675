package monitor

import (
	"context"
	"sync"
	"time"

	auditservice "github.com/SentriLabs/SentriAuth/pkg/audit"
	"github.com/SentriLabs/SentriAuth/pkg/cache"
	"github.com/SentriLabs/SentriAuth/pkg/config"
	"github.com/SentriLabs/SentriAuth/pkg/domain/audit"
	"github.com/SentriLabs/SentriAuth/pkg/domain/profile"
	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
	"github.com/SentriLabs/SentriAuth/pkg/domain/threat"
	"github.com/SentriLabs/SentriAuth/pkg/infra/prometheus"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// maxCriticalEvents caps the in-memory critical event log.
const maxCriticalEvents = 1000

// ThreatEvent is one observed security occurrence tied to an IP.
type ThreatEvent struct {
	ID          uuid.UUID              `json:"id"`
	Type        string                 `json:"type"`
	Severity    security.Severity      `json:"severity"`
	IP          string                 `json:"ip"`
	UserID      string                 `json:"user_id,omitempty"`
	UserAgent   string                 `json:"user_agent,omitempty"`
	Description string                 `json:"description,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

// failedEventTypes drive the per-IP failed-attempt counter.
var failedEventTypes = map[string]struct{}{
	"auth_failure":        {},
	"login_failed":        {},
	"brute_force_attempt": {},
}

// SecurityMonitor tracks per-IP threat intelligence, runs the periodic
// maintenance loop and sweeps idle user profiles.
type SecurityMonitor struct {
	threats  threat.Repository
	profiles profile.Repository
	auditor  auditservice.Service
	store    *cache.Cache
	logger   *logrus.Logger

	monitorCfg config.MonitorConfig
	riskCfg    config.RiskConfig

	mu             sync.RWMutex
	criticalEvents []*ThreatEvent
	latestMetrics  *SecurityMetrics

	timeProvider func() time.Time
	uuidProvider func() uuid.UUID

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type MonitorOpts struct {
	TimeProvider func() time.Time
	UuidProvider func() uuid.UUID
}

// NewSecurityMonitor wires the monitor. The audit service and redis store
// are optional; a nil store skips threat mirroring.
func NewSecurityMonitor(
	threats threat.Repository,
	profiles profile.Repository,
	auditor auditservice.Service,
	store *cache.Cache,
	logger *logrus.Logger,
	monitorCfg config.MonitorConfig,
	riskCfg config.RiskConfig,
	opts *MonitorOpts,
) *SecurityMonitor {
	timeProvider := time.Now
	uuidProvider := uuid.New
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	if opts != nil && opts.UuidProvider != nil {
		uuidProvider = opts.UuidProvider
	}
	return &SecurityMonitor{
		threats:      threats,
		profiles:     profiles,
		auditor:      auditor,
		store:        store,
		logger:       logger,
		monitorCfg:   monitorCfg,
		riskCfg:      riskCfg,
		timeProvider: timeProvider,
		uuidProvider: uuidProvider,
	}
}

// RecordSecurityEvent folds an observation into the IP's threat record and
// mirrors it to the audit trail. Critical events force an immediate block.
func (m *SecurityMonitor) RecordSecurityEvent(ctx context.Context, event *ThreatEvent) (*threat.Intelligence, error) {
	now := m.timeProvider()
	event.ID = m.uuidProvider()
	event.Timestamp = now

	_, failed := failedEventTypes[event.Type]

	record, err := m.threats.Update(ctx, event.IP, func(t *threat.Intelligence) {
		t.Raise(event.Severity, failed, now)
		t.RecordPattern(event.Type)
	})
	if err != nil {
		return nil, err
	}

	prometheus.ThreatEventsTotal.WithLabelValues(string(event.Severity)).Inc()

	if m.store != nil {
		if err := m.store.SaveThreat(ctx, record); err != nil {
			m.logger.WithError(err).WithField("ip", event.IP).Warn("failed to mirror threat record to cache")
		}
	}

	if event.Severity == security.SeverityCritical {
		m.recordCritical(event)
		m.logger.WithFields(logrus.Fields{
			"ip":      event.IP,
			"type":    event.Type,
			"user_id": event.UserID,
		}).Error("critical security event, ip force-blocked")
	}

	if record.Blocked {
		m.logger.WithFields(logrus.Fields{
			"ip":         event.IP,
			"risk_score": record.RiskScore,
		}).Warn("ip is blocked")
	}

	if m.auditor != nil {
		outcome := audit.OutcomeSuccess
		if failed {
			outcome = audit.OutcomeFailure
		}
		if _, err := m.auditor.LogSecurity(ctx, auditservice.Entry{
			Type:        event.Type,
			Action:      event.Type,
			Outcome:     outcome,
			UserID:      event.UserID,
			IP:          event.IP,
			UserAgent:   event.UserAgent,
			Description: event.Description,
			Metadata:    event.Metadata,
		}, event.Severity); err != nil {
			m.logger.WithError(err).Warn("failed to audit security event")
		}
	}

	return record, nil
}

// HandleDetections records every pattern hit the request scanner produced.
func (m *SecurityMonitor) HandleDetections(ctx context.Context, ip, userAgent, userID string, detections []Detection) {
	for _, d := range detections {
		if _, err := m.RecordSecurityEvent(ctx, &ThreatEvent{
			Type:        "suspicious_activity",
			Severity:    d.Severity,
			IP:          ip,
			UserID:      userID,
			UserAgent:   userAgent,
			Description: "request matched " + d.Type + " pattern",
			Metadata: map[string]interface{}{
				"detector": d.Type,
				"pattern":  d.Pattern,
			},
		}); err != nil {
			m.logger.WithError(err).WithField("ip", ip).Warn("failed to record detection")
		}
	}
}

// IsBlocked answers the request-path block check.
func (m *SecurityMonitor) IsBlocked(ctx context.Context, ip string) (bool, error) {
	return m.threats.IsBlocked(ctx, ip)
}

func (m *SecurityMonitor) recordCritical(event *ThreatEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.criticalEvents = append(m.criticalEvents, event)
	if len(m.criticalEvents) > maxCriticalEvents {
		m.criticalEvents = m.criticalEvents[len(m.criticalEvents)-maxCriticalEvents:]
	}
}

// CriticalEvents returns a copy of the critical event log, newest last.
func (m *SecurityMonitor) CriticalEvents() []*ThreatEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*ThreatEvent(nil), m.criticalEvents...)
}

// Metrics returns the aggregates from the last maintenance cycle,
// computing them on the spot if no cycle has run yet.
func (m *SecurityMonitor) Metrics(ctx context.Context) (*SecurityMetrics, error) {
	m.mu.RLock()
	cached := m.latestMetrics
	m.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}
	return m.refreshMetrics(ctx)
}

func (m *SecurityMonitor) refreshMetrics(ctx context.Context) (*SecurityMetrics, error) {
	records, err := m.threats.All(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	criticalCount := len(m.criticalEvents)
	m.mu.RUnlock()

	metrics := computeMetrics(records, criticalCount, m.timeProvider())
	prometheus.BlockedIPs.Set(float64(metrics.BlockedIPs))

	m.mu.Lock()
	m.latestMetrics = metrics
	m.mu.Unlock()

	return metrics, nil
}

// Start launches the maintenance and profile sweep loops.
func (m *SecurityMonitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)

	m.wg.Add(2)
	go m.maintenanceLoop(ctx)
	go m.sweepLoop(ctx)
}

// Stop cancels the loops, waits for them and flushes a final snapshot.
func (m *SecurityMonitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	m.RunMaintenance(ctx)
}

func (m *SecurityMonitor) maintenanceLoop(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.monitorCfg.MaintenancePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.RunMaintenance(ctx)
		}
	}
}

// RunMaintenance executes one maintenance cycle: decay inactive threats,
// regenerate aggregates and persist the disk snapshots.
func (m *SecurityMonitor) RunMaintenance(ctx context.Context) {
	now := m.timeProvider()

	decayed, err := m.threats.DecayInactive(ctx, m.monitorCfg.DecayAfter, m.monitorCfg.DecayPoints, now)
	if err != nil {
		m.logger.WithError(err).Error("threat decay pass failed")
	}
	for _, rec := range decayed {
		if !rec.Blocked && rec.RiskScore < threat.UnblockThreshold {
			m.logger.WithField("ip", rec.IP).Info("threat decayed below threshold, ip unblocked")
		}
	}

	metrics, err := m.refreshMetrics(ctx)
	if err != nil {
		m.logger.WithError(err).Error("failed to regenerate security metrics")
		return
	}

	records, err := m.threats.All(ctx)
	if err != nil {
		m.logger.WithError(err).Error("failed to load threat records for snapshot")
		return
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		writeSnapshot(m.logger, m.monitorCfg.SnapshotDir, threatSnapshotFile, records)
		return nil
	})
	g.Go(func() error {
		writeSnapshot(m.logger, m.monitorCfg.SnapshotDir, metricsSnapshotFile, metrics)
		return nil
	})
	g.Go(func() error {
		writeSnapshot(m.logger, m.monitorCfg.SnapshotDir, criticalSnapshotFile, m.CriticalEvents())
		return nil
	})
	_ = g.Wait()
}

func (m *SecurityMonitor) sweepLoop(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.riskCfg.ProfileSweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := m.profiles.SweepIdle(ctx, m.riskCfg.ProfileIdleExpiry, m.timeProvider())
			if err != nil {
				m.logger.WithError(err).Error("profile sweep failed")
				continue
			}
			if removed > 0 {
				m.logger.WithField("removed", removed).Info("swept idle security profiles")
			}
		}
	}
}
