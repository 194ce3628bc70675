package http

import (
	"time"

	"github.com/SentriLabs/SentriAuth/pkg/domain/audit"
	"github.com/SentriLabs/SentriAuth/pkg/monitor"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type securityDashboardHandler struct {
	logger  *logrus.Logger
	monitor *monitor.SecurityMonitor
	events  audit.Repository
}

func NewSecurityDashboardHandler(
	logger *logrus.Logger,
	securityMonitor *monitor.SecurityMonitor,
	events audit.Repository,
) Handler {
	return &securityDashboardHandler{
		logger:  logger,
		monitor: securityMonitor,
		events:  events,
	}
}

type securityDashboard struct {
	Metrics            *monitor.SecurityMetrics `json:"metrics"`
	CriticalEvents     []*monitor.ThreatEvent   `json:"critical_events"`
	CriticalEventCount int                      `json:"critical_event_count"`
	AuditedEvents      int                      `json:"audited_events"`
	GeneratedAt        time.Time                `json:"generated_at"`
}

// Handle aggregates the monitor's threat metrics with the audit trail size
// into a single dashboard payload.
func (h *securityDashboardHandler) Handle(c *fiber.Ctx) error {
	metrics, err := h.monitor.Metrics(c.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to compute security metrics")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to compute security metrics"})
	}

	audited, err := h.events.Count(c.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to count audit events")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to count audit events"})
	}

	critical := h.monitor.CriticalEvents()
	return c.Status(fiber.StatusOK).JSON(securityDashboard{
		Metrics:            metrics,
		CriticalEvents:     critical,
		CriticalEventCount: len(critical),
		AuditedEvents:      audited,
		GeneratedAt:        metrics.GeneratedAt,
	})
}
