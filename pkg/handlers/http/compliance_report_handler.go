package http

import (
	"time"

	auditservice "github.com/SentriLabs/SentriAuth/pkg/audit"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type complianceReportHandler struct {
	logger       *logrus.Logger
	auditor      auditservice.Service
	timeProvider func() time.Time
}

func NewComplianceReportHandler(logger *logrus.Logger, auditor auditservice.Service) Handler {
	return &complianceReportHandler{
		logger:       logger,
		auditor:      auditor,
		timeProvider: time.Now,
	}
}

// Handle builds a compliance report for one regulation. The period defaults
// to the trailing 30 days when no range is given.
func (h *complianceReportHandler) Handle(c *fiber.Ctx) error {
	regulation := c.Params("regulation")
	if regulation == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "regulation is required"})
	}

	now := h.timeProvider()
	start := now.AddDate(0, 0, -30)
	end := now

	if v := c.Query("start"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid start timestamp"})
		}
		start = parsed
	}
	if v := c.Query("end"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid end timestamp"})
		}
		end = parsed
	}
	if end.Before(start) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end must not precede start"})
	}

	report, err := h.auditor.ComplianceReport(c.Context(), c.Query("org_id"), regulation, start, end)
	if err != nil {
		h.logger.WithError(err).WithField("regulation", regulation).Error("failed to build compliance report")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to build compliance report"})
	}

	return c.Status(fiber.StatusOK).JSON(report)
}
