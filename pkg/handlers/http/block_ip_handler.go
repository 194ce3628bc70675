package http

import (
	auditservice "github.com/SentriLabs/SentriAuth/pkg/audit"
	"github.com/SentriLabs/SentriAuth/pkg/domain/audit"
	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
	"github.com/SentriLabs/SentriAuth/pkg/domain/threat"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type blockIPHandler struct {
	logger  *logrus.Logger
	threats threat.Repository
	auditor auditservice.Service
}

func NewBlockIPHandler(
	logger *logrus.Logger,
	threats threat.Repository,
	auditor auditservice.Service,
) Handler {
	return &blockIPHandler{
		logger:  logger,
		threats: threats,
		auditor: auditor,
	}
}

// Handle places a manual block on an IP. The risk score is raised to the
// block threshold so the automatic decay path governs the eventual unblock.
func (h *blockIPHandler) Handle(c *fiber.Ctx) error {
	ip := c.Params("ip")
	if ip == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ip is required"})
	}

	record, err := h.threats.Update(c.Context(), ip, func(t *threat.Intelligence) {
		t.Blocked = true
		if t.RiskScore < threat.BlockThreshold {
			t.RiskScore = threat.BlockThreshold
		}
		t.RecordPattern("manual_block")
	})
	if err != nil {
		h.logger.WithError(err).WithField("ip", ip).Error("failed to block ip")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to block ip"})
	}

	if _, err := h.auditor.LogSecurity(c.Context(), auditservice.Entry{
		Type:        "manual_block",
		Action:      "ip_blocked",
		Resource:    ip,
		Outcome:     audit.OutcomeSuccess,
		IP:          c.IP(),
		UserAgent:   c.Get(fiber.HeaderUserAgent),
		Description: "ip manually blocked by operator",
	}, security.SeverityHigh); err != nil {
		h.logger.WithError(err).Warn("failed to audit manual block")
	}

	h.logger.WithField("ip", ip).Warn("ip manually blocked")
	return c.Status(fiber.StatusOK).JSON(record)
}
