package http

import (
	auditservice "github.com/SentriLabs/SentriAuth/pkg/audit"
	"github.com/SentriLabs/SentriAuth/pkg/domain/audit"
	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
	"github.com/SentriLabs/SentriAuth/pkg/domain/threat"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type unblockIPHandler struct {
	logger  *logrus.Logger
	threats threat.Repository
	auditor auditservice.Service
}

func NewUnblockIPHandler(
	logger *logrus.Logger,
	threats threat.Repository,
	auditor auditservice.Service,
) Handler {
	return &unblockIPHandler{
		logger:  logger,
		threats: threats,
		auditor: auditor,
	}
}

// Handle lifts a block. The score drops below the unblock threshold so the
// next security event starts from a clean slate instead of re-blocking.
func (h *unblockIPHandler) Handle(c *fiber.Ctx) error {
	ip := c.Params("ip")
	if ip == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ip is required"})
	}

	record, err := h.threats.Update(c.Context(), ip, func(t *threat.Intelligence) {
		t.Blocked = false
		if t.RiskScore >= threat.UnblockThreshold {
			t.RiskScore = 0
		}
		t.RecordPattern("manual_unblock")
	})
	if err != nil {
		h.logger.WithError(err).WithField("ip", ip).Error("failed to unblock ip")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to unblock ip"})
	}

	if _, err := h.auditor.LogSecurity(c.Context(), auditservice.Entry{
		Type:        "manual_unblock",
		Action:      "ip_unblocked",
		Resource:    ip,
		Outcome:     audit.OutcomeSuccess,
		IP:          c.IP(),
		UserAgent:   c.Get(fiber.HeaderUserAgent),
		Description: "ip manually unblocked by operator",
	}, security.SeverityMedium); err != nil {
		h.logger.WithError(err).Warn("failed to audit manual unblock")
	}

	return c.Status(fiber.StatusOK).JSON(record)
}
