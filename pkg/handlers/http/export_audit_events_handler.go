package http

import (
	"errors"
	"fmt"
	"time"

	auditservice "github.com/SentriLabs/SentriAuth/pkg/audit"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type exportAuditEventsHandler struct {
	logger       *logrus.Logger
	auditor      auditservice.Service
	timeProvider func() time.Time
}

func NewExportAuditEventsHandler(logger *logrus.Logger, auditor auditservice.Service) Handler {
	return &exportAuditEventsHandler{
		logger:       logger,
		auditor:      auditor,
		timeProvider: time.Now,
	}
}

// Handle streams an export of every event matching the filter. Format
// defaults to JSON; CSV is the other supported format.
func (h *exportAuditEventsHandler) Handle(c *fiber.Ctx) error {
	filter, err := auditFilterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	format := auditservice.ExportFormat(c.Query("format", string(auditservice.ExportJSON)))

	data, err := h.auditor.Export(c.Context(), filter, format)
	if err != nil {
		var unsupported *auditservice.ErrUnsupportedExportFormat
		if errors.As(err, &unsupported) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": unsupported.Error()})
		}
		h.logger.WithError(err).Error("failed to export audit events")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to export audit events"})
	}

	filename := fmt.Sprintf("audit-export-%s.%s", h.timeProvider().UTC().Format("20060102T150405Z"), format)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	switch format {
	case auditservice.ExportCSV:
		c.Set(fiber.HeaderContentType, "text/csv")
	default:
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	return c.Status(fiber.StatusOK).Send(data)
}
