package http

import (
	"strconv"
	"time"

	auditservice "github.com/SentriLabs/SentriAuth/pkg/audit"
	"github.com/SentriLabs/SentriAuth/pkg/domain/audit"
	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type queryAuditEventsHandler struct {
	logger  *logrus.Logger
	auditor auditservice.Service
}

func NewQueryAuditEventsHandler(logger *logrus.Logger, auditor auditservice.Service) Handler {
	return &queryAuditEventsHandler{
		logger:  logger,
		auditor: auditor,
	}
}

// Handle translates query string parameters into an audit filter and returns
// a page of matching events.
func (h *queryAuditEventsHandler) Handle(c *fiber.Ctx) error {
	filter, err := auditFilterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.auditor.Query(c.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("failed to query audit events")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to query audit events"})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func auditFilterFromQuery(c *fiber.Ctx) (audit.Filter, error) {
	filter := audit.Filter{
		OrgID:    c.Query("org_id"),
		UserID:   c.Query("user_id"),
		Type:     c.Query("type"),
		Category: audit.Category(c.Query("category")),
		Outcome:  audit.Outcome(c.Query("outcome")),
		Severity: security.Severity(c.Query("severity")),
		IP:       c.Query("ip"),
		SortBy:   audit.SortKey(c.Query("sort_by")),
	}

	if v := c.Query("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return audit.Filter{}, fiber.NewError(fiber.StatusBadRequest, "invalid from timestamp")
		}
		filter.From = from
	}
	if v := c.Query("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return audit.Filter{}, fiber.NewError(fiber.StatusBadRequest, "invalid to timestamp")
		}
		filter.To = to
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return audit.Filter{}, fiber.NewError(fiber.StatusBadRequest, "invalid limit")
		}
		filter.Limit = limit
	}
	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return audit.Filter{}, fiber.NewError(fiber.StatusBadRequest, "invalid offset")
		}
		filter.Offset = offset
	}

	return filter, nil
}
