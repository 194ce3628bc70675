package http

import (
	"sort"

	"github.com/SentriLabs/SentriAuth/pkg/domain/threat"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type listThreatsHandler struct {
	logger  *logrus.Logger
	threats threat.Repository
}

func NewListThreatsHandler(logger *logrus.Logger, threats threat.Repository) Handler {
	return &listThreatsHandler{
		logger:  logger,
		threats: threats,
	}
}

// Handle lists every tracked IP, highest risk first. `blocked=true` narrows
// to the active block list.
func (h *listThreatsHandler) Handle(c *fiber.Ctx) error {
	records, err := h.threats.All(c.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to list threat records")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list threats"})
	}

	if c.Query("blocked") == "true" {
		filtered := records[:0]
		for _, rec := range records {
			if rec.Blocked {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].RiskScore > records[j].RiskScore
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"threats": records,
		"count":   len(records),
	})
}
