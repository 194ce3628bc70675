package http

import (
	"errors"

	"github.com/SentriLabs/SentriAuth/pkg/cache"
	domain "github.com/SentriLabs/SentriAuth/pkg/domain/errors"
	"github.com/SentriLabs/SentriAuth/pkg/domain/threat"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getThreatHandler struct {
	logger  *logrus.Logger
	threats threat.Repository
	store   *cache.Cache
}

// NewGetThreatHandler serves one IP's threat record. The redis mirror is a
// fallback for records written before the last restart; store may be nil.
func NewGetThreatHandler(logger *logrus.Logger, threats threat.Repository, store *cache.Cache) Handler {
	return &getThreatHandler{
		logger:  logger,
		threats: threats,
		store:   store,
	}
}

func (h *getThreatHandler) Handle(c *fiber.Ctx) error {
	ip := c.Params("ip")
	if ip == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ip is required"})
	}

	record, err := h.threats.Get(c.Context(), ip)
	if err != nil {
		if errors.As(err, &domain.ErrEntityNotFound) {
			if h.store != nil {
				if mirrored, mirrorErr := h.store.GetThreat(c.Context(), ip); mirrorErr == nil {
					return c.Status(fiber.StatusOK).JSON(mirrored)
				}
			}
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no intelligence for ip"})
		}
		h.logger.WithError(err).WithField("ip", ip).Error("failed to load threat record")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load threat record"})
	}

	return c.Status(fiber.StatusOK).JSON(record)
}
