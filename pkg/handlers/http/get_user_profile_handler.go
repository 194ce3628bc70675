package http

import (
	"errors"

	domain "github.com/SentriLabs/SentriAuth/pkg/domain/errors"
	"github.com/SentriLabs/SentriAuth/pkg/domain/profile"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getUserProfileHandler struct {
	logger   *logrus.Logger
	profiles profile.Repository
}

func NewGetUserProfileHandler(logger *logrus.Logger, profiles profile.Repository) Handler {
	return &getUserProfileHandler{
		logger:   logger,
		profiles: profiles,
	}
}

func (h *getUserProfileHandler) Handle(c *fiber.Ctx) error {
	email := c.Params("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email is required"})
	}

	prof, err := h.profiles.Get(c.Context(), email)
	if err != nil {
		if errors.As(err, &domain.ErrEntityNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "profile not found"})
		}
		h.logger.WithError(err).WithField("email", email).Error("failed to load profile")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load profile"})
	}

	return c.Status(fiber.StatusOK).JSON(prof)
}
