package http

import (
	"context"
	"time"

	auditservice "github.com/SentriLabs/SentriAuth/pkg/audit"
	"github.com/SentriLabs/SentriAuth/pkg/domain/audit"
	"github.com/SentriLabs/SentriAuth/pkg/domain/profile"
	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
	"github.com/SentriLabs/SentriAuth/pkg/handlers/http/request"
	"github.com/SentriLabs/SentriAuth/pkg/risk"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type assessLoginHandler struct {
	logger  *logrus.Logger
	engine  risk.Engine
	auditor auditservice.Service
}

func NewAssessLoginHandler(
	logger *logrus.Logger,
	engine risk.Engine,
	auditor auditservice.Service,
) Handler {
	return &assessLoginHandler{
		logger:  logger,
		engine:  engine,
		auditor: auditor,
	}
}

// Handle assesses one authentication attempt and returns the scored event.
// The profile update runs detached; the caller only needs the action.
func (h *assessLoginHandler) Handle(c *fiber.Ctx) error {
	var req request.AssessLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email is required"})
	}
	if req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "password is required"})
	}

	ip := req.IP
	if ip == "" {
		ip = c.IP()
	}
	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = c.Get(fiber.HeaderUserAgent)
	}

	var fingerprint *profile.DeviceFingerprint
	if req.Fingerprint != nil {
		fingerprint = &profile.DeviceFingerprint{
			UserAgent: req.Fingerprint.UserAgent,
			Timezone:  req.Fingerprint.Timezone,
			Language:  req.Fingerprint.Language,
			Platform:  req.Fingerprint.Platform,
		}
	}

	attempt := &risk.AuthAttempt{
		Email:       req.Email,
		Password:    req.Password,
		IP:          ip,
		UserAgent:   userAgent,
		SessionID:   req.SessionID,
		Fingerprint: fingerprint,
		Metadata:    req.Metadata,
	}

	event, err := h.engine.EvaluateAuthenticationRisk(c.Context(), attempt)
	if err != nil {
		h.logger.WithError(err).WithField("email", req.Email).Error("risk assessment failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "assessment failed"})
	}

	go h.recordOutcome(req.Email, event, fingerprint)

	return c.Status(fiber.StatusOK).JSON(event)
}

func (h *assessLoginHandler) recordOutcome(email string, event *security.SecurityEvent, fingerprint *profile.DeviceFingerprint) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.engine.UpdateUserProfile(ctx, email, event, fingerprint); err != nil {
		h.logger.WithError(err).WithField("email", email).Error("failed to update security profile")
	}

	outcome := audit.OutcomeSuccess
	if event.Action == security.ActionBlock {
		outcome = audit.OutcomeFailure
	}
	if _, err := h.auditor.LogAuth(ctx, auditservice.Entry{
		Type:      "risk_assessment",
		Action:    "login_assessed",
		Outcome:   outcome,
		UserID:    email,
		IP:        event.IP,
		UserAgent: event.UserAgent,
		Description: "authentication attempt scored " +
			string(event.Action),
		Metadata: map[string]interface{}{
			"risk_score": event.RiskScore,
			"factors":    len(event.Factors),
		},
	}); err != nil {
		h.logger.WithError(err).Warn("failed to audit assessment")
	}
}
