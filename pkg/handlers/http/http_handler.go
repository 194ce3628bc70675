package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// Risk
	AssessLoginHandler    Handler
	GetUserProfileHandler Handler

	// Threat intelligence
	ListThreatsHandler Handler
	GetThreatHandler   Handler
	BlockIPHandler     Handler
	UnblockIPHandler   Handler

	// Audit
	QueryAuditEventsHandler  Handler
	ComplianceReportHandler  Handler
	ExportAuditEventsHandler Handler

	// Dashboard
	SecurityDashboardHandler Handler

	GetVersionHandler Handler
}
