package router

import (
	handlers "github.com/SentriLabs/SentriAuth/pkg/handlers/http"
	"github.com/SentriLabs/SentriAuth/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

type adminRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    handlers.HandlerTransport
}

func NewAdminRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport handlers.HandlerTransport,
) ServerRouter {
	return &adminRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

func (r *adminRouter) BuildRoutes(router *fiber.App) error {
	router.Use(r.middlewareTransport.MetricsMiddleware.Middleware())
	router.Use(r.middlewareTransport.ThreatDetectionMiddleware.Middleware())

	router.Get("/version", r.handlerTransport.GetVersionHandler.Handle)

	v1 := router.Group("/api/v1")
	{
		// Risk assessment is the data-plane entry point; callers hold a
		// service credential, not an operator token.
		v1.Post("/assessments", r.handlerTransport.AssessLoginHandler.Handle)

		admin := v1.Group("", r.middlewareTransport.AdminAuthMiddleware.Middleware())
		{
			admin.Get("/profiles/:email", r.handlerTransport.GetUserProfileHandler.Handle)

			threats := admin.Group("/threats")
			{
				threats.Get("", r.handlerTransport.ListThreatsHandler.Handle)
				threats.Get("/:ip", r.handlerTransport.GetThreatHandler.Handle)
				threats.Post("/:ip/block", r.handlerTransport.BlockIPHandler.Handle)
				threats.Delete("/:ip/block", r.handlerTransport.UnblockIPHandler.Handle)
			}

			auditGroup := admin.Group("/audit")
			{
				auditGroup.Get("/events", r.handlerTransport.QueryAuditEventsHandler.Handle)
				auditGroup.Get("/compliance/:regulation", r.handlerTransport.ComplianceReportHandler.Handle)
				auditGroup.Get("/export", r.handlerTransport.ExportAuditEventsHandler.Handle)
			}

			admin.Get("/dashboard/security", r.handlerTransport.SecurityDashboardHandler.Handle)
		}
	}
	return nil
}
