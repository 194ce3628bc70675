package middleware

import (
	"context"
	"time"

	"github.com/SentriLabs/SentriAuth/pkg/cache"
	"github.com/SentriLabs/SentriAuth/pkg/common"
	"github.com/SentriLabs/SentriAuth/pkg/monitor"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type threatDetectionMiddleware struct {
	logger  *logrus.Logger
	monitor *monitor.SecurityMonitor
	seen    *cache.TTLMap
}

// NewThreatDetectionMiddleware rejects requests from blocked IPs and runs
// the request-time pattern detectors over the query string and body.
func NewThreatDetectionMiddleware(
	logger *logrus.Logger,
	securityMonitor *monitor.SecurityMonitor,
	store *cache.Cache,
) Middleware {
	seen := store.GetTTLMap(common.DetectionTTLName)
	if seen == nil {
		seen = store.CreateTTLMap(common.DetectionTTLName, common.DetectionDedupeTTL)
	}
	return &threatDetectionMiddleware{
		logger:  logger,
		monitor: securityMonitor,
		seen:    seen,
	}
}

func (m *threatDetectionMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()

		blocked, err := m.monitor.IsBlocked(c.Context(), ip)
		if err != nil {
			m.logger.WithError(err).WithField("ip", ip).Error("block list lookup failed")
		}
		if blocked {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "access denied"})
		}

		userAgent := c.Get(fiber.HeaderUserAgent)
		detections := monitor.ScanRequest(userAgent,
			string(c.Request().URI().QueryString()),
			string(c.Body()),
			c.Get(fiber.HeaderReferer),
		)
		detections = m.dedupe(ip, detections)
		if len(detections) > 0 {
			// Detached from the request path; the response must not wait
			// on threat bookkeeping.
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				m.monitor.HandleDetections(ctx, ip, userAgent, "", detections)
			}()
		}

		return c.Next()
	}
}

// dedupe drops detections already recorded for this IP inside the dedupe
// window. A scanner burst raises the threat score once per pattern, not
// once per request.
func (m *threatDetectionMiddleware) dedupe(ip string, detections []monitor.Detection) []monitor.Detection {
	fresh := detections[:0]
	for _, d := range detections {
		key := ip + ":" + d.Type
		if _, recent := m.seen.Get(key); recent {
			continue
		}
		m.seen.Set(key, struct{}{})
		fresh = append(fresh, d)
	}
	return fresh
}
