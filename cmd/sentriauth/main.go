package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	auditservice "github.com/SentriLabs/SentriAuth/pkg/audit"
	"github.com/SentriLabs/SentriAuth/pkg/cache"
	"github.com/SentriLabs/SentriAuth/pkg/common"
	"github.com/SentriLabs/SentriAuth/pkg/config"
	"github.com/SentriLabs/SentriAuth/pkg/domain/audit"
	handlers "github.com/SentriLabs/SentriAuth/pkg/handlers/http"
	"github.com/SentriLabs/SentriAuth/pkg/infra/breach"
	"github.com/SentriLabs/SentriAuth/pkg/infra/database"
	"github.com/SentriLabs/SentriAuth/pkg/infra/geoip"
	"github.com/SentriLabs/SentriAuth/pkg/infra/jwt"
	infraLogger "github.com/SentriLabs/SentriAuth/pkg/infra/logger"
	_ "github.com/SentriLabs/SentriAuth/pkg/infra/migrations"
	"github.com/SentriLabs/SentriAuth/pkg/infra/prometheus"
	"github.com/SentriLabs/SentriAuth/pkg/infra/repository"
	"github.com/SentriLabs/SentriAuth/pkg/infra/streaming"
	"github.com/SentriLabs/SentriAuth/pkg/middleware"
	"github.com/SentriLabs/SentriAuth/pkg/monitor"
	"github.com/SentriLabs/SentriAuth/pkg/risk"
	"github.com/SentriLabs/SentriAuth/pkg/server"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx := context.Background()
	envFile := os.Getenv("ENV_FILE")

	if envFile == "" {
		envFile = ".env"
	}
	err := godotenv.Load(envFile)
	if err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger("admin")

	if err := config.Load("./config"); err != nil {
		logger.WithError(err).Warn("failed to load config file, using defaults and environment")
	}
	cfg := config.GetConfig()

	prometheus.Initialize()

	cacheInstance, err := cache.NewCache(common.CacheConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TLS:      cfg.Redis.TLS,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize cache: %v", err)
	}

	// repositories
	profiles := repository.NewMemoryProfileRepository(nil)
	threats := repository.NewMemoryThreatRepository(nil)
	auditEvents := repository.NewMemoryAuditRepository(cfg.Audit.MaxEvents)

	// optional audit sinks
	var archiver audit.Archiver
	if cfg.Audit.ArchiveEnabled {
		db, err := database.NewDB(logger, &database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			logger.Fatalf("Failed to initialize database: %v", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.WithError(err).Error("failed to close database")
			}
		}()
		if err := database.NewMigrationsManager(db.DB).ApplyPending(); err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
		archiver = repository.NewGormAuditArchiver(db.DB)
	}

	var exporter streaming.Exporter
	if cfg.Audit.StreamingEnabled {
		kafkaExporter, err := streaming.NewKafkaExporter(cfg.Kafka)
		if err != nil {
			logger.Fatalf("Failed to initialize kafka exporter: %v", err)
		}
		defer kafkaExporter.Close()
		exporter = kafkaExporter
	}

	auditor := auditservice.NewService(auditEvents, archiver, exporter, logger, cfg.Audit.RetentionDays, nil)

	resolver := buildGeoResolver(cfg, logger)

	breachChecker := breach.NewChecker()
	evaluators := []risk.Evaluator{
		risk.NewCredentialEvaluator(breachChecker),
		risk.NewRateLimitEvaluator(cacheInstance.Client(), cfg.Risk, nil),
		risk.NewDeviceEvaluator(),
		risk.NewReputationEvaluator(threats),
	}
	if resolver != nil {
		evaluators = append(evaluators, risk.NewGeoVelocityEvaluator(resolver, cfg.Risk.MaxTravelSpeedKmh, nil))
	}

	engine := risk.NewEngine(profiles, evaluators, resolver, logger, nil)

	securityMonitor := monitor.NewSecurityMonitor(
		threats, profiles, auditor, cacheInstance, logger, cfg.Monitor, cfg.Risk, nil,
	)
	securityMonitor.Start(ctx)

	jwtManager := jwt.NewJwtManager(&cfg.Server)

	middlewareTransport := middleware.Transport{
		AdminAuthMiddleware:       middleware.NewAdminAuthMiddleware(logger, jwtManager),
		ThreatDetectionMiddleware: middleware.NewThreatDetectionMiddleware(logger, securityMonitor, cacheInstance),
		MetricsMiddleware:         middleware.NewMetricsMiddleware(logger),
	}

	handlerTransport := handlers.HandlerTransport{
		AssessLoginHandler:    handlers.NewAssessLoginHandler(logger, engine, auditor),
		GetUserProfileHandler: handlers.NewGetUserProfileHandler(logger, profiles),

		ListThreatsHandler: handlers.NewListThreatsHandler(logger, threats),
		GetThreatHandler:   handlers.NewGetThreatHandler(logger, threats, cacheInstance),
		BlockIPHandler:     handlers.NewBlockIPHandler(logger, threats, auditor),
		UnblockIPHandler:   handlers.NewUnblockIPHandler(logger, threats, auditor),

		QueryAuditEventsHandler:  handlers.NewQueryAuditEventsHandler(logger, auditor),
		ComplianceReportHandler:  handlers.NewComplianceReportHandler(logger, auditor),
		ExportAuditEventsHandler: handlers.NewExportAuditEventsHandler(logger, auditor),

		SecurityDashboardHandler: handlers.NewSecurityDashboardHandler(logger, securityMonitor, auditEvents),
		GetVersionHandler:        handlers.NewGetVersionHandler(logger),
	}

	srv := server.NewAdminServer(server.AdminServerDI{
		MiddlewareTransport: middlewareTransport,
		HandlerTransport:    handlerTransport,
		Config:              cfg,
		Logger:              logger,
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server...")
	if err := srv.Shutdown(); err != nil {
		logger.WithError(err).Error("error shutting down server")
	}
	// Stop flushes a final snapshot before exit.
	securityMonitor.Stop()
	logger.Info("server gracefully stopped")
}

func buildGeoResolver(cfg *config.Config, logger *logrus.Logger) geoip.Resolver {
	if cfg.GeoIP.TablePath == "" {
		logger.Info("no geoip table configured, geo velocity checks disabled")
		return nil
	}
	static, err := geoip.NewStaticResolverFromFile(cfg.GeoIP.TablePath)
	if err != nil {
		logger.Fatalf("Failed to load geoip table: %v", err)
	}
	return geoip.NewBreakerResolver(static, 2*time.Second, 5)
}
