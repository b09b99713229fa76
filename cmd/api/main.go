package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/oinez/internal/adapters/http"
	natsadapter "github.com/samirrijal/oinez/internal/adapters/nats"
	"github.com/samirrijal/oinez/internal/adapters/postgres"
	"github.com/samirrijal/oinez/internal/adapters/temporalwf"
	"github.com/samirrijal/oinez/internal/adapters/valkey"
	"github.com/samirrijal/oinez/internal/core/ports"
	"github.com/samirrijal/oinez/internal/core/routing"
	"github.com/samirrijal/oinez/internal/core/usecases"
	"github.com/samirrijal/oinez/internal/pkg/config"
	"github.com/samirrijal/oinez/internal/pkg/logging"
	"github.com/samirrijal/oinez/internal/pkg/metrics"
	"github.com/samirrijal/oinez/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("oinez-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// Database (report history)
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}
	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}

	// NATS event fan-out
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}
	var pubSvc ports.EventPublisher
	if publisher != nil {
		pubSvc = publisher
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Temporal (temporary obstacle expiry)
	var wfSvc ports.WorkflowStarter
	if cfg.Temporal.Enabled {
		starter, err := temporalwf.New(cfg.Temporal.HostPort, cfg.Temporal.Namespace)
		if err != nil {
			slog.Warn("temporal unavailable", "error", err)
		} else {
			defer starter.Close()
			wfSvc = starter
		}
	}

	// Knowledge base & services
	kb := usecases.NewSharedKnowledge()
	engine := routing.NewEngine(cfg.Routing.MaxExpansions)
	reportRepo := postgres.NewReportRepo(db)

	navSvc := usecases.NewNavigationService(kb, engine, cacheSvc)
	reportSvc := usecases.NewReportService(kb, reportRepo, pubSvc, wfSvc)
	prefSvc := usecases.NewPreferenceService(cacheSvc)

	// Subscribe to sibling instances' reports so the local knowledge base
	// converges with theirs.
	subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats subscriber unavailable", "error", err)
	} else {
		defer subscriber.Close()
		if err := subscriber.SubscribeObstacleReported(ctx, reportSvc.ApplyObstacleEvent); err != nil {
			slog.Warn("subscribe obstacle events", "error", err)
		}
		if err := subscriber.SubscribeFeatureReported(ctx, reportSvc.ApplyFeatureEvent); err != nil {
			slog.Warn("subscribe feature events", "error", err)
		}
		if err := subscriber.SubscribeObstacleCleared(ctx, reportSvc.ApplyClearEvent); err != nil {
			slog.Warn("subscribe clear events", "error", err)
		}
	}

	// Export DB pool gauges
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()

	deps := &http.Dependencies{
		Navigation:  navSvc,
		Reports:     reportSvc,
		Preferences: prefSvc,
		NATS:        natsConn,
		DB:          db,
		Cache:       cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Oinez Navigation API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.oinez.eus",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "origin", reportSvc.Origin())
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
