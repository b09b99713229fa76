package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/oinez/internal/adapters/nats"
	"github.com/samirrijal/oinez/internal/adapters/postgres"
	"github.com/samirrijal/oinez/internal/core/ports"
	"github.com/samirrijal/oinez/internal/core/usecases"
	"github.com/samirrijal/oinez/internal/pkg/config"
	"github.com/samirrijal/oinez/internal/pkg/logging"
	"github.com/samirrijal/oinez/internal/workflows"
)

// The sweeper runs the durable timers that clear temporary obstacles once
// they expire. Clearances go through the same report pipeline as the API,
// so they land in the history and fan out to every running instance.
func main() {
	cfg, err := config.Load("oinez-sweeper")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, clears will not propagate", "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}
	var pubSvc ports.EventPublisher
	if publisher != nil {
		pubSvc = publisher
	}

	kb := usecases.NewSharedKnowledge()
	reportSvc := usecases.NewReportService(kb, postgres.NewReportRepo(db), pubSvc, nil)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, workflows.ExpiryTaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.ObstacleExpiryWorkflow)
	w.RegisterActivity(&workflows.ExpiryActivities{
		Reports: reportSvc,
	})

	slog.Info("sweeper worker started", "task_queue", workflows.ExpiryTaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
