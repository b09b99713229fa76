package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"time"

	natsadapter "github.com/samirrijal/oinez/internal/adapters/nats"
	"github.com/samirrijal/oinez/internal/adapters/postgres"
	"github.com/samirrijal/oinez/internal/core/domain"
	"github.com/samirrijal/oinez/internal/core/ports"
	"github.com/samirrijal/oinez/internal/core/usecases"
	"github.com/samirrijal/oinez/internal/pkg/config"
	"github.com/samirrijal/oinez/internal/pkg/logging"
)

// seedFile is the on-disk format for bulk accessibility data: a snapshot
// of known obstacles and features, typically exported from a municipal
// accessibility survey.
type seedFile struct {
	Obstacles []struct {
		Type           string          `json:"type"`
		Location       domain.GeoPoint `json:"location"`
		Description    string          `json:"description"`
		TemporaryUntil *time.Time      `json:"temporary_until"`
	} `json:"obstacles"`
	Features []struct {
		Type        string          `json:"type"`
		Location    domain.GeoPoint `json:"location"`
		Description string          `json:"description"`
	} `json:"features"`
}

// The seeder replays a snapshot file through the regular report pipeline,
// so seeded entries are persisted, broadcast, and picked up by every
// running API instance like any community report.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: seed <snapshot.json>")
	}

	cfg, err := config.Load("oinez-seed")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("read snapshot: %v", err)
	}
	var snapshot seedFile
	if err := json.Unmarshal(data, &snapshot); err != nil {
		log.Fatalf("parse snapshot: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, seeding history only", "error", err)
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

	var failed int
	for _, o := range snapshot.Obstacles {
		_, err := reportSvc.ReportObstacle(ctx, domain.AccessibilityObstacle{
			Type:           domain.ObstacleType(o.Type),
			Location:       o.Location,
			Description:    o.Description,
			TemporaryUntil: o.TemporaryUntil,
		})
		if err != nil {
			slog.Error("seed obstacle", "type", o.Type, "error", err)
			failed++
		}
	}
	for _, f := range snapshot.Features {
		_, err := reportSvc.ReportFeature(ctx, domain.AccessibilityFeature{
			Type:        domain.FeatureType(f.Type),
			Location:    f.Location,
			Description: f.Description,
		})
		if err != nil {
			slog.Error("seed feature", "type", f.Type, "error", err)
			failed++
		}
	}

	slog.Info("seed complete",
		"obstacles", len(snapshot.Obstacles),
		"features", len(snapshot.Features),
		"failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}
