package usecases

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/samirrijal/oinez/internal/core/domain"
	"github.com/samirrijal/oinez/internal/core/knowledge"
	"github.com/samirrijal/oinez/internal/core/ports"
)

// ReportService handles the accessibility report pipeline: intake from
// clients, history persistence, event fan-out to sibling instances, and
// application of incoming events to the local knowledge base.
//
// Repository, publisher, and workflow starter may each be nil; the service
// degrades to in-memory-only operation, which is what the unit tests and
// single-node deployments use.
type ReportService struct {
	kb        *SharedKnowledge
	reports   ports.ReportRepository
	publisher ports.EventPublisher
	workflows ports.WorkflowStarter
	origin    string
}

// NewReportService creates a new ReportService with a random origin tag.
func NewReportService(kb *SharedKnowledge, reports ports.ReportRepository, publisher ports.EventPublisher, workflows ports.WorkflowStarter) *ReportService {
	return &ReportService{
		kb:        kb,
		reports:   reports,
		publisher: publisher,
		workflows: workflows,
		origin:    newOrigin(),
	}
}

// Origin returns this instance's event origin tag.
func (s *ReportService) Origin() string { return s.origin }

// ReportObstacle records a new obstacle: applies it to the local knowledge
// base, appends it to the report history, broadcasts it, and schedules
// expiry for temporary obstacles.
func (s *ReportService) ReportObstacle(ctx context.Context, o domain.AccessibilityObstacle) (*domain.Report, error) {
	if !domain.ValidObstacleType(o.Type) {
		return nil, fmt.Errorf("unknown obstacle type: %s", o.Type)
	}

	s.kb.Write(func(b *knowledge.Base) {
		b.AddObstacle(o)
	})

	report := &domain.Report{
		Kind:           domain.ReportKindObstacle,
		Type:           string(o.Type),
		Location:       o.Location,
		Description:    o.Description,
		TemporaryUntil: o.TemporaryUntil,
		ReportedAt:     time.Now().UTC(),
	}
	if s.reports != nil {
		if err := s.reports.Insert(ctx, report); err != nil {
			return nil, fmt.Errorf("insert obstacle report: %w", err)
		}
	}

	if s.publisher != nil {
		ev := &domain.ReportEvent{Origin: s.origin, Report: *report}
		_ = s.publisher.PublishObstacleReported(ctx, ev)
	}

	if o.TemporaryUntil != nil && s.workflows != nil {
		if err := s.workflows.StartObstacleExpiry(ctx, o.Location, *o.TemporaryUntil); err != nil {
			return nil, fmt.Errorf("schedule obstacle expiry: %w", err)
		}
	}

	return report, nil
}

// ReportFeature records a new accessibility feature. Features arrive active;
// deactivation is an operator action outside the report pipeline.
func (s *ReportService) ReportFeature(ctx context.Context, f domain.AccessibilityFeature) (*domain.Report, error) {
	if !domain.ValidFeatureType(f.Type) {
		return nil, fmt.Errorf("unknown feature type: %s", f.Type)
	}
	f.IsActive = true

	s.kb.Write(func(b *knowledge.Base) {
		b.AddFeature(f)
	})

	report := &domain.Report{
		Kind:        domain.ReportKindFeature,
		Type:        string(f.Type),
		Location:    f.Location,
		Description: f.Description,
		ReportedAt:  time.Now().UTC(),
	}
	if s.reports != nil {
		if err := s.reports.Insert(ctx, report); err != nil {
			return nil, fmt.Errorf("insert feature report: %w", err)
		}
	}

	if s.publisher != nil {
		ev := &domain.ReportEvent{Origin: s.origin, Report: *report}
		_ = s.publisher.PublishFeatureReported(ctx, ev)
	}

	return report, nil
}

// ClearObstaclesNear purges every obstacle within one meter of p and
// returns how many were removed. The clearance is recorded in the history
// and broadcast even when nothing matched, so siblings converge.
func (s *ReportService) ClearObstaclesNear(ctx context.Context, p domain.GeoPoint) (int, error) {
	removed := 0
	s.kb.Write(func(b *knowledge.Base) {
		removed = b.RemoveObstaclesNear(p)
	})

	report := &domain.Report{
		Kind:       domain.ReportKindCleared,
		Location:   p,
		ReportedAt: time.Now().UTC(),
	}
	if s.reports != nil {
		if err := s.reports.Insert(ctx, report); err != nil {
			return removed, fmt.Errorf("insert clearance report: %w", err)
		}
	}

	if s.publisher != nil {
		ev := &domain.ClearEvent{
			Origin:    s.origin,
			Location:  p,
			Removed:   removed,
			ClearedAt: report.ReportedAt,
		}
		_ = s.publisher.PublishObstacleCleared(ctx, ev)
	}

	return removed, nil
}

// ApplyObstacleEvent applies a broadcast obstacle report to the local
// knowledge base, skipping events this instance published itself.
func (s *ReportService) ApplyObstacleEvent(ctx context.Context, ev *domain.ReportEvent) error {
	if ev.Origin == s.origin {
		return nil
	}
	o := domain.AccessibilityObstacle{
		Type:           domain.ObstacleType(ev.Report.Type),
		Location:       ev.Report.Location,
		Description:    ev.Report.Description,
		TemporaryUntil: ev.Report.TemporaryUntil,
	}
	if !domain.ValidObstacleType(o.Type) {
		return fmt.Errorf("event with unknown obstacle type: %s", o.Type)
	}
	s.kb.Write(func(b *knowledge.Base) {
		b.AddObstacle(o)
	})
	return nil
}

// ApplyFeatureEvent applies a broadcast feature report to the local
// knowledge base, skipping this instance's own events.
func (s *ReportService) ApplyFeatureEvent(ctx context.Context, ev *domain.ReportEvent) error {
	if ev.Origin == s.origin {
		return nil
	}
	f := domain.AccessibilityFeature{
		Type:        domain.FeatureType(ev.Report.Type),
		Location:    ev.Report.Location,
		Description: ev.Report.Description,
		IsActive:    true,
	}
	if !domain.ValidFeatureType(f.Type) {
		return fmt.Errorf("event with unknown feature type: %s", f.Type)
	}
	s.kb.Write(func(b *knowledge.Base) {
		b.AddFeature(f)
	})
	return nil
}

// ApplyClearEvent applies a broadcast clearance to the local knowledge base,
// skipping this instance's own events.
func (s *ReportService) ApplyClearEvent(ctx context.Context, ev *domain.ClearEvent) error {
	if ev.Origin == s.origin {
		return nil
	}
	s.kb.Write(func(b *knowledge.Base) {
		b.RemoveObstaclesNear(ev.Location)
	})
	return nil
}

// ListReports returns a page of the report history, newest first.
func (s *ReportService) ListReports(ctx context.Context, limit, offset int) ([]domain.Report, int, error) {
	if s.reports == nil {
		return nil, 0, fmt.Errorf("report history not available")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	reports, err := s.reports.ListRecent(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.reports.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// Stats returns report counts per kind plus the live knowledge-base sizes.
func (s *ReportService) Stats(ctx context.Context) (map[string]int, error) {
	stats := make(map[string]int)
	if s.reports != nil {
		byKind, err := s.reports.CountByKind(ctx)
		if err != nil {
			return nil, err
		}
		for k, v := range byKind {
			stats["reports_"+k] = v
		}
	}

	s.kb.Read(func(b *knowledge.Base) {
		stats["active_obstacles"] = b.ObstacleCount()
		stats["active_features"] = b.FeatureCount()
	})
	return stats, nil
}

func newOrigin() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fmt.Sprintf("origin-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf[:])
}
