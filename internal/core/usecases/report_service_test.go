package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samirrijal/oinez/internal/core/domain"
	"github.com/samirrijal/oinez/internal/core/knowledge"
)

// mockReportRepo implements ports.ReportRepository with function fields.
type mockReportRepo struct {
	insertFn      func(ctx context.Context, report *domain.Report) error
	listRecentFn  func(ctx context.Context, limit, offset int) ([]domain.Report, error)
	countFn       func(ctx context.Context) (int, error)
	countByKindFn func(ctx context.Context) (map[string]int, error)
}

func (m *mockReportRepo) Insert(ctx context.Context, report *domain.Report) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, report)
	}
	return nil
}

func (m *mockReportRepo) ListRecent(ctx context.Context, limit, offset int) ([]domain.Report, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockReportRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockReportRepo) CountByKind(ctx context.Context) (map[string]int, error) {
	if m.countByKindFn != nil {
		return m.countByKindFn(ctx)
	}
	return map[string]int{}, nil
}

// mockPublisher implements ports.EventPublisher and records what it saw.
type mockPublisher struct {
	obstacleEvents []*domain.ReportEvent
	featureEvents  []*domain.ReportEvent
	clearEvents    []*domain.ClearEvent
}

func (m *mockPublisher) PublishObstacleReported(ctx context.Context, ev *domain.ReportEvent) error {
	m.obstacleEvents = append(m.obstacleEvents, ev)
	return nil
}

func (m *mockPublisher) PublishFeatureReported(ctx context.Context, ev *domain.ReportEvent) error {
	m.featureEvents = append(m.featureEvents, ev)
	return nil
}

func (m *mockPublisher) PublishObstacleCleared(ctx context.Context, ev *domain.ClearEvent) error {
	m.clearEvents = append(m.clearEvents, ev)
	return nil
}

// mockStarter implements ports.WorkflowStarter.
type mockStarter struct {
	startFn func(ctx context.Context, location domain.GeoPoint, expiresAt time.Time) error
	started []domain.GeoPoint
}

func (m *mockStarter) StartObstacleExpiry(ctx context.Context, location domain.GeoPoint, expiresAt time.Time) error {
	m.started = append(m.started, location)
	if m.startFn != nil {
		return m.startFn(ctx, location, expiresAt)
	}
	return nil
}

func obstacleCount(kb *SharedKnowledge) int {
	var n int
	kb.Read(func(b *knowledge.Base) { n = b.ObstacleCount() })
	return n
}

func featureCount(kb *SharedKnowledge) int {
	var n int
	kb.Read(func(b *knowledge.Base) { n = b.FeatureCount() })
	return n
}

func TestReportObstacle_AppliesPersistsBroadcasts(t *testing.T) {
	kb := NewSharedKnowledge()
	var inserted *domain.Report
	repo := &mockReportRepo{insertFn: func(ctx context.Context, r *domain.Report) error {
		inserted = r
		return nil
	}}
	pub := &mockPublisher{}
	svc := NewReportService(kb, repo, pub, nil)

	report, err := svc.ReportObstacle(context.Background(), domain.AccessibilityObstacle{
		Type:     domain.ObstacleConstruction,
		Location: domain.GeoPoint{Lat: 43.263, Lon: -2.935},
	})
	if err != nil {
		t.Fatalf("report obstacle: %v", err)
	}
	if report.Kind != domain.ReportKindObstacle || report.Type != "construction" {
		t.Errorf("unexpected report %+v", report)
	}
	if obstacleCount(kb) != 1 {
		t.Error("obstacle not applied to the knowledge base")
	}
	if inserted == nil {
		t.Error("report not persisted")
	}
	if len(pub.obstacleEvents) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(pub.obstacleEvents))
	}
	if pub.obstacleEvents[0].Origin != svc.Origin() {
		t.Error("broadcast must carry this instance's origin tag")
	}
}

func TestReportObstacle_UnknownType(t *testing.T) {
	kb := NewSharedKnowledge()
	svc := NewReportService(kb, nil, nil, nil)

	_, err := svc.ReportObstacle(context.Background(), domain.AccessibilityObstacle{Type: "lava"})
	if err == nil {
		t.Fatal("expected an error for an unknown obstacle type")
	}
	if obstacleCount(kb) != 0 {
		t.Error("invalid obstacle must not reach the knowledge base")
	}
}

func TestReportObstacle_InsertErrorPropagates(t *testing.T) {
	repo := &mockReportRepo{insertFn: func(ctx context.Context, r *domain.Report) error {
		return errors.New("connection refused")
	}}
	svc := NewReportService(NewSharedKnowledge(), repo, nil, nil)

	_, err := svc.ReportObstacle(context.Background(), domain.AccessibilityObstacle{
		Type: domain.ObstacleStairs,
	})
	if err == nil {
		t.Fatal("expected the insert error to propagate")
	}
}

func TestReportObstacle_TemporarySchedulesExpiry(t *testing.T) {
	starter := &mockStarter{}
	svc := NewReportService(NewSharedKnowledge(), nil, nil, starter)

	until := time.Now().Add(2 * time.Hour)
	loc := domain.GeoPoint{Lat: 43.263, Lon: -2.935}
	_, err := svc.ReportObstacle(context.Background(), domain.AccessibilityObstacle{
		Type:           domain.ObstacleConstruction,
		Location:       loc,
		TemporaryUntil: &until,
	})
	if err != nil {
		t.Fatalf("report obstacle: %v", err)
	}
	if len(starter.started) != 1 || starter.started[0] != loc {
		t.Errorf("expected one expiry workflow at %+v, got %+v", loc, starter.started)
	}
}

func TestReportObstacle_PermanentSkipsExpiry(t *testing.T) {
	starter := &mockStarter{}
	svc := NewReportService(NewSharedKnowledge(), nil, nil, starter)

	_, err := svc.ReportObstacle(context.Background(), domain.AccessibilityObstacle{
		Type: domain.ObstacleStairs,
	})
	if err != nil {
		t.Fatalf("report obstacle: %v", err)
	}
	if len(starter.started) != 0 {
		t.Error("permanent obstacles must not schedule expiry")
	}
}

func TestReportFeature_ArrivesActive(t *testing.T) {
	kb := NewSharedKnowledge()
	pub := &mockPublisher{}
	svc := NewReportService(kb, nil, pub, nil)

	loc := domain.GeoPoint{Lat: 43.263, Lon: -2.935}
	_, err := svc.ReportFeature(context.Background(), domain.AccessibilityFeature{
		Type:     domain.FeatureRamp,
		Location: loc,
		IsActive: false, // the pipeline forces active
	})
	if err != nil {
		t.Fatalf("report feature: %v", err)
	}

	var near []domain.AccessibilityFeature
	kb.Read(func(b *knowledge.Base) { near = b.FeaturesNear(loc, 10) })
	if len(near) != 1 {
		t.Fatal("reported feature should be active and queryable")
	}
	if len(pub.featureEvents) != 1 {
		t.Errorf("expected 1 feature broadcast, got %d", len(pub.featureEvents))
	}
}

func TestClearObstaclesNear_RemovesAndBroadcasts(t *testing.T) {
	kb := NewSharedKnowledge()
	pub := &mockPublisher{}
	svc := NewReportService(kb, nil, pub, nil)

	loc := domain.GeoPoint{Lat: 43.263, Lon: -2.935}
	if _, err := svc.ReportObstacle(context.Background(), domain.AccessibilityObstacle{
		Type:     domain.ObstacleConstruction,
		Location: loc,
	}); err != nil {
		t.Fatalf("seed obstacle: %v", err)
	}

	removed, err := svc.ClearObstaclesNear(context.Background(), loc)
	if err != nil {
		t.Fatalf("clear obstacles: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if obstacleCount(kb) != 0 {
		t.Error("obstacle still in the knowledge base")
	}
	if len(pub.clearEvents) != 1 {
		t.Fatalf("expected 1 clear broadcast, got %d", len(pub.clearEvents))
	}
	if pub.clearEvents[0].Removed != 1 {
		t.Errorf("broadcast removed count %d, want 1", pub.clearEvents[0].Removed)
	}
}

func TestClearObstaclesNear_BroadcastsEvenWhenEmpty(t *testing.T) {
	pub := &mockPublisher{}
	svc := NewReportService(NewSharedKnowledge(), nil, pub, nil)

	removed, err := svc.ClearObstaclesNear(context.Background(), domain.GeoPoint{Lat: 1, Lon: 1})
	if err != nil {
		t.Fatalf("clear obstacles: %v", err)
	}
	if removed != 0 {
		t.Errorf("expected 0 removed, got %d", removed)
	}
	// Siblings may still hold the obstacle, so the clearance goes out anyway.
	if len(pub.clearEvents) != 1 {
		t.Errorf("expected the clearance broadcast, got %d events", len(pub.clearEvents))
	}
}

func TestApplyObstacleEvent_SkipsOwnOrigin(t *testing.T) {
	kb := NewSharedKnowledge()
	svc := NewReportService(kb, nil, nil, nil)

	ev := &domain.ReportEvent{
		Origin: svc.Origin(),
		Report: domain.Report{Type: "stairs", Location: domain.GeoPoint{Lat: 1, Lon: 1}},
	}
	if err := svc.ApplyObstacleEvent(context.Background(), ev); err != nil {
		t.Fatalf("apply event: %v", err)
	}
	if obstacleCount(kb) != 0 {
		t.Error("own events must not be applied twice")
	}
}

func TestApplyObstacleEvent_AppliesForeignOrigin(t *testing.T) {
	kb := NewSharedKnowledge()
	svc := NewReportService(kb, nil, nil, nil)

	ev := &domain.ReportEvent{
		Origin: "sibling-instance",
		Report: domain.Report{Type: "stairs", Location: domain.GeoPoint{Lat: 1, Lon: 1}},
	}
	if err := svc.ApplyObstacleEvent(context.Background(), ev); err != nil {
		t.Fatalf("apply event: %v", err)
	}
	if obstacleCount(kb) != 1 {
		t.Error("foreign event not applied")
	}
}

func TestApplyObstacleEvent_RejectsUnknownType(t *testing.T) {
	svc := NewReportService(NewSharedKnowledge(), nil, nil, nil)

	ev := &domain.ReportEvent{
		Origin: "sibling-instance",
		Report: domain.Report{Type: "lava"},
	}
	if err := svc.ApplyObstacleEvent(context.Background(), ev); err == nil {
		t.Error("expected an error for an unknown type in a foreign event")
	}
}

func TestApplyFeatureEvent_AppliesForeignOrigin(t *testing.T) {
	kb := NewSharedKnowledge()
	svc := NewReportService(kb, nil, nil, nil)

	ev := &domain.ReportEvent{
		Origin: "sibling-instance",
		Report: domain.Report{Type: "ramp", Location: domain.GeoPoint{Lat: 1, Lon: 1}},
	}
	if err := svc.ApplyFeatureEvent(context.Background(), ev); err != nil {
		t.Fatalf("apply event: %v", err)
	}
	if featureCount(kb) != 1 {
		t.Error("foreign feature event not applied")
	}
}

func TestApplyClearEvent_RemovesForeignClearance(t *testing.T) {
	kb := NewSharedKnowledge()
	svc := NewReportService(kb, nil, nil, nil)

	loc := domain.GeoPoint{Lat: 1, Lon: 1}
	kb.Write(func(b *knowledge.Base) {
		b.AddObstacle(domain.AccessibilityObstacle{Type: domain.ObstacleStairs, Location: loc})
	})

	ev := &domain.ClearEvent{Origin: "sibling-instance", Location: loc, Removed: 1}
	if err := svc.ApplyClearEvent(context.Background(), ev); err != nil {
		t.Fatalf("apply event: %v", err)
	}
	if obstacleCount(kb) != 0 {
		t.Error("foreign clearance not applied")
	}

	// Own clearance events are a no-op.
	kb.Write(func(b *knowledge.Base) {
		b.AddObstacle(domain.AccessibilityObstacle{Type: domain.ObstacleStairs, Location: loc})
	})
	own := &domain.ClearEvent{Origin: svc.Origin(), Location: loc, Removed: 1}
	if err := svc.ApplyClearEvent(context.Background(), own); err != nil {
		t.Fatalf("apply own event: %v", err)
	}
	if obstacleCount(kb) != 1 {
		t.Error("own clearance must not be applied twice")
	}
}

func TestListReports_NoRepository(t *testing.T) {
	svc := NewReportService(NewSharedKnowledge(), nil, nil, nil)
	if _, _, err := svc.ListReports(context.Background(), 10, 0); err == nil {
		t.Error("expected an error without a report history backend")
	}
}

func TestListReports_ClampsPaging(t *testing.T) {
	var gotLimit, gotOffset int
	repo := &mockReportRepo{
		listRecentFn: func(ctx context.Context, limit, offset int) ([]domain.Report, error) {
			gotLimit, gotOffset = limit, offset
			return nil, nil
		},
		countFn: func(ctx context.Context) (int, error) { return 0, nil },
	}
	svc := NewReportService(NewSharedKnowledge(), repo, nil, nil)

	if _, _, err := svc.ListReports(context.Background(), 0, -5); err != nil {
		t.Fatalf("list reports: %v", err)
	}
	if gotLimit != 50 || gotOffset != 0 {
		t.Errorf("expected clamped paging (50, 0), got (%d, %d)", gotLimit, gotOffset)
	}

	if _, _, err := svc.ListReports(context.Background(), 1000, 20); err != nil {
		t.Fatalf("list reports: %v", err)
	}
	if gotLimit != 50 || gotOffset != 20 {
		t.Errorf("oversized limit should clamp to 50, got (%d, %d)", gotLimit, gotOffset)
	}
}

func TestStats_MergesHistoryAndLiveCounts(t *testing.T) {
	kb := NewSharedKnowledge()
	kb.Write(func(b *knowledge.Base) {
		b.AddObstacle(domain.AccessibilityObstacle{Type: domain.ObstacleStairs, Location: domain.GeoPoint{Lat: 1, Lon: 1}})
		b.AddFeature(domain.AccessibilityFeature{Type: domain.FeatureRamp, Location: domain.GeoPoint{Lat: 1, Lon: 1}, IsActive: true})
	})
	repo := &mockReportRepo{countByKindFn: func(ctx context.Context) (map[string]int, error) {
		return map[string]int{"obstacle": 4, "feature": 2}, nil
	}}
	svc := NewReportService(kb, repo, nil, nil)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := map[string]int{
		"reports_obstacle": 4,
		"reports_feature":  2,
		"active_obstacles": 1,
		"active_features":  1,
	}
	for k, v := range want {
		if stats[k] != v {
			t.Errorf("stats[%q] = %d, want %d", k, stats[k], v)
		}
	}
}
