package routing

import (
	"math"
	"testing"

	"github.com/samirrijal/oinez/internal/core/domain"
	"github.com/samirrijal/oinez/internal/core/knowledge"
)

var (
	segA = domain.GeoPoint{Lat: 0, Lon: 0}
	segB = domain.GeoPoint{Lat: 0, Lon: 0.0003} // ~33 m
)

func midpoint() domain.GeoPoint {
	return domain.GeoPoint{Lat: 0, Lon: 0.00015}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEdgeWeight_BaseIsDistance(t *testing.T) {
	kb := knowledge.New()
	base := EdgeWeight(kb, segA, segB, domain.AccessibilityPreferences{})
	if !almostEqual(base, distance(segA, segB)) {
		t.Errorf("expected base weight %f, got %f", distance(segA, segB), base)
	}
}

func TestEdgeWeight_StairsImpassableForWheelchair(t *testing.T) {
	kb := knowledge.New()
	kb.AddObstacle(domain.AccessibilityObstacle{Type: domain.ObstacleStairs, Location: midpoint()})

	prefs := domain.AccessibilityPreferences{RequiresWheelchairAccess: true}
	if w := EdgeWeight(kb, segA, segB, prefs); !math.IsInf(w, 1) {
		t.Errorf("expected +Inf for stairs under wheelchair access, got %f", w)
	}

	// The same segment stays at base cost without the requirement.
	if w := EdgeWeight(kb, segA, segB, domain.AccessibilityPreferences{}); !almostEqual(w, distance(segA, segB)) {
		t.Errorf("expected base weight without wheelchair requirement, got %f", w)
	}
}

func TestEdgeWeight_NarrowPathImpassableForWheelchair(t *testing.T) {
	kb := knowledge.New()
	kb.AddObstacle(domain.AccessibilityObstacle{Type: domain.ObstacleNarrowPath, Location: midpoint()})

	prefs := domain.AccessibilityPreferences{RequiresWheelchairAccess: true}
	if w := EdgeWeight(kb, segA, segB, prefs); !math.IsInf(w, 1) {
		t.Errorf("expected +Inf for narrow path under wheelchair access, got %f", w)
	}
}

func TestEdgeWeight_PoorLightingPenalty(t *testing.T) {
	kb := knowledge.New()
	kb.AddObstacle(domain.AccessibilityObstacle{Type: domain.ObstaclePoorLighting, Location: midpoint()})

	prefs := domain.AccessibilityPreferences{PreferWellLit: true}
	want := distance(segA, segB) * poorLightingPenalty
	if w := EdgeWeight(kb, segA, segB, prefs); !almostEqual(w, want) {
		t.Errorf("expected %f, got %f", want, w)
	}

	// No penalty for riders without the lighting preference.
	if w := EdgeWeight(kb, segA, segB, domain.AccessibilityPreferences{}); !almostEqual(w, distance(segA, segB)) {
		t.Errorf("expected base weight without lighting preference, got %f", w)
	}
}

func TestEdgeWeight_WheelchairAidDiscount(t *testing.T) {
	kb := knowledge.New()
	kb.AddFeature(domain.AccessibilityFeature{Type: domain.FeatureRamp, Location: midpoint(), IsActive: true})

	prefs := domain.AccessibilityPreferences{RequiresWheelchairAccess: true}
	want := distance(segA, segB) * wheelchairAidDiscount
	if w := EdgeWeight(kb, segA, segB, prefs); !almostEqual(w, want) {
		t.Errorf("expected %f, got %f", want, w)
	}
}

func TestEdgeWeight_RestAreaDiscount(t *testing.T) {
	kb := knowledge.New()
	kb.AddFeature(domain.AccessibilityFeature{Type: domain.FeatureRestArea, Location: midpoint(), IsActive: true})

	prefs := domain.AccessibilityPreferences{NeedsRestStops: true}
	want := distance(segA, segB) * restAreaDiscount
	if w := EdgeWeight(kb, segA, segB, prefs); !almostEqual(w, want) {
		t.Errorf("expected %f, got %f", want, w)
	}
}

func TestEdgeWeight_ModifiersCompound(t *testing.T) {
	kb := knowledge.New()
	kb.AddObstacle(domain.AccessibilityObstacle{Type: domain.ObstaclePoorLighting, Location: midpoint()})
	kb.AddFeature(domain.AccessibilityFeature{Type: domain.FeatureRestArea, Location: midpoint(), IsActive: true})

	prefs := domain.AccessibilityPreferences{PreferWellLit: true, NeedsRestStops: true}
	want := distance(segA, segB) * poorLightingPenalty * restAreaDiscount
	if w := EdgeWeight(kb, segA, segB, prefs); !almostEqual(w, want) {
		t.Errorf("expected %f, got %f", want, w)
	}
}

func TestEdgeWeight_DuplicateObstaclesStack(t *testing.T) {
	kb := knowledge.New()
	kb.AddObstacle(domain.AccessibilityObstacle{Type: domain.ObstaclePoorLighting, Location: midpoint()})
	kb.AddObstacle(domain.AccessibilityObstacle{Type: domain.ObstaclePoorLighting, Location: midpoint()})

	prefs := domain.AccessibilityPreferences{PreferWellLit: true}
	want := distance(segA, segB) * poorLightingPenalty * poorLightingPenalty
	if w := EdgeWeight(kb, segA, segB, prefs); !almostEqual(w, want) {
		t.Errorf("expected stacked penalty %f, got %f", want, w)
	}
}

func TestEdgeWeight_InactiveFeatureIgnored(t *testing.T) {
	kb := knowledge.New()
	kb.AddFeature(domain.AccessibilityFeature{Type: domain.FeatureRamp, Location: midpoint(), IsActive: false})

	prefs := domain.AccessibilityPreferences{RequiresWheelchairAccess: true}
	if w := EdgeWeight(kb, segA, segB, prefs); !almostEqual(w, distance(segA, segB)) {
		t.Errorf("expected base weight when the ramp is inactive, got %f", w)
	}
}

func TestEdgeWeight_ReservedPreferencesInert(t *testing.T) {
	kb := knowledge.New()
	kb.AddObstacle(domain.AccessibilityObstacle{Type: domain.ObstacleUnevenSurface, Location: midpoint()})

	slope := 5.0
	width := 1.2
	prefs := domain.AccessibilityPreferences{MaximumSlope: &slope, MinimumPathWidth: &width}
	if w := EdgeWeight(kb, segA, segB, prefs); !almostEqual(w, distance(segA, segB)) {
		t.Errorf("reserved preferences must not change the weight, got %f", w)
	}
}
