package routing

import (
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/oinez/internal/core/domain"
	"github.com/samirrijal/oinez/internal/core/knowledge"
)

// maxHopM is the longest possible lattice hop, the diagonal of one grid
// step (~15.7 m), with slack for floating point.
const maxHopM = 16.0

func TestFindRoute_StraightLine(t *testing.T) {
	kb := knowledge.New()
	engine := NewEngine(0)

	start := domain.GeoPoint{Lat: 0, Lon: 0}
	end := domain.GeoPoint{Lat: 0, Lon: 0.0003}

	route, err := engine.FindRoute(kb, start, end, domain.AccessibilityPreferences{})
	if err != nil {
		t.Fatalf("expected a route, got %v", err)
	}
	if len(route.Points) < 2 {
		t.Fatalf("expected at least 2 points, got %d", len(route.Points))
	}
	if route.Points[0] != start {
		t.Errorf("route must begin at the exact start, got %+v", route.Points[0])
	}

	last := route.Points[len(route.Points)-1]
	if d := distance(last, end); d > arrivalToleranceM {
		t.Errorf("route ends %f m from destination, tolerance is %f", d, arrivalToleranceM)
	}

	for i := 0; i+1 < len(route.Points); i++ {
		if d := distance(route.Points[i], route.Points[i+1]); d > maxHopM {
			t.Errorf("hop %d spans %f m, exceeds one lattice step", i, d)
		}
	}
}

func TestFindRoute_StartWithinTolerance(t *testing.T) {
	kb := knowledge.New()
	engine := NewEngine(0)

	start := domain.GeoPoint{Lat: 43.263, Lon: -2.935}
	end := domain.GeoPoint{Lat: 43.263, Lon: -2.93500002} // well under 5 m away

	route, err := engine.FindRoute(kb, start, end, domain.AccessibilityPreferences{})
	if err != nil {
		t.Fatalf("expected immediate arrival, got %v", err)
	}
	if len(route.Points) != 1 || route.Points[0] != start {
		t.Errorf("expected the single-point route [start], got %+v", route.Points)
	}
}

func TestFindRoute_OffLatticeDestination(t *testing.T) {
	kb := knowledge.New()
	engine := NewEngine(0)

	start := domain.GeoPoint{Lat: 0, Lon: 0}
	end := domain.GeoPoint{Lat: 0, Lon: 0.00031} // between lattice points

	route, err := engine.FindRoute(kb, start, end, domain.AccessibilityPreferences{})
	if err != nil {
		t.Fatalf("expected a route, got %v", err)
	}
	last := route.Points[len(route.Points)-1]
	if d := distance(last, end); d > arrivalToleranceM {
		t.Errorf("route ends %f m from destination, tolerance is %f", d, arrivalToleranceM)
	}
}

func TestFindRoute_DetoursAroundStairs(t *testing.T) {
	kb := knowledge.New()
	stairs := domain.GeoPoint{Lat: 0, Lon: 0.0003}
	kb.AddObstacle(domain.AccessibilityObstacle{Type: domain.ObstacleStairs, Location: stairs})
	engine := NewEngine(0)

	start := domain.GeoPoint{Lat: 0, Lon: 0}
	end := domain.GeoPoint{Lat: 0, Lon: 0.0006}
	prefs := domain.AccessibilityPreferences{RequiresWheelchairAccess: true}

	route, err := engine.FindRoute(kb, start, end, prefs)
	if err != nil {
		t.Fatalf("expected a detour around the stairs, got %v", err)
	}

	// No visited point may sit inside the stairs' exclusion radius. The
	// start itself is 33 m away, so it does not mask a violation.
	for i, p := range route.Points {
		if d := distance(p, stairs); d <= 20 {
			t.Errorf("point %d is %f m from the stairs, inside the blocked zone", i, d)
		}
	}

	direct := distance(start, end)
	var total float64
	for i := 0; i+1 < len(route.Points); i++ {
		total += distance(route.Points[i], route.Points[i+1])
	}
	if total <= direct {
		t.Errorf("detour length %f m should exceed the %f m direct line", total, direct)
	}
}

func TestFindRoute_BudgetExhaustion(t *testing.T) {
	kb := knowledge.New()
	// Stairs on the destination make every arrival node inaccessible for a
	// wheelchair rider; the lattice is unbounded, so the budget trips first.
	end := domain.GeoPoint{Lat: 0, Lon: 0.0006}
	kb.AddObstacle(domain.AccessibilityObstacle{Type: domain.ObstacleStairs, Location: end})

	engine := NewEngine(500)
	prefs := domain.AccessibilityPreferences{RequiresWheelchairAccess: true}

	_, err := engine.FindRoute(kb, domain.GeoPoint{Lat: 0, Lon: 0}, end, prefs)
	if !errors.Is(err, ErrNoRoute) {
		t.Fatalf("expected ErrNoRoute after budget exhaustion, got %v", err)
	}
}

func TestFindRoute_Deterministic(t *testing.T) {
	kb := knowledge.New()
	kb.AddObstacle(domain.AccessibilityObstacle{Type: domain.ObstaclePoorLighting, Location: domain.GeoPoint{Lat: 0, Lon: 0.0002}})
	engine := NewEngine(0)

	start := domain.GeoPoint{Lat: 0, Lon: 0}
	end := domain.GeoPoint{Lat: 0.0003, Lon: 0.0004}
	prefs := domain.AccessibilityPreferences{PreferWellLit: true}

	first, err := engine.FindRoute(kb, start, end, prefs)
	if err != nil {
		t.Fatalf("first search failed: %v", err)
	}
	second, err := engine.FindRoute(kb, start, end, prefs)
	if err != nil {
		t.Fatalf("second search failed: %v", err)
	}

	if len(first.Points) != len(second.Points) {
		t.Fatalf("route lengths differ: %d vs %d", len(first.Points), len(second.Points))
	}
	for i := range first.Points {
		if first.Points[i] != second.Points[i] {
			t.Errorf("routes diverge at point %d: %+v vs %+v", i, first.Points[i], second.Points[i])
		}
	}
}

func TestNewEngine_DefaultBudget(t *testing.T) {
	if e := NewEngine(0); e.maxExpansions != DefaultMaxExpansions {
		t.Errorf("expected default budget %d, got %d", DefaultMaxExpansions, e.maxExpansions)
	}
	if e := NewEngine(-3); e.maxExpansions != DefaultMaxExpansions {
		t.Errorf("expected default budget for negative input, got %d", e.maxExpansions)
	}
	if e := NewEngine(1000); e.maxExpansions != 1000 {
		t.Errorf("expected explicit budget 1000, got %d", e.maxExpansions)
	}
}

func TestLowestF_PanicsOnEmptyFrontier(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic on an empty frontier")
		}
	}()
	lowestF(nil, map[gridKey]float64{})
}

func TestNeighbors_EightDistinct(t *testing.T) {
	p := domain.GeoPoint{Lat: 43.263, Lon: -2.935}
	nbs := neighbors(p)
	if len(nbs) != 8 {
		t.Fatalf("expected 8 neighbors, got %d", len(nbs))
	}
	seen := make(map[gridKey]bool)
	for _, nb := range nbs {
		if nb == p {
			t.Error("neighbor set must not contain the point itself")
		}
		k := keyOf(nb)
		if seen[k] {
			t.Errorf("duplicate neighbor %+v", nb)
		}
		seen[k] = true

		dLat := math.Abs(nb.Lat - p.Lat)
		dLon := math.Abs(nb.Lon - p.Lon)
		if dLat > gridStepDeg+1e-12 || dLon > gridStepDeg+1e-12 {
			t.Errorf("neighbor %+v is more than one step away", nb)
		}
	}
}
