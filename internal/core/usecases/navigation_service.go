package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/oinez/internal/core/domain"
	"github.com/samirrijal/oinez/internal/core/knowledge"
	"github.com/samirrijal/oinez/internal/core/ports"
	"github.com/samirrijal/oinez/internal/core/routing"
	"github.com/samirrijal/oinez/internal/pkg/geospatial"
)

// PlannedRoute is the full result of a route search: the path itself plus
// the annotations the narration layer reads out.
type PlannedRoute struct {
	Route     domain.Route                  `json:"route"`
	DistanceM float64                       `json:"distance_m"`
	Features  []domain.AccessibilityFeature `json:"features"`
	Guidance  []domain.GuidanceStep         `json:"guidance"`
}

// NavigationService plans accessible routes and answers map queries
// against the knowledge base.
type NavigationService struct {
	kb     *SharedKnowledge
	engine *routing.Engine
	cache  ports.CacheService
}

// NewNavigationService creates a new NavigationService.
func NewNavigationService(kb *SharedKnowledge, engine *routing.Engine, cache ports.CacheService) *NavigationService {
	return &NavigationService{kb: kb, engine: engine, cache: cache}
}

// PlanRoute finds an accessible route from start to end under the given
// preferences and annotates it with nearby features and turn guidance.
// Returns routing.ErrNoRoute (wrapped) when no accessible route exists.
func (s *NavigationService) PlanRoute(ctx context.Context, start, end domain.GeoPoint, prefs domain.AccessibilityPreferences) (*PlannedRoute, error) {
	if err := validatePoint(start); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	if err := validatePoint(end); err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}

	// Try cache. Planned routes are cached briefly: the knowledge base
	// mutates as reports arrive, so stale answers must age out fast.
	cacheKey := fmt.Sprintf("routes:plan:%.7f:%.7f:%.7f:%.7f:%t:%t:%t",
		start.Lat, start.Lon, end.Lat, end.Lon,
		prefs.RequiresWheelchairAccess, prefs.PreferWellLit, prefs.NeedsRestStops)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var cached PlannedRoute
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	var (
		route    domain.Route
		features []domain.AccessibilityFeature
		err      error
	)
	s.kb.Read(func(b *knowledge.Base) {
		route, err = s.engine.FindRoute(b, start, end, prefs)
		if err != nil {
			return
		}
		features = routing.FeaturesOnRoute(b, route)
	})
	if err != nil {
		return nil, err
	}

	planned := &PlannedRoute{
		Route:     route,
		DistanceM: routeDistance(route),
		Features:  features,
		Guidance:  buildGuidance(route),
	}

	if s.cache != nil {
		if data, err := json.Marshal(planned); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 60)
		}
	}

	return planned, nil
}

// FeaturesOnRoute returns the active features near an already-found route,
// ordered by distance from its first point. Never fails; short routes yield
// an empty list.
func (s *NavigationService) FeaturesOnRoute(ctx context.Context, route domain.Route) []domain.AccessibilityFeature {
	var features []domain.AccessibilityFeature
	s.kb.Read(func(b *knowledge.Base) {
		features = routing.FeaturesOnRoute(b, route)
	})
	return features
}

// ObstaclesNear returns known obstacles within radiusM meters of p.
func (s *NavigationService) ObstaclesNear(ctx context.Context, p domain.GeoPoint, radiusM float64) ([]domain.AccessibilityObstacle, error) {
	if err := validatePoint(p); err != nil {
		return nil, err
	}
	var out []domain.AccessibilityObstacle
	s.kb.Read(func(b *knowledge.Base) {
		out = b.ObstaclesNear(p, radiusM)
	})
	return out, nil
}

// FeaturesNear returns active features within radiusM meters of p.
func (s *NavigationService) FeaturesNear(ctx context.Context, p domain.GeoPoint, radiusM float64) ([]domain.AccessibilityFeature, error) {
	if err := validatePoint(p); err != nil {
		return nil, err
	}
	var out []domain.AccessibilityFeature
	s.kb.Read(func(b *knowledge.Base) {
		out = b.FeaturesNear(p, radiusM)
	})
	return out, nil
}

func validatePoint(p domain.GeoPoint) error {
	if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("coordinates out of range: %.7f, %.7f", p.Lat, p.Lon)
	}
	return nil
}

func routeDistance(route domain.Route) float64 {
	var total float64
	for i := 0; i+1 < len(route.Points); i++ {
		a, b := route.Points[i], route.Points[i+1]
		total += geospatial.Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
	}
	return total
}

// buildGuidance collapses the route's lattice hops into narration-ready
// steps, merging consecutive hops that head the same cardinal direction.
func buildGuidance(route domain.Route) []domain.GuidanceStep {
	if len(route.Points) < 2 {
		return nil
	}

	var steps []domain.GuidanceStep
	for i := 0; i+1 < len(route.Points); i++ {
		a, b := route.Points[i], route.Points[i+1]
		bearing := geospatial.Bearing(a.Lat, a.Lon, b.Lat, b.Lon)
		dir := geospatial.CardinalDirection(bearing)
		dist := geospatial.Haversine(a.Lat, a.Lon, b.Lat, b.Lon)

		if n := len(steps); n > 0 && steps[n-1].Direction == dir {
			steps[n-1].DistanceM += dist
			steps[n-1].To = b
			continue
		}
		steps = append(steps, domain.GuidanceStep{
			Direction: dir,
			Bearing:   bearing,
			DistanceM: dist,
			From:      a,
			To:        b,
		})
	}
	return steps
}
