// Package knowledge holds the in-memory accessibility knowledge base:
// every obstacle and feature currently known to the routing engine.
//
// Base does no locking of its own. Collections are plain slices in
// insertion order, duplicates allowed; callers that share a Base across
// goroutines are responsible for serializing access.
package knowledge

import (
	"github.com/samirrijal/oinez/internal/core/domain"
	"github.com/samirrijal/oinez/internal/pkg/geospatial"
)

// Proximity thresholds in meters.
const (
	// removeRadiusM is the purge radius for RemoveObstaclesNear. Obstacle
	// removal is by proximity, not identity: anything this close to the
	// given point is treated as the same physical obstacle.
	removeRadiusM = 1.0

	// accessRadiusM is how far a blocking obstacle can be from a point and
	// still make it inaccessible to a wheelchair user.
	accessRadiusM = 20.0
)

// Base is the in-memory accessibility knowledge base.
type Base struct {
	obstacles []domain.AccessibilityObstacle
	features  []domain.AccessibilityFeature
}

// New creates an empty knowledge base.
func New() *Base {
	return &Base{}
}

// AddFeature appends a feature. No deduplication is performed.
func (b *Base) AddFeature(f domain.AccessibilityFeature) {
	b.features = append(b.features, f)
}

// AddObstacle appends an obstacle. No deduplication is performed.
func (b *Base) AddObstacle(o domain.AccessibilityObstacle) {
	b.obstacles = append(b.obstacles, o)
}

// RemoveObstaclesNear purges every obstacle within one meter of p and
// returns how many were removed.
func (b *Base) RemoveObstaclesNear(p domain.GeoPoint) int {
	kept := b.obstacles[:0]
	removed := 0
	for _, o := range b.obstacles {
		if distance(o.Location, p) <= removeRadiusM {
			removed++
			continue
		}
		kept = append(kept, o)
	}
	b.obstacles = kept
	return removed
}

// ObstaclesNear returns obstacles within radiusM meters of p, in insertion order.
func (b *Base) ObstaclesNear(p domain.GeoPoint, radiusM float64) []domain.AccessibilityObstacle {
	var out []domain.AccessibilityObstacle
	for _, o := range b.obstacles {
		if distance(o.Location, p) <= radiusM {
			out = append(out, o)
		}
	}
	return out
}

// FeaturesNear returns active features within radiusM meters of p, in insertion order.
func (b *Base) FeaturesNear(p domain.GeoPoint, radiusM float64) []domain.AccessibilityFeature {
	var out []domain.AccessibilityFeature
	for _, f := range b.features {
		if f.IsActive && distance(f.Location, p) <= radiusM {
			out = append(out, f)
		}
	}
	return out
}

// ObstaclesNearSegment returns obstacles near the segment from a to b,
// in insertion order.
//
// "Near" is an ellipse-membership test with the segment endpoints as foci:
// d(p,a) + d(p,b) < d(a,b) + threshold. Deliberately not a perpendicular
// point-to-segment distance; it over-includes points past the endpoints,
// and the cost model depends on that exact behavior.
func (kb *Base) ObstaclesNearSegment(a, b domain.GeoPoint, thresholdM float64) []domain.AccessibilityObstacle {
	segLen := distance(a, b)
	var out []domain.AccessibilityObstacle
	for _, o := range kb.obstacles {
		if nearSegment(o.Location, a, b, segLen, thresholdM) {
			out = append(out, o)
		}
	}
	return out
}

// FeaturesNearSegment returns active features near the segment from a to b,
// in insertion order, using the same ellipse test as ObstaclesNearSegment.
func (kb *Base) FeaturesNearSegment(a, b domain.GeoPoint, thresholdM float64) []domain.AccessibilityFeature {
	segLen := distance(a, b)
	var out []domain.AccessibilityFeature
	for _, f := range kb.features {
		if f.IsActive && nearSegment(f.Location, a, b, segLen, thresholdM) {
			out = append(out, f)
		}
	}
	return out
}

// IsPointAccessible reports whether p is reachable under the given
// preferences. Only obstacles gate accessibility: the point is blocked iff
// the rider requires wheelchair access and a stairs or narrow-path obstacle
// sits within 20 meters.
func (b *Base) IsPointAccessible(p domain.GeoPoint, prefs domain.AccessibilityPreferences) bool {
	if !prefs.RequiresWheelchairAccess {
		return true
	}
	for _, o := range b.obstacles {
		if (o.Type == domain.ObstacleStairs || o.Type == domain.ObstacleNarrowPath) &&
			distance(o.Location, p) <= accessRadiusM {
			return false
		}
	}
	return true
}

// ObstacleCount returns the number of obstacles currently held.
func (b *Base) ObstacleCount() int { return len(b.obstacles) }

// FeatureCount returns the number of features currently held.
func (b *Base) FeatureCount() int { return len(b.features) }

func nearSegment(p, a, b domain.GeoPoint, segLen, thresholdM float64) bool {
	return distance(p, a)+distance(p, b) < segLen+thresholdM
}

func distance(a, b domain.GeoPoint) float64 {
	return geospatial.Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}
