// Package routing implements the accessibility-aware route search: a
// grid-expansion A* over a synthetic local lattice, weighted by the
// obstacles and features in the knowledge base.
package routing

import (
	"math"

	"github.com/samirrijal/oinez/internal/core/domain"
	"github.com/samirrijal/oinez/internal/core/knowledge"
	"github.com/samirrijal/oinez/internal/pkg/geospatial"
)

// nearSegmentThresholdM is the segment-proximity threshold used by both the
// cost model and route annotation.
const nearSegmentThresholdM = 20.0

// Cost multipliers. Qualifying obstacles and features compound
// multiplicatively in knowledge-base insertion order, so a segment dense
// with hazards costs more than one with a single hazard.
const (
	poorLightingPenalty   = 1.5
	wheelchairAidDiscount = 0.8
	restAreaDiscount      = 0.9
)

// EdgeWeight computes the traversal cost of the segment from a to b under
// the given preferences. The base cost is the great-circle distance in
// meters; obstacles raise it and features lower it. A stairs or narrow-path
// obstacle near the segment makes it impassable (+Inf) for riders who
// require wheelchair access.
func EdgeWeight(kb *knowledge.Base, a, b domain.GeoPoint, prefs domain.AccessibilityPreferences) float64 {
	weight := distance(a, b)

	for _, o := range kb.ObstaclesNearSegment(a, b, nearSegmentThresholdM) {
		switch {
		case prefs.RequiresWheelchairAccess &&
			(o.Type == domain.ObstacleStairs || o.Type == domain.ObstacleNarrowPath):
			return math.Inf(1)
		case prefs.PreferWellLit && o.Type == domain.ObstaclePoorLighting:
			weight *= poorLightingPenalty
		}
	}

	for _, f := range kb.FeaturesNearSegment(a, b, nearSegmentThresholdM) {
		switch {
		case prefs.RequiresWheelchairAccess &&
			(f.Type == domain.FeatureRamp || f.Type == domain.FeatureElevator):
			weight *= wheelchairAidDiscount
		case prefs.NeedsRestStops && f.Type == domain.FeatureRestArea:
			weight *= restAreaDiscount
		}
	}

	return weight
}

func distance(a, b domain.GeoPoint) float64 {
	return geospatial.Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}
