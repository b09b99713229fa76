package routing

import (
	"sort"

	"github.com/samirrijal/oinez/internal/core/domain"
	"github.com/samirrijal/oinez/internal/core/knowledge"
)

// FeaturesOnRoute reports which active features lie near a found route:
// every feature passing the segment-near test on at least one consecutive
// point pair, deduplicated by exact coordinate and sorted by distance from
// the route's first point. Routes shorter than two points yield nil.
func FeaturesOnRoute(kb *knowledge.Base, route domain.Route) []domain.AccessibilityFeature {
	if len(route.Points) < 2 {
		return nil
	}

	start := route.Points[0]
	seen := make(map[gridKey]bool)
	var out []domain.AccessibilityFeature

	for i := 0; i+1 < len(route.Points); i++ {
		for _, f := range kb.FeaturesNearSegment(route.Points[i], route.Points[i+1], nearSegmentThresholdM) {
			k := keyOf(f.Location)
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, f)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return distance(out[i].Location, start) < distance(out[j].Location, start)
	})
	return out
}
