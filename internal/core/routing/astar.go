package routing

import (
	"errors"
	"fmt"
	"math"

	"github.com/samirrijal/oinez/internal/core/domain"
	"github.com/samirrijal/oinez/internal/core/knowledge"
)

// ErrNoRoute is returned when the search frontier empties before any point
// within the arrival tolerance of the destination is reached. There is no
// partial result; callers may retry with different preferences or endpoints.
var ErrNoRoute = errors.New("no accessible route found")

const (
	// gridStepDeg is the neighbor lattice spacing in degrees (~11 m of
	// latitude). The lattice is fixed, not adaptive to search progress.
	gridStepDeg = 0.0001

	// arrivalToleranceM is the radius around the destination considered
	// "arrived" for search termination.
	arrivalToleranceM = 5.0

	// keyScale converts degrees to the fixed-precision integers used as
	// score-map keys. Identity is exact coordinate match: two points are
	// the same search node only if they round to the same scaled integers.
	keyScale = 1e7

	// DefaultMaxExpansions bounds pathological searches where hard
	// exclusions inflate the frontier without ever reaching the goal.
	DefaultMaxExpansions = 200000
)

// gridKey identifies a search node by its scaled, rounded coordinates.
type gridKey struct {
	lat, lon int64
}

func keyOf(p domain.GeoPoint) gridKey {
	return gridKey{
		lat: int64(math.Round(p.Lat * keyScale)),
		lon: int64(math.Round(p.Lon * keyScale)),
	}
}

// Engine runs grid-expansion A* searches over a knowledge base. The zero
// value is not usable; construct with NewEngine.
type Engine struct {
	maxExpansions int
}

// NewEngine creates an Engine. maxExpansions <= 0 selects the default budget.
func NewEngine(maxExpansions int) *Engine {
	if maxExpansions <= 0 {
		maxExpansions = DefaultMaxExpansions
	}
	return &Engine{maxExpansions: maxExpansions}
}

// FindRoute searches for a minimum-cost accessible path from start to within
// arrivalToleranceM of end. The returned route always begins with the exact
// start point. The search is synchronous and single-threaded; it reads the
// knowledge base without locking, so the caller must serialize concurrent
// mutation.
func (e *Engine) FindRoute(kb *knowledge.Base, start, end domain.GeoPoint, prefs domain.AccessibilityPreferences) (domain.Route, error) {
	startKey := keyOf(start)

	// Open list kept as an ordered slice: lowest f wins, first-encountered
	// wins on ties, which makes tie-breaking deterministic per run.
	open := []gridKey{startKey}
	inOpen := map[gridKey]bool{startKey: true}

	points := map[gridKey]domain.GeoPoint{startKey: start}
	cameFrom := make(map[gridKey]gridKey)
	g := map[gridKey]float64{startKey: 0}
	f := map[gridKey]float64{startKey: distance(start, end)}

	expansions := 0
	for len(open) > 0 {
		best := lowestF(open, f)
		cur := open[best]
		curPt := points[cur]

		if distance(curPt, end) <= arrivalToleranceM {
			return reconstruct(cameFrom, points, cur), nil
		}

		open = append(open[:best], open[best+1:]...)
		delete(inOpen, cur)

		expansions++
		if expansions > e.maxExpansions {
			return domain.Route{}, fmt.Errorf("%w: search budget of %d expansions exhausted", ErrNoRoute, e.maxExpansions)
		}

		for _, nb := range neighbors(curPt) {
			if !kb.IsPointAccessible(nb, prefs) {
				continue
			}

			nbKey := keyOf(nb)
			// An impassable edge yields tentative = +Inf, which is never an
			// improvement, so hard-excluded neighbors prune themselves.
			tentative := g[cur] + EdgeWeight(kb, curPt, nb, prefs)

			prev, seen := g[nbKey]
			if !seen {
				prev = math.Inf(1)
			}
			if tentative >= prev {
				continue
			}

			cameFrom[nbKey] = cur
			points[nbKey] = nb
			g[nbKey] = tentative
			f[nbKey] = tentative + distance(nb, end)
			if !inOpen[nbKey] {
				open = append(open, nbKey)
				inOpen[nbKey] = true
			}
		}
	}

	return domain.Route{}, ErrNoRoute
}

// lowestF returns the index of the open-list entry with the lowest f score.
// The loop guard keeps the open list non-empty here; an empty list is an
// invariant violation, not a searchable state.
func lowestF(open []gridKey, f map[gridKey]float64) int {
	if len(open) == 0 {
		panic("routing: selection from empty frontier")
	}
	best := 0
	for i := 1; i < len(open); i++ {
		if f[open[i]] < f[open[best]] {
			best = i
		}
	}
	return best
}

// neighbors generates the 8 lattice neighbors of p in a fixed order.
func neighbors(p domain.GeoPoint) []domain.GeoPoint {
	out := make([]domain.GeoPoint, 0, 8)
	for _, dLat := range [3]float64{-gridStepDeg, 0, gridStepDeg} {
		for _, dLon := range [3]float64{-gridStepDeg, 0, gridStepDeg} {
			if dLat == 0 && dLon == 0 {
				continue
			}
			out = append(out, domain.GeoPoint{Lat: p.Lat + dLat, Lon: p.Lon + dLon})
		}
	}
	return out
}

// reconstruct follows came-from links back to the start and reverses the
// result into start-to-destination order.
func reconstruct(cameFrom map[gridKey]gridKey, points map[gridKey]domain.GeoPoint, cur gridKey) domain.Route {
	path := []domain.GeoPoint{points[cur]}
	for {
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		cur = prev
		path = append(path, points[cur])
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return domain.Route{Points: path}
}
