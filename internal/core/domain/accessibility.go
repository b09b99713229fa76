package domain

import (
	"time"
)

// FeatureType classifies helpful accessibility infrastructure.
type FeatureType string

const (
	FeatureRamp          FeatureType = "ramp"
	FeatureElevator      FeatureType = "elevator"
	FeatureWidePathway   FeatureType = "wide_pathway"
	FeatureRestArea      FeatureType = "rest_area"
	FeatureWellLit       FeatureType = "well_lit"
	FeatureTactilePaving FeatureType = "tactile_paving"
)

// ObstacleType classifies terrain that hinders accessibility.
type ObstacleType string

const (
	ObstacleStairs        ObstacleType = "stairs"
	ObstacleConstruction  ObstacleType = "construction"
	ObstacleNarrowPath    ObstacleType = "narrow_path"
	ObstaclePoorLighting  ObstacleType = "poor_lighting"
	ObstacleUnevenSurface ObstacleType = "uneven_surface"
)

// ValidFeatureType reports whether t is a known feature type.
func ValidFeatureType(t FeatureType) bool {
	switch t {
	case FeatureRamp, FeatureElevator, FeatureWidePathway,
		FeatureRestArea, FeatureWellLit, FeatureTactilePaving:
		return true
	}
	return false
}

// ValidObstacleType reports whether t is a known obstacle type.
func ValidObstacleType(t ObstacleType) bool {
	switch t {
	case ObstacleStairs, ObstacleConstruction, ObstacleNarrowPath,
		ObstaclePoorLighting, ObstacleUnevenSurface:
		return true
	}
	return false
}

// AccessibilityFeature is a piece of helpful infrastructure at a location
// (ramp, elevator, rest area...). Only active features participate in
// routing and annotation.
type AccessibilityFeature struct {
	Type        FeatureType `json:"type"`
	Location    GeoPoint    `json:"location"`
	Description string      `json:"description,omitempty"`
	IsActive    bool        `json:"is_active"`
}

// AccessibilityObstacle is terrain that penalizes or blocks a route
// (stairs, construction...). TemporaryUntil, when set, marks the obstacle
// for automatic removal once that time passes.
type AccessibilityObstacle struct {
	Type           ObstacleType `json:"type"`
	Location       GeoPoint     `json:"location"`
	Description    string       `json:"description,omitempty"`
	TemporaryUntil *time.Time   `json:"temporary_until,omitempty"`
}

// AccessibilityPreferences describes a rider's routing needs.
//
// MaximumSlope and MinimumPathWidth are part of the data contract but are
// not consulted by the cost model yet; they are carried through untouched.
type AccessibilityPreferences struct {
	RequiresWheelchairAccess bool     `json:"requires_wheelchair_access"`
	PreferWellLit            bool     `json:"prefer_well_lit"`
	NeedsRestStops           bool     `json:"needs_rest_stops"`
	MaximumSlope             *float64 `json:"maximum_slope,omitempty"`
	MinimumPathWidth         *float64 `json:"minimum_path_width,omitempty"`
}

// Report kinds stored in the report history.
const (
	ReportKindObstacle = "obstacle"
	ReportKindFeature  = "feature"
	ReportKindCleared  = "cleared"
)

// Report is one entry in the accessibility report history: a community or
// operator submission of an obstacle, a feature, or a clearance.
type Report struct {
	ID             string     `json:"id"`
	Kind           string     `json:"kind"`
	Type           string     `json:"type,omitempty"`
	Location       GeoPoint   `json:"location"`
	Description    string     `json:"description,omitempty"`
	TemporaryUntil *time.Time `json:"temporary_until,omitempty"`
	ReportedAt     time.Time  `json:"reported_at"`
}

// GuidanceStep is a single narration-ready instruction along a route.
type GuidanceStep struct {
	Direction string   `json:"direction"` // cardinal: north, northeast, ...
	Bearing   float64  `json:"bearing"`   // degrees, [0, 360)
	DistanceM float64  `json:"distance_m"`
	From      GeoPoint `json:"from"`
	To        GeoPoint `json:"to"`
}
