package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/oinez/internal/core/domain"
	"github.com/samirrijal/oinez/internal/core/routing"
	"github.com/samirrijal/oinez/internal/pkg/metrics"
)

// planRouteRequest is the body of POST /v1/routes/plan. Preferences may be
// given inline or resolved from a stored rider profile; inline wins.
type planRouteRequest struct {
	Start       domain.GeoPoint                  `json:"start"`
	End         domain.GeoPoint                  `json:"end"`
	RiderID     string                           `json:"rider_id,omitempty"`
	Preferences *domain.AccessibilityPreferences `json:"preferences,omitempty"`
}

// PlanRouteHandler plans an accessible walking route between two points.
func PlanRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req planRouteRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		prefs := domain.AccessibilityPreferences{}
		if req.Preferences != nil {
			prefs = *req.Preferences
		} else if req.RiderID != "" {
			stored, err := deps.Preferences.Get(c.UserContext(), req.RiderID)
			if err != nil {
				return errBadRequest(c, err.Error())
			}
			prefs = stored
		}

		start := time.Now()
		planned, err := deps.Navigation.PlanRoute(c.UserContext(), req.Start, req.End, prefs)
		metrics.RoutePlanDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			if errors.Is(err, routing.ErrNoRoute) {
				metrics.RoutesPlanned.WithLabelValues("no_route").Inc()
				return errNoRoute(c, "no accessible route found between the given points")
			}
			metrics.RoutesPlanned.WithLabelValues("error").Inc()
			return errBadRequest(c, err.Error())
		}
		metrics.RoutesPlanned.WithLabelValues("ok").Inc()

		return c.JSON(planned)
	}
}

// RouteFeaturesHandler annotates an already-known route with nearby
// accessibility features.
func RouteFeaturesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Points []domain.GeoPoint `json:"points"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		features := deps.Navigation.FeaturesOnRoute(c.UserContext(), domain.Route{Points: req.Points})
		if features == nil {
			features = []domain.AccessibilityFeature{}
		}
		return c.JSON(fiber.Map{
			"features": features,
			"count":    len(features),
		})
	}
}

// obstacleReportRequest is the body of POST /v1/reports/obstacles.
type obstacleReportRequest struct {
	Type           string          `json:"type"`
	Location       domain.GeoPoint `json:"location"`
	Description    string          `json:"description,omitempty"`
	TemporaryUntil *time.Time      `json:"temporary_until,omitempty"`
}

// ReportObstacleHandler ingests a new obstacle report.
func ReportObstacleHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req obstacleReportRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Type == "" {
			return errBadRequest(c, "type is required")
		}

		report, err := deps.Reports.ReportObstacle(c.UserContext(), domain.AccessibilityObstacle{
			Type:           domain.ObstacleType(req.Type),
			Location:       req.Location,
			Description:    req.Description,
			TemporaryUntil: req.TemporaryUntil,
		})
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		metrics.ReportsIngested.WithLabelValues("obstacle").Inc()
		return c.Status(201).JSON(report)
	}
}

// featureReportRequest is the body of POST /v1/reports/features.
type featureReportRequest struct {
	Type        string          `json:"type"`
	Location    domain.GeoPoint `json:"location"`
	Description string          `json:"description,omitempty"`
}

// ReportFeatureHandler ingests a new accessibility feature report.
func ReportFeatureHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req featureReportRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Type == "" {
			return errBadRequest(c, "type is required")
		}

		report, err := deps.Reports.ReportFeature(c.UserContext(), domain.AccessibilityFeature{
			Type:        domain.FeatureType(req.Type),
			Location:    req.Location,
			Description: req.Description,
		})
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		metrics.ReportsIngested.WithLabelValues("feature").Inc()
		return c.Status(201).JSON(report)
	}
}

// ClearObstaclesHandler removes obstacles at a coordinate.
// DELETE /v1/obstacles?lat=..&lon=..
func ClearObstaclesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		p := domain.GeoPoint{
			Lat: c.QueryFloat("lat", 0),
			Lon: c.QueryFloat("lon", 0),
		}

		removed, err := deps.Reports.ClearObstaclesNear(c.UserContext(), p)
		if err != nil {
			return errInternal(c, err.Error())
		}

		metrics.ObstaclesCleared.Add(float64(removed))
		return c.JSON(fiber.Map{
			"removed":  removed,
			"location": p,
		})
	}
}

// NearbyObstaclesHandler returns known obstacles around a point.
// GET /v1/obstacles?lat=..&lon=..&radius=100
func NearbyObstaclesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		radius := c.QueryFloat("radius", 100)
		if radius <= 0 || radius > 10000 {
			return errBadRequest(c, "radius must be between 1 and 10000 meters")
		}
		p := domain.GeoPoint{
			Lat: c.QueryFloat("lat", 0),
			Lon: c.QueryFloat("lon", 0),
		}

		obstacles, err := deps.Navigation.ObstaclesNear(c.UserContext(), p, radius)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if obstacles == nil {
			obstacles = []domain.AccessibilityObstacle{}
		}
		return c.JSON(obstacles)
	}
}

// NearbyFeaturesHandler returns active accessibility features around a point.
// GET /v1/features?lat=..&lon=..&radius=100
func NearbyFeaturesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		radius := c.QueryFloat("radius", 100)
		if radius <= 0 || radius > 10000 {
			return errBadRequest(c, "radius must be between 1 and 10000 meters")
		}
		p := domain.GeoPoint{
			Lat: c.QueryFloat("lat", 0),
			Lon: c.QueryFloat("lon", 0),
		}

		features, err := deps.Navigation.FeaturesNear(c.UserContext(), p, radius)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if features == nil {
			features = []domain.AccessibilityFeature{}
		}
		return c.JSON(features)
	}
}

// ListReportsHandler returns the report history, newest first, paginated.
func ListReportsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}

		reports, total, err := deps.Reports.ListReports(c.UserContext(), limit, offset)
		if err != nil {
			return errUnavailable(c, err.Error())
		}
		if reports == nil {
			reports = []domain.Report{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: reports, Pagination: pg})
	}
}

// ReportStatsHandler returns report counts and live knowledge-base sizes.
func ReportStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := deps.Reports.Stats(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}

// GetPreferencesHandler returns a rider's stored accessibility preferences.
func GetPreferencesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		riderID := c.Params("rider")
		if riderID == "" {
			return errBadRequest(c, "rider id is required")
		}
		prefs, err := deps.Preferences.Get(c.UserContext(), riderID)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(prefs)
	}
}

// SetPreferencesHandler stores a rider's accessibility preferences.
func SetPreferencesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		riderID := c.Params("rider")
		if riderID == "" {
			return errBadRequest(c, "rider id is required")
		}

		var prefs domain.AccessibilityPreferences
		if err := c.BodyParser(&prefs); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		if err := deps.Preferences.Set(c.UserContext(), riderID, prefs); err != nil {
			return errUnavailable(c, err.Error())
		}
		return c.JSON(prefs)
	}
}
