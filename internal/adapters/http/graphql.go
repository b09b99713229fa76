package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/oinez/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	geoPointInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "GeoPointInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"lat": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"lon": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	featureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AccessibilityFeature",
		Fields: graphql.Fields{
			"type":        &graphql.Field{Type: graphql.String},
			"location":    &graphql.Field{Type: geoPointType},
			"description": &graphql.Field{Type: graphql.String},
			"is_active":   &graphql.Field{Type: graphql.Boolean},
		},
	})

	obstacleType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AccessibilityObstacle",
		Fields: graphql.Fields{
			"type":            &graphql.Field{Type: graphql.String},
			"location":        &graphql.Field{Type: geoPointType},
			"description":     &graphql.Field{Type: graphql.String},
			"temporary_until": &graphql.Field{Type: graphql.String},
		},
	})

	guidanceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GuidanceStep",
		Fields: graphql.Fields{
			"direction":  &graphql.Field{Type: graphql.String},
			"bearing":    &graphql.Field{Type: graphql.Float},
			"distance_m": &graphql.Field{Type: graphql.Float},
			"from":       &graphql.Field{Type: geoPointType},
			"to":         &graphql.Field{Type: geoPointType},
		},
	})

	plannedRouteType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PlannedRoute",
		Fields: graphql.Fields{
			"points": &graphql.Field{
				Type: graphql.NewList(geoPointType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					planned, _ := p.Source.(map[string]interface{})
					return planned["points"], nil
				},
			},
			"distance_m": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					planned, _ := p.Source.(map[string]interface{})
					return planned["distance_m"], nil
				},
			},
			"features": &graphql.Field{
				Type: graphql.NewList(featureType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					planned, _ := p.Source.(map[string]interface{})
					return planned["features"], nil
				},
			},
			"guidance": &graphql.Field{
				Type: graphql.NewList(guidanceType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					planned, _ := p.Source.(map[string]interface{})
					return planned["guidance"], nil
				},
			},
		},
	})

	toGeoPoint := func(v interface{}) domain.GeoPoint {
		m, _ := v.(map[string]interface{})
		lat, _ := m["lat"].(float64)
		lon, _ := m["lon"].(float64)
		return domain.GeoPoint{Lat: lat, Lon: lon}
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"planRoute": &graphql.Field{
				Type:        plannedRouteType,
				Description: "Plan an accessible route between two points",
				Args: graphql.FieldConfigArgument{
					"start":            &graphql.ArgumentConfig{Type: graphql.NewNonNull(geoPointInput)},
					"end":              &graphql.ArgumentConfig{Type: graphql.NewNonNull(geoPointInput)},
					"wheelchair":       &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
					"prefer_well_lit":  &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
					"needs_rest_stops": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					prefs := domain.AccessibilityPreferences{
						RequiresWheelchairAccess: p.Args["wheelchair"].(bool),
						PreferWellLit:            p.Args["prefer_well_lit"].(bool),
						NeedsRestStops:           p.Args["needs_rest_stops"].(bool),
					}
					planned, err := deps.Navigation.PlanRoute(p.Context,
						toGeoPoint(p.Args["start"]), toGeoPoint(p.Args["end"]), prefs)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"points":     planned.Route.Points,
						"distance_m": planned.DistanceM,
						"features":   planned.Features,
						"guidance":   planned.Guidance,
					}, nil
				},
			},
			"obstaclesNear": &graphql.Field{
				Type:        graphql.NewList(obstacleType),
				Description: "Known obstacles within a radius of a point",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 100.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pt := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					return deps.Navigation.ObstaclesNear(p.Context, pt, p.Args["radius"].(float64))
				},
			},
			"featuresNear": &graphql.Field{
				Type:        graphql.NewList(featureType),
				Description: "Active accessibility features within a radius of a point",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 100.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pt := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					return deps.Navigation.FeaturesNear(p.Context, pt, p.Args["radius"].(float64))
				},
			},
			"stats": &graphql.Field{
				Type:        graphql.NewObject(graphql.ObjectConfig{
					Name: "Stats",
					Fields: graphql.Fields{
						"active_obstacles": &graphql.Field{Type: graphql.Int},
						"active_features":  &graphql.Field{Type: graphql.Int},
					},
				}),
				Description: "Live knowledge-base sizes and report counts",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					stats, err := deps.Reports.Stats(p.Context)
					if err != nil {
						return nil, err
					}
					// Default resolution only walks map[string]interface{}.
					out := make(map[string]interface{}, len(stats))
					for k, v := range stats {
						out[k] = v
					}
					return out, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
