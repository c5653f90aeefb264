package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/fleetview/internal/core/domain"
	"github.com/samirrijal/fleetview/internal/core/usecases"
	"github.com/samirrijal/fleetview/internal/mapview"
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

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"min_lat": &graphql.Field{Type: graphql.Float},
			"min_lon": &graphql.Field{Type: graphql.Float},
			"max_lat": &graphql.Field{Type: graphql.Float},
			"max_lon": &graphql.Field{Type: graphql.Float},
		},
	})

	viewportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Viewport",
		Fields: graphql.Fields{
			"center":    &graphql.Field{Type: geoPointType},
			"zoom_hint": &graphql.Field{Type: graphql.String},
			"zoom":      &graphql.Field{Type: graphql.Float},
			"max_zoom":  &graphql.Field{Type: graphql.Float},
			"padding":   &graphql.Field{Type: graphql.Int},
			"animate":   &graphql.Field{Type: graphql.Boolean},
			"bounds":    &graphql.Field{Type: boundsType},
		},
	})

	sceneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapScene",
		Fields: graphql.Fields{
			"backend":     &graphql.Field{Type: graphql.String},
			"status":      &graphql.Field{Type: graphql.String},
			"style_url":   &graphql.Field{Type: graphql.String},
			"tile_url":    &graphql.Field{Type: graphql.String},
			"attribution": &graphql.Field{Type: graphql.String},
			"message":     &graphql.Field{Type: graphql.String},
			"viewport":    &graphql.Field{Type: viewportType},
			"layers": &graphql.Field{
				Type:        graphql.String,
				Description: "GeoJSON FeatureCollection, JSON-encoded",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if s, ok := p.Source.(*domain.MapScene); ok && len(s.Layers) > 0 {
						return string(s.Layers), nil
					}
					return nil, nil
				},
			},
		},
	})

	vehicleType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Vehicle",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"owner_id":   &graphql.Field{Type: graphql.String},
			"plate":      &graphql.Field{Type: graphql.String},
			"make":       &graphql.Field{Type: graphql.String},
			"model":      &graphql.Field{Type: graphql.String},
			"status":     &graphql.Field{Type: graphql.String},
			"created_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	geofenceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Geofence",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String},
			"vehicle_id":    &graphql.Field{Type: graphql.String},
			"owner_id":      &graphql.Field{Type: graphql.String},
			"label":         &graphql.Field{Type: graphql.String},
			"center":        &graphql.Field{Type: geoPointType},
			"radius_meters": &graphql.Field{Type: graphql.Float},
			"active":        &graphql.Field{Type: graphql.Boolean},
			"created_at":    &graphql.Field{Type: graphql.DateTime},
		},
	})

	alertType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeofenceAlert",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"vehicle_id": &graphql.Field{Type: graphql.String},
			"zone_id":    &graphql.Field{Type: graphql.String},
			"zone_label": &graphql.Field{Type: graphql.String},
			"event":      &graphql.Field{Type: graphql.String},
			"location":   &graphql.Field{Type: geoPointType},
			"time":       &graphql.Field{Type: graphql.DateTime},
			"delivered":  &graphql.Field{Type: graphql.Boolean},
		},
	})

	mapArgs := graphql.FieldConfigArgument{
		"id":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		"webgl":  &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
		"width":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
		"height": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
	}
	mapReq := func(args map[string]interface{}) usecases.MapRequest {
		return usecases.MapRequest{
			Capabilities: mapview.Capabilities{WebGL: args["webgl"].(bool)},
			Width:        args["width"].(int),
			Height:       args["height"].(int),
		}
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"vehicles": &graphql.Field{
				Type:        graphql.NewList(vehicleType),
				Description: "List an owner's vehicles",
				Args: graphql.FieldConfigArgument{
					"owner_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := checkOwner(p.Context, p.Args["owner_id"].(string)); err != nil {
						return nil, err
					}
					return deps.Vehicles.ListByOwner(p.Context, p.Args["owner_id"].(string))
				},
			},
			"vehicle": &graphql.Field{
				Type:        vehicleType,
				Description: "Get a vehicle by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Vehicles.Get(p.Context, p.Args["id"].(string))
				},
			},
			"geofences": &graphql.Field{
				Type:        graphql.NewList(geofenceType),
				Description: "Geofences drawn for a vehicle",
				Args: graphql.FieldConfigArgument{
					"vehicle_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Geofences.ListByVehicle(p.Context, p.Args["vehicle_id"].(string))
				},
			},
			"alerts": &graphql.Field{
				Type:        graphql.NewList(alertType),
				Description: "Recent geofence alerts for a vehicle",
				Args: graphql.FieldConfigArgument{
					"vehicle_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit":      &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Alerts.Recent(p.Context, p.Args["vehicle_id"].(string), p.Args["limit"].(int))
				},
			},
			"vehicleMap": &graphql.Field{
				Type:        sceneType,
				Description: "Map scene for one vehicle",
				Args:        mapArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Maps.VehicleMap(p.Context, p.Args["id"].(string), mapReq(p.Args))
				},
			},
			"fleetMap": &graphql.Field{
				Type:        sceneType,
				Description: "Map scene over an owner's fleet",
				Args:        mapArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := checkOwner(p.Context, p.Args["id"].(string)); err != nil {
						return nil, err
					}
					return deps.Maps.FleetMap(p.Context, p.Args["id"].(string), mapReq(p.Args))
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
		// Programming error in the schema definition
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
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
