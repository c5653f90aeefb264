package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/fleetview/internal/core/domain"
	"github.com/samirrijal/fleetview/internal/core/usecases"
	"github.com/samirrijal/fleetview/internal/mapview"
	"github.com/samirrijal/fleetview/internal/pkg/geospatial"
)

// ListVehiclesHandler lists an owner's vehicles.
func ListVehiclesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID := c.Query("owner_id")
		if ownerID == "" {
			return errBadRequest(c, "owner_id query parameter is required")
		}
		if err := checkOwner(c.UserContext(), ownerID); err != nil {
			return errForbidden(c, err.Error())
		}

		vehicles, err := deps.Vehicles.ListByOwner(c.UserContext(), ownerID)
		if err != nil {
			return errServiceError(c, err, "vehicles")
		}

		return c.JSON(paginate(c, vehicles))
	}
}

// GetVehicleHandler returns a single vehicle.
func GetVehicleHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := deps.Vehicles.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errServiceError(c, err, "vehicle")
		}
		return c.JSON(v)
	}
}

// VehiclePositionHandler returns the latest position of a vehicle.
func VehiclePositionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vp, err := deps.Vehicles.LatestPosition(c.UserContext(), c.Params("id"))
		if err != nil {
			return errServiceError(c, err, "position")
		}
		return c.JSON(vp)
	}
}

type positionRequest struct {
	Lat      *float64   `json:"lat"`
	Lon      *float64   `json:"lon"`
	Speed    float64    `json:"speed"`
	Heading  float64    `json:"heading"`
	Ignition bool       `json:"ignition"`
	TripID   string     `json:"trip_id"`
	Time     *time.Time `json:"time"`
}

// IngestPositionHandler accepts a tracker reading for a vehicle.
func IngestPositionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req positionRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if !geospatial.ValidPtr(req.Lat, req.Lon) {
			return errBadRequest(c, "lat and lon are required and must be non-zero")
		}

		vp := &domain.VehiclePosition{
			VehicleID: c.Params("id"),
			TripID:    req.TripID,
			Location:  domain.GeoPoint{Lat: *req.Lat, Lon: *req.Lon},
			Speed:     req.Speed,
			Heading:   req.Heading,
			Ignition:  req.Ignition,
		}
		if req.Time != nil {
			vp.Time = req.Time.UTC()
		}

		if err := deps.Vehicles.IngestPosition(c.UserContext(), vp); err != nil {
			return errServiceError(c, err, "position")
		}
		return c.Status(fiber.StatusAccepted).JSON(vp)
	}
}

type batchRequest struct {
	Positions []positionRequest `json:"positions"`
}

const maxBatch = 1000

// IngestBatchHandler accepts buffered tracker readings for a vehicle.
// Readings without a fix are counted as rejected, not failed.
func IngestBatchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req batchRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Positions) == 0 || len(req.Positions) > maxBatch {
			return errBadRequest(c, "positions must contain between 1 and 1000 readings")
		}

		vps := make([]domain.VehiclePosition, 0, len(req.Positions))
		for _, r := range req.Positions {
			var vp domain.VehiclePosition
			if geospatial.ValidPtr(r.Lat, r.Lon) {
				vp.Location = domain.GeoPoint{Lat: *r.Lat, Lon: *r.Lon}
			}
			vp.TripID = r.TripID
			vp.Speed = r.Speed
			vp.Heading = r.Heading
			vp.Ignition = r.Ignition
			if r.Time != nil {
				vp.Time = r.Time.UTC()
			}
			vps = append(vps, vp)
		}

		res, err := deps.Vehicles.IngestBatch(c.UserContext(), c.Params("id"), vps)
		if err != nil {
			return errServiceError(c, err, "positions")
		}
		return c.Status(fiber.StatusAccepted).JSON(res)
	}
}

// ListGeofencesHandler returns the zones drawn for a vehicle.
func ListGeofencesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zones, err := deps.Geofences.ListByVehicle(c.UserContext(), c.Params("id"))
		if err != nil {
			return errServiceError(c, err, "geofences")
		}
		if zones == nil {
			zones = []domain.GeofenceZone{}
		}
		return c.JSON(zones)
	}
}

type geofenceRequest struct {
	Label        string   `json:"label"`
	Lat          *float64 `json:"lat"`
	Lon          *float64 `json:"lon"`
	RadiusMeters float64  `json:"radius_meters"`
	Active       *bool    `json:"active"`
}

// CreateGeofenceHandler draws a new circular zone around a center point.
func CreateGeofenceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req geofenceRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if !geospatial.ValidPtr(req.Lat, req.Lon) {
			return errBadRequest(c, "lat and lon are required and must be non-zero")
		}
		if len(req.Label) > 120 {
			return errBadRequest(c, "label too long (max 120 characters)")
		}

		z := &domain.GeofenceZone{
			VehicleID:    c.Params("id"),
			Label:        req.Label,
			Center:       domain.GeoPoint{Lat: *req.Lat, Lon: *req.Lon},
			RadiusMeters: req.RadiusMeters,
			Active:       req.Active == nil || *req.Active,
		}
		if err := deps.Geofences.Create(c.UserContext(), z); err != nil {
			return errServiceError(c, err, "geofence")
		}
		c.Location("/v1/geofences/" + z.ID)
		return c.Status(fiber.StatusCreated).JSON(z)
	}
}

// GetGeofenceHandler returns a zone by ID.
func GetGeofenceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		z, err := deps.Geofences.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errServiceError(c, err, "geofence")
		}
		return c.JSON(z)
	}
}

// DeleteGeofenceHandler removes a zone.
func DeleteGeofenceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Geofences.Delete(c.UserContext(), c.Params("id")); err != nil {
			return errServiceError(c, err, "geofence")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GeofenceRingHandler returns the zone outline as a GeoJSON feature.
func GeofenceRingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		segments := c.QueryInt("segments", 0)
		if segments != 0 && (segments < 3 || segments > 360) {
			return errBadRequest(c, "segments must be between 3 and 360")
		}
		f, err := deps.Geofences.Ring(c.UserContext(), c.Params("id"), segments)
		if err != nil {
			return errServiceError(c, err, "geofence")
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		data, err := f.MarshalJSON()
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.Send(data)
	}
}

// VehicleAlertsHandler returns a vehicle's recent geofence alerts.
func VehicleAlertsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		alerts, err := deps.Alerts.Recent(c.UserContext(), c.Params("id"), c.QueryInt("limit", 20))
		if err != nil {
			return errServiceError(c, err, "alerts")
		}
		if alerts == nil {
			alerts = []domain.GeofenceAlert{}
		}
		return c.JSON(alerts)
	}
}

// TripPathHandler returns the recorded path of a trip.
func TripPathHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		path, err := deps.Routes.TripPath(c.UserContext(), id)
		if err != nil {
			return errServiceError(c, err, "trip")
		}
		if path == nil {
			path = domain.RoutePath{}
		}
		return c.JSON(fiber.Map{"trip_id": id, "points": path})
	}
}

// TripSummaryHandler returns the length and extent of a trip.
func TripSummaryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sum, err := deps.Routes.TripSummary(c.UserContext(), c.Params("id"))
		if err != nil {
			return errServiceError(c, err, "trip")
		}
		return c.JSON(sum)
	}
}

// mapRequest reads the client capability and viewport size from the query.
func mapRequest(c *fiber.Ctx) (usecases.MapRequest, error) {
	req := usecases.MapRequest{
		Capabilities: mapview.Capabilities{WebGL: c.QueryBool("webgl", false)},
		Width:        c.QueryInt("width", 0),
		Height:       c.QueryInt("height", 0),
		Segments:     c.QueryInt("segments", 0),
	}
	if req.Width < 0 || req.Height < 0 || req.Width > 8192 || req.Height > 8192 {
		return req, fiber.NewError(fiber.StatusBadRequest, "width and height must be between 0 and 8192")
	}
	if req.Segments != 0 && (req.Segments < 3 || req.Segments > 360) {
		return req, fiber.NewError(fiber.StatusBadRequest, "segments must be between 3 and 360")
	}
	return req, nil
}

// VehicleMapHandler composes the map scene for one vehicle.
func VehicleMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := mapRequest(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		scene, err := deps.Maps.VehicleMap(c.UserContext(), c.Params("id"), req)
		if err != nil {
			return errServiceError(c, err, "map")
		}
		return c.JSON(scene)
	}
}

// FleetMapHandler composes one map scene over an owner's fleet.
func FleetMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := mapRequest(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if err := checkOwner(c.UserContext(), c.Params("id")); err != nil {
			return errForbidden(c, err.Error())
		}
		scene, err := deps.Maps.FleetMap(c.UserContext(), c.Params("id"), req)
		if err != nil {
			return errServiceError(c, err, "map")
		}
		return c.JSON(scene)
	}
}
