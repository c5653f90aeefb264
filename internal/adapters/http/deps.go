package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/fleetview/internal/adapters/postgres"
	"github.com/samirrijal/fleetview/internal/adapters/valkey"
	"github.com/samirrijal/fleetview/internal/core/usecases"
	"github.com/samirrijal/fleetview/internal/pkg/config"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Vehicles  *usecases.VehicleService
	Geofences *usecases.GeofenceService
	Routes    *usecases.RouteService
	Alerts    *usecases.AlertService
	Maps      *usecases.MapViewService
	Auth      config.AuthConfig
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
