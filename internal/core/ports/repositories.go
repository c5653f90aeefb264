package ports

import (
	"context"

	"github.com/samirrijal/fleetview/internal/core/domain"
)

// VehicleRepository reads vehicles.
type VehicleRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Vehicle, error)
}

// VehiclePositionRepository persists real-time vehicle positions.
type VehiclePositionRepository interface {
	Insert(ctx context.Context, vp *domain.VehiclePosition) error
	InsertBatch(ctx context.Context, vps []domain.VehiclePosition) error
	Latest(ctx context.Context, vehicleID string) (*domain.VehiclePosition, error)
	LatestByOwner(ctx context.Context, ownerID string) ([]domain.VehiclePosition, error)
}

// GeofenceRepository persists geofence zones.
type GeofenceRepository interface {
	Create(ctx context.Context, zone *domain.GeofenceZone) error
	GetByID(ctx context.Context, id string) (*domain.GeofenceZone, error)
	ListByVehicle(ctx context.Context, vehicleID string) ([]domain.GeofenceZone, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.GeofenceZone, error)
	Delete(ctx context.Context, id string) error
}

// RoutePointRepository reads recorded trip paths.
type RoutePointRepository interface {
	TripPath(ctx context.Context, tripID string) (domain.RoutePath, error)
}

// GeofenceAlertRepository persists geofence alerts and inside-state.
type GeofenceAlertRepository interface {
	Insert(ctx context.Context, alert *domain.GeofenceAlert) error
	MarkDelivered(ctx context.Context, id string, delivered bool) error
	Recent(ctx context.Context, vehicleID string, limit int) ([]domain.GeofenceAlert, error)
	// ZoneStates returns the vehicle's last known state per zone.
	ZoneStates(ctx context.Context, vehicleID string) (map[string]domain.ZoneState, error)
	// SetZoneState stores st unless a state from a later reading is already
	// recorded. It reports whether the write was applied.
	SetZoneState(ctx context.Context, vehicleID, zoneID string, st domain.ZoneState) (bool, error)
}
