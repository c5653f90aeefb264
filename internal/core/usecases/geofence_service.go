package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/fleetview/internal/core/domain"
	"github.com/samirrijal/fleetview/internal/core/ports"
	"github.com/samirrijal/fleetview/internal/mapview"
	"github.com/samirrijal/fleetview/internal/pkg/geospatial"
	"github.com/samirrijal/fleetview/internal/pkg/metrics"
	"github.com/samirrijal/fleetview/internal/pkg/telemetry"
)

// GeofenceService manages geofence zones and detects boundary crossings.
type GeofenceService struct {
	zones      ports.GeofenceRepository
	vehicles   ports.VehicleRepository
	state      ports.GeofenceAlertRepository
	dispatcher ports.AlertDispatcher
	publisher  ports.EventPublisher
	rings      *RingMemo
	logger     *slog.Logger
}

// NewGeofenceService creates a new GeofenceService. dispatcher and publisher
// may be nil.
func NewGeofenceService(
	zones ports.GeofenceRepository,
	vehicles ports.VehicleRepository,
	state ports.GeofenceAlertRepository,
	dispatcher ports.AlertDispatcher,
	publisher ports.EventPublisher,
	rings *RingMemo,
	logger *slog.Logger,
) *GeofenceService {
	if rings == nil {
		rings = NewRingMemo(0, 0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeofenceService{
		zones:      zones,
		vehicles:   vehicles,
		state:      state,
		dispatcher: dispatcher,
		publisher:  publisher,
		rings:      rings,
		logger:     logger,
	}
}

// Create validates and stores a new zone, assigning its ID. The zone is
// owned by whoever owns the vehicle it watches.
func (s *GeofenceService) Create(ctx context.Context, z *domain.GeofenceZone) error {
	if !geospatial.IsValid(z.Center) || !geospatial.InRange(z.Center) {
		return fmt.Errorf("geofence center: %w", domain.ErrInvalidCoordinate)
	}
	if math.IsNaN(z.RadiusMeters) || math.IsInf(z.RadiusMeters, 0) || z.RadiusMeters <= 0 {
		return domain.ErrInvalidRadius
	}
	if z.VehicleID == "" {
		return fmt.Errorf("vehicle_id must not be empty")
	}
	v, err := s.vehicles.GetByID(ctx, z.VehicleID)
	if err != nil {
		return fmt.Errorf("geofence vehicle: %w", err)
	}
	z.OwnerID = v.OwnerID
	z.ID = uuid.NewString()
	if err := s.zones.Create(ctx, z); err != nil {
		return fmt.Errorf("create geofence: %w", err)
	}
	return nil
}

// Get returns a zone by ID.
func (s *GeofenceService) Get(ctx context.Context, id string) (*domain.GeofenceZone, error) {
	return s.zones.GetByID(ctx, id)
}

// ListByVehicle returns all zones drawn for a vehicle.
func (s *GeofenceService) ListByVehicle(ctx context.Context, vehicleID string) ([]domain.GeofenceZone, error) {
	return s.zones.ListByVehicle(ctx, vehicleID)
}

// Delete removes a zone.
func (s *GeofenceService) Delete(ctx context.Context, id string) error {
	return s.zones.Delete(ctx, id)
}

// Ring returns the zone outline as a GeoJSON polygon feature.
func (s *GeofenceService) Ring(ctx context.Context, id string, segments int) (*geojson.Feature, error) {
	z, err := s.zones.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ring := s.rings.Ring(*z, segments)
	if ring == nil {
		return nil, domain.ErrInvalidRadius
	}
	return mapview.ZoneFeature(*z, ring), nil
}

// Check compares a position with the vehicle's active zones and returns an
// alert for every zone whose inside-state flipped. Positions without a
// usable fix never trigger alerts, and a reading older than the stored state
// for a zone is ignored for that zone.
func (s *GeofenceService) Check(ctx context.Context, vp *domain.VehiclePosition) ([]domain.GeofenceAlert, error) {
	if !geospatial.IsValid(vp.Location) {
		return nil, nil
	}
	ctx, span := telemetry.Tracer().Start(ctx, "geofence.check")
	defer span.End()
	span.SetAttributes(attribute.String("vehicle.id", vp.VehicleID))

	zones, err := s.zones.ListByVehicle(ctx, vp.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("list geofences: %w", err)
	}
	if len(zones) == 0 {
		return nil, nil
	}
	states, err := s.state.ZoneStates(ctx, vp.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("load geofence state: %w", err)
	}

	at := vp.Time
	if at.IsZero() {
		at = time.Now().UTC()
	}

	var alerts []domain.GeofenceAlert
	for _, z := range zones {
		if !z.Active {
			continue
		}
		prev, seen := states[z.ID]
		if seen && !at.After(prev.At) {
			// Late or redelivered reading.
			continue
		}
		now := geospatial.Inside(z, vp.Location)
		applied, err := s.state.SetZoneState(ctx, vp.VehicleID, z.ID, domain.ZoneState{Inside: now, At: at})
		if err != nil {
			return alerts, fmt.Errorf("save geofence state: %w", err)
		}
		if !applied || now == prev.Inside {
			continue
		}

		event := domain.GeofenceExit
		if now {
			event = domain.GeofenceEntry
		}
		alert := domain.GeofenceAlert{
			ID:        uuid.NewString(),
			VehicleID: vp.VehicleID,
			ZoneID:    z.ID,
			ZoneLabel: z.Label,
			Event:     event,
			Location:  vp.Location,
			Time:      at,
		}
		metrics.GeofenceAlerts.WithLabelValues(string(event)).Inc()
		s.emit(ctx, &alert)
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

func (s *GeofenceService) emit(ctx context.Context, alert *domain.GeofenceAlert) {
	if s.dispatcher != nil {
		if err := s.dispatcher.Dispatch(ctx, alert); err != nil {
			s.logger.Error("dispatch geofence alert", "alert_id", alert.ID, "error", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishGeofenceAlert(ctx, alert); err != nil {
			s.logger.Warn("publish geofence alert", "alert_id", alert.ID, "error", err)
		}
	}
}
