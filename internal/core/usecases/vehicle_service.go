package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/samirrijal/fleetview/internal/core/domain"
	"github.com/samirrijal/fleetview/internal/core/ports"
	"github.com/samirrijal/fleetview/internal/pkg/geospatial"
	"github.com/samirrijal/fleetview/internal/pkg/metrics"
)

// VehicleService handles vehicle lookups and position ingestion.
type VehicleService struct {
	vehicles  ports.VehicleRepository
	positions ports.VehiclePositionRepository
	publisher ports.EventPublisher
	geofences *GeofenceService
	logger    *slog.Logger
}

// NewVehicleService creates a new VehicleService. publisher and geofences
// may be nil.
func NewVehicleService(
	vehicles ports.VehicleRepository,
	positions ports.VehiclePositionRepository,
	publisher ports.EventPublisher,
	geofences *GeofenceService,
	logger *slog.Logger,
) *VehicleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VehicleService{
		vehicles:  vehicles,
		positions: positions,
		publisher: publisher,
		geofences: geofences,
		logger:    logger,
	}
}

// Get returns a vehicle by ID.
func (s *VehicleService) Get(ctx context.Context, id string) (*domain.Vehicle, error) {
	return s.vehicles.GetByID(ctx, id)
}

// ListByOwner returns an owner's vehicles.
func (s *VehicleService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Vehicle, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner_id must not be empty")
	}
	return s.vehicles.ListByOwner(ctx, ownerID)
}

// LatestPosition returns the vehicle's most recent position.
func (s *VehicleService) LatestPosition(ctx context.Context, vehicleID string) (*domain.VehiclePosition, error) {
	return s.positions.Latest(ctx, vehicleID)
}

// IngestPosition stores a reading, publishes it and, when no publisher is
// configured, runs the geofence check inline. Readings without a usable fix
// are rejected with domain.ErrInvalidCoordinate.
func (s *VehicleService) IngestPosition(ctx context.Context, vp *domain.VehiclePosition) error {
	if !geospatial.IsValid(vp.Location) || !geospatial.InRange(vp.Location) {
		metrics.PositionsRejected.WithLabelValues("invalid_coordinate").Inc()
		return fmt.Errorf("position (%v, %v): %w", vp.Location.Lat, vp.Location.Lon, domain.ErrInvalidCoordinate)
	}
	if vp.Time.IsZero() {
		vp.Time = time.Now().UTC()
	}

	if err := s.positions.Insert(ctx, vp); err != nil {
		return fmt.Errorf("insert vehicle position: %w", err)
	}
	metrics.PositionsIngested.Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishVehiclePosition(ctx, vp); err != nil {
			s.logger.Warn("publish vehicle position", "vehicle_id", vp.VehicleID, "error", err)
		} else {
			return nil
		}
	}

	if s.geofences != nil {
		if _, err := s.geofences.Check(ctx, vp); err != nil {
			s.logger.Warn("geofence check", "vehicle_id", vp.VehicleID, "error", err)
		}
	}
	return nil
}

// BatchResult reports how many readings of a batch were stored.
type BatchResult struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// IngestBatch stores buffered tracker readings for one vehicle in a single
// round trip. Readings without a usable fix are skipped and counted as
// rejected. Accepted readings are published in order; when publishing is
// unavailable the geofence check runs inline for each of them.
func (s *VehicleService) IngestBatch(ctx context.Context, vehicleID string, vps []domain.VehiclePosition) (BatchResult, error) {
	var res BatchResult
	valid := make([]domain.VehiclePosition, 0, len(vps))
	now := time.Now().UTC()
	for _, vp := range vps {
		if !geospatial.IsValid(vp.Location) || !geospatial.InRange(vp.Location) {
			metrics.PositionsRejected.WithLabelValues("invalid_coordinate").Inc()
			res.Rejected++
			continue
		}
		vp.VehicleID = vehicleID
		if vp.Time.IsZero() {
			vp.Time = now
		}
		valid = append(valid, vp)
	}
	if len(valid) == 0 {
		return res, nil
	}

	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Time.Before(valid[j].Time) })

	if err := s.positions.InsertBatch(ctx, valid); err != nil {
		return res, fmt.Errorf("insert vehicle positions: %w", err)
	}
	res.Accepted = len(valid)
	metrics.PositionsIngested.Add(float64(len(valid)))

	for i := range valid {
		vp := &valid[i]
		if s.publisher != nil {
			err := s.publisher.PublishVehiclePosition(ctx, vp)
			if err == nil {
				continue
			}
			s.logger.Warn("publish vehicle position", "vehicle_id", vp.VehicleID, "error", err)
		}
		if s.geofences != nil {
			if _, err := s.geofences.Check(ctx, vp); err != nil {
				s.logger.Warn("geofence check", "vehicle_id", vp.VehicleID, "error", err)
			}
		}
	}
	return res, nil
}
