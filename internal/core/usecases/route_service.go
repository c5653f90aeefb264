package usecases

import (
	"context"

	"github.com/samirrijal/fleetview/internal/core/domain"
	"github.com/samirrijal/fleetview/internal/core/ports"
	"github.com/samirrijal/fleetview/internal/pkg/geospatial"
)

// RouteService handles trip path business logic.
type RouteService struct {
	points ports.RoutePointRepository
}

// NewRouteService creates a new RouteService.
func NewRouteService(points ports.RoutePointRepository) *RouteService {
	return &RouteService{points: points}
}

// TripPath returns the recorded path of a trip with unusable points dropped.
func (s *RouteService) TripPath(ctx context.Context, tripID string) (domain.RoutePath, error) {
	path, err := s.points.TripPath(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return geospatial.FilterValid(path), nil
}

// TripSummary returns the point count, length and extent of a trip.
func (s *RouteService) TripSummary(ctx context.Context, tripID string) (*domain.TripSummary, error) {
	path, err := s.TripPath(ctx, tripID)
	if err != nil {
		return nil, err
	}
	sum := &domain.TripSummary{
		TripID:         tripID,
		Points:         len(path),
		DistanceMeters: geospatial.PathLength(path),
	}
	if b, ok := geospatial.Enclose(path); ok {
		sum.Bounds = &b
	}
	return sum, nil
}
