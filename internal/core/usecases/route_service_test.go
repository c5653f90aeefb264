package usecases_test

import (
	"context"
	"math"
	"testing"

	"github.com/samirrijal/fleetview/internal/core/domain"
	"github.com/samirrijal/fleetview/internal/core/usecases"
)

func TestRouteService_TripPath_DropsInvalid(t *testing.T) {
	repo := &mockRouteRepo{
		tripPathFn: func(ctx context.Context, tripID string) (domain.RoutePath, error) {
			return domain.RoutePath{
				{Lat: 6.50, Lon: 3.30},
				{Lat: 0, Lon: 0},
				{Lat: math.NaN(), Lon: 3.31},
				{Lat: 6.51, Lon: 3.31},
			}, nil
		},
	}
	svc := usecases.NewRouteService(repo)

	path, err := svc.TripPath(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(path) != 2 {
		t.Fatalf("expected 2 valid points, got %d", len(path))
	}
	if path[0].Lat != 6.50 || path[1].Lat != 6.51 {
		t.Errorf("order not preserved: %+v", path)
	}
}

func TestRouteService_TripSummary(t *testing.T) {
	repo := &mockRouteRepo{
		tripPathFn: func(ctx context.Context, tripID string) (domain.RoutePath, error) {
			return domain.RoutePath{{Lat: 6.50, Lon: 3.30}, {Lat: 6.51, Lon: 3.30}}, nil
		},
	}
	svc := usecases.NewRouteService(repo)

	sum, err := svc.TripSummary(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Points != 2 {
		t.Errorf("expected 2 points, got %d", sum.Points)
	}
	// 0.01 degrees of latitude is about 1112 m.
	if math.Abs(sum.DistanceMeters-1112) > 5 {
		t.Errorf("expected ~1112 m, got %.1f", sum.DistanceMeters)
	}
	if sum.Bounds == nil || sum.Bounds.MinLat != 6.50 || sum.Bounds.MaxLat != 6.51 {
		t.Errorf("unexpected bounds %+v", sum.Bounds)
	}
}

func TestRouteService_TripSummary_Empty(t *testing.T) {
	svc := usecases.NewRouteService(&mockRouteRepo{})
	sum, err := svc.TripSummary(context.Background(), "trip-0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Points != 0 || sum.Bounds != nil || sum.DistanceMeters != 0 {
		t.Errorf("expected empty summary, got %+v", sum)
	}
}
