package postgres

import (
	"context"

	"github.com/samirrijal/fleetview/internal/core/domain"
)

// RoutePointRepo implements ports.RoutePointRepository.
type RoutePointRepo struct {
	db *DB
}

func NewRoutePointRepo(db *DB) *RoutePointRepo {
	return &RoutePointRepo{db: db}
}

// TripPath returns a trip's points in order. Imported routes in
// route_points take precedence; otherwise the path is the trip's ingested
// positions ordered by time.
func (r *RoutePointRepo) TripPath(ctx context.Context, tripID string) (domain.RoutePath, error) {
	path, err := r.scanPath(ctx, `
		SELECT ST_Y(location::geometry), ST_X(location::geometry)
		FROM route_points
		WHERE trip_id = $1
		ORDER BY seq
	`, tripID)
	if err != nil || len(path) > 0 {
		return path, err
	}
	return r.scanPath(ctx, `
		SELECT ST_Y(location::geometry), ST_X(location::geometry)
		FROM vehicle_positions
		WHERE trip_id = $1
		ORDER BY time
	`, tripID)
}

func (r *RoutePointRepo) scanPath(ctx context.Context, query, tripID string) (domain.RoutePath, error) {
	rows, err := r.db.Pool.Query(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var path domain.RoutePath
	for rows.Next() {
		var p domain.GeoPoint
		if err := rows.Scan(&p.Lat, &p.Lon); err != nil {
			return nil, err
		}
		path = append(path, p)
	}
	return path, rows.Err()
}
