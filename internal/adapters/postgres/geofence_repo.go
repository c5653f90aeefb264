package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/fleetview/internal/core/domain"
)

// GeofenceRepo implements ports.GeofenceRepository.
type GeofenceRepo struct {
	db *DB
}

func NewGeofenceRepo(db *DB) *GeofenceRepo {
	return &GeofenceRepo{db: db}
}

func (r *GeofenceRepo) Create(ctx context.Context, z *domain.GeofenceZone) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO geofences (id, vehicle_id, owner_id, label, center, radius_meters, active)
		VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography, $7, $8)
		RETURNING created_at
	`, z.ID, z.VehicleID, nilIfEmpty(z.OwnerID), nilIfEmpty(z.Label),
		z.Center.Lon, z.Center.Lat, z.RadiusMeters, z.Active).Scan(&z.CreatedAt)
}

const selectGeofenceCols = `
	id, vehicle_id, owner_id, label,
	ST_Y(center::geometry) as lat,
	ST_X(center::geometry) as lon,
	radius_meters, active, created_at
`

func scanGeofence(row pgx.Row) (*domain.GeofenceZone, error) {
	var z domain.GeofenceZone
	var ownerID, label sql.NullString
	if err := row.Scan(
		&z.ID, &z.VehicleID, &ownerID, &label,
		&z.Center.Lat, &z.Center.Lon,
		&z.RadiusMeters, &z.Active, &z.CreatedAt,
	); err != nil {
		return nil, err
	}
	z.OwnerID = ownerID.String
	z.Label = label.String
	return &z, nil
}

func (r *GeofenceRepo) GetByID(ctx context.Context, id string) (*domain.GeofenceZone, error) {
	z, err := scanGeofence(r.db.Pool.QueryRow(ctx,
		`SELECT `+selectGeofenceCols+` FROM geofences WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "geofence "+id)
	}
	return z, nil
}

func (r *GeofenceRepo) list(ctx context.Context, where string, arg string) ([]domain.GeofenceZone, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+selectGeofenceCols+` FROM geofences WHERE `+where+` ORDER BY created_at`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []domain.GeofenceZone
	for rows.Next() {
		z, err := scanGeofence(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, *z)
	}
	return zones, rows.Err()
}

func (r *GeofenceRepo) ListByVehicle(ctx context.Context, vehicleID string) ([]domain.GeofenceZone, error) {
	return r.list(ctx, "vehicle_id = $1", vehicleID)
}

func (r *GeofenceRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.GeofenceZone, error) {
	return r.list(ctx, "owner_id = $1", ownerID)
}

func (r *GeofenceRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM geofences WHERE id = $1`, id)
	if err != nil {
		return notFound(err, "geofence "+id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("geofence %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
