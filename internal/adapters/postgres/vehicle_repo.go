package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/fleetview/internal/core/domain"
)

// VehicleRepo implements ports.VehicleRepository.
type VehicleRepo struct {
	db *DB
}

func NewVehicleRepo(db *DB) *VehicleRepo {
	return &VehicleRepo{db: db}
}

func (r *VehicleRepo) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	var v domain.Vehicle
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, owner_id, plate, COALESCE(make, ''), COALESCE(model, ''), status, created_at
		FROM vehicles WHERE id = $1
	`, id).Scan(&v.ID, &v.OwnerID, &v.Plate, &v.Make, &v.Model, &v.Status, &v.CreatedAt)
	if err != nil {
		return nil, notFound(err, "vehicle "+id)
	}
	return &v, nil
}

func (r *VehicleRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Vehicle, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, owner_id, plate, COALESCE(make, ''), COALESCE(model, ''), status, created_at
		FROM vehicles WHERE owner_id = $1
		ORDER BY plate
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.Plate, &v.Make, &v.Model, &v.Status, &v.CreatedAt); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// VehiclePositionRepo implements ports.VehiclePositionRepository.
type VehiclePositionRepo struct {
	db *DB
}

func NewVehiclePositionRepo(db *DB) *VehiclePositionRepo {
	return &VehiclePositionRepo{db: db}
}

const insertPositionSQL = `
	INSERT INTO vehicle_positions (time, vehicle_id, trip_id, location, speed, heading, ignition)
	VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography, $6, $7, $8)
`

func (r *VehiclePositionRepo) Insert(ctx context.Context, vp *domain.VehiclePosition) error {
	_, err := r.db.Pool.Exec(ctx, insertPositionSQL,
		vp.Time, vp.VehicleID, nilIfEmpty(vp.TripID),
		vp.Location.Lon, vp.Location.Lat, vp.Speed, vp.Heading, vp.Ignition)
	return err
}

// InsertBatch inserts many positions using pgx.Batch.
func (r *VehiclePositionRepo) InsertBatch(ctx context.Context, vps []domain.VehiclePosition) error {
	batch := &pgx.Batch{}
	for _, vp := range vps {
		batch.Queue(insertPositionSQL,
			vp.Time, vp.VehicleID, nilIfEmpty(vp.TripID),
			vp.Location.Lon, vp.Location.Lat, vp.Speed, vp.Heading, vp.Ignition)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range vps {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

const selectPositionCols = `
	time, vehicle_id, trip_id,
	ST_Y(location::geometry) as lat,
	ST_X(location::geometry) as lon,
	speed, heading, ignition
`

func scanPosition(row pgx.Row) (*domain.VehiclePosition, error) {
	var vp domain.VehiclePosition
	var tripID sql.NullString
	if err := row.Scan(
		&vp.Time, &vp.VehicleID, &tripID,
		&vp.Location.Lat, &vp.Location.Lon,
		&vp.Speed, &vp.Heading, &vp.Ignition,
	); err != nil {
		return nil, err
	}
	vp.TripID = tripID.String
	return &vp, nil
}

func (r *VehiclePositionRepo) Latest(ctx context.Context, vehicleID string) (*domain.VehiclePosition, error) {
	vp, err := scanPosition(r.db.Pool.QueryRow(ctx, `
		SELECT `+selectPositionCols+`
		FROM vehicle_positions
		WHERE vehicle_id = $1
		ORDER BY time DESC
		LIMIT 1
	`, vehicleID))
	if err != nil {
		return nil, notFound(err, "position for vehicle "+vehicleID)
	}
	return vp, nil
}

func (r *VehiclePositionRepo) LatestByOwner(ctx context.Context, ownerID string) ([]domain.VehiclePosition, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT DISTINCT ON (p.vehicle_id) `+selectPositionCols+`
		FROM vehicle_positions p
		JOIN vehicles v ON v.id = p.vehicle_id
		WHERE v.owner_id = $1
		ORDER BY p.vehicle_id, p.time DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []domain.VehiclePosition
	for rows.Next() {
		vp, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, *vp)
	}
	return positions, rows.Err()
}
