package postgres

import (
	"context"
	"fmt"

	"github.com/samirrijal/fleetview/internal/core/domain"
)

// GeofenceAlertRepo implements ports.GeofenceAlertRepository.
type GeofenceAlertRepo struct {
	db *DB
}

func NewGeofenceAlertRepo(db *DB) *GeofenceAlertRepo {
	return &GeofenceAlertRepo{db: db}
}

func (r *GeofenceAlertRepo) Insert(ctx context.Context, a *domain.GeofenceAlert) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO geofence_alerts (id, vehicle_id, zone_id, event, location, time, delivered)
		VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`, a.ID, a.VehicleID, a.ZoneID, string(a.Event), a.Location.Lon, a.Location.Lat, a.Time, a.Delivered)
	return err
}

func (r *GeofenceAlertRepo) MarkDelivered(ctx context.Context, id string, delivered bool) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE geofence_alerts SET delivered = $2 WHERE id = $1`, id, delivered)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alert %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *GeofenceAlertRepo) Recent(ctx context.Context, vehicleID string, limit int) ([]domain.GeofenceAlert, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT a.id, a.vehicle_id, a.zone_id, COALESCE(g.label, ''), a.event,
		       ST_Y(a.location::geometry), ST_X(a.location::geometry),
		       a.time, a.delivered
		FROM geofence_alerts a
		LEFT JOIN geofences g ON g.id = a.zone_id
		WHERE a.vehicle_id = $1
		ORDER BY a.time DESC
		LIMIT $2
	`, vehicleID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []domain.GeofenceAlert
	for rows.Next() {
		var a domain.GeofenceAlert
		var event string
		if err := rows.Scan(&a.ID, &a.VehicleID, &a.ZoneID, &a.ZoneLabel, &event,
			&a.Location.Lat, &a.Location.Lon, &a.Time, &a.Delivered); err != nil {
			return nil, err
		}
		a.Event = domain.GeofenceEvent(event)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *GeofenceAlertRepo) ZoneStates(ctx context.Context, vehicleID string) (map[string]domain.ZoneState, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT zone_id, inside, updated_at FROM geofence_state WHERE vehicle_id = $1`, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states := make(map[string]domain.ZoneState)
	for rows.Next() {
		var zoneID string
		var st domain.ZoneState
		if err := rows.Scan(&zoneID, &st.Inside, &st.At); err != nil {
			return nil, err
		}
		states[zoneID] = st
	}
	return states, rows.Err()
}

// SetZoneState is a conditional upsert: rows stamped by a later reading win.
func (r *GeofenceAlertRepo) SetZoneState(ctx context.Context, vehicleID, zoneID string, st domain.ZoneState) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		INSERT INTO geofence_state (vehicle_id, zone_id, inside, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (vehicle_id, zone_id) DO UPDATE
		SET inside = EXCLUDED.inside, updated_at = EXCLUDED.updated_at
		WHERE geofence_state.updated_at < EXCLUDED.updated_at
	`, vehicleID, zoneID, st.Inside, st.At)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
