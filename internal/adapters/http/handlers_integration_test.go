//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	handler "github.com/samirrijal/fleetview/internal/adapters/http"
	"github.com/samirrijal/fleetview/internal/adapters/postgres"
	"github.com/samirrijal/fleetview/internal/core/domain"
	"github.com/samirrijal/fleetview/internal/core/usecases"
	"github.com/samirrijal/fleetview/internal/mapview"
	"github.com/samirrijal/fleetview/internal/pkg/config"
	"github.com/samirrijal/fleetview/internal/pkg/geospatial"
)

// setupTestDB connects to the test database described by FLEETVIEW_DATABASE_*.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("fleetview-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return db
}

// setupTestDeps wires real repositories, no cache and no broker.
func setupTestDeps(db *postgres.DB) *handler.Dependencies {
	vehicles := postgres.NewVehicleRepo(db)
	positions := postgres.NewVehiclePositionRepo(db)
	zones := postgres.NewGeofenceRepo(db)
	points := postgres.NewRoutePointRepo(db)
	alertRepo := postgres.NewGeofenceAlertRepo(db)

	rings := usecases.NewRingMemo(64, geospatial.DefaultSegments)
	alerts := usecases.NewAlertService(alertRepo, vehicles, usecases.LogNotifier{})
	geofences := usecases.NewGeofenceService(zones, vehicles, alertRepo, alerts, nil, rings, nil)
	return &handler.Dependencies{
		Vehicles:  usecases.NewVehicleService(vehicles, positions, nil, geofences, nil),
		Geofences: geofences,
		Routes:    usecases.NewRouteService(points),
		Alerts:    alerts,
		Maps: usecases.NewMapViewService(positions, zones, points, nil, rings, usecases.MapViewSettings{
			Map: mapview.Config{Enabled: true},
			Fit: geospatial.DefaultFitOptions(),
		}, nil),
		DB: db,
	}
}

// seedTestVehicle inserts a vehicle and returns its ID.
func seedTestVehicle(t *testing.T, db *postgres.DB, ownerID string) string {
	id := uuid.NewString()
	if _, err := db.Pool.Exec(context.Background(), `
		INSERT INTO vehicles (id, owner_id, plate, status)
		VALUES ($1, $2, $3, 'active')
	`, id, ownerID, "IT-"+id[:8]); err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	return id
}

func TestGeofenceFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	owner := uuid.NewString()
	vehicleID := seedTestVehicle(t, db, owner)
	app := setupApp(setupTestDeps(db))

	status, body, _ := do(t, app, "POST", "/v1/vehicles/"+vehicleID+"/geofences",
		`{"label":"Depot","lat":6.5244,"lon":3.3792,"radius_meters":150}`)
	if status != 201 {
		t.Fatalf("create geofence: expected 201, got %d: %s", status, body)
	}

	status, body, _ = do(t, app, "POST", "/v1/vehicles/"+vehicleID+"/positions", `{"lat":6.5245,"lon":3.3793}`)
	if status != 202 {
		t.Fatalf("ingest: expected 202, got %d: %s", status, body)
	}

	req := httptest.NewRequest("GET", "/v1/vehicles/"+vehicleID+"/alerts", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	var alerts []domain.GeofenceAlert
	if err := json.NewDecoder(resp.Body).Decode(&alerts); err != nil {
		t.Fatalf("decode alerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Event != domain.GeofenceEntry || alerts[0].ZoneLabel != "Depot" {
		t.Errorf("expected one entry alert for Depot, got %+v", alerts)
	}

	status, body, _ = do(t, app, "GET", "/v1/vehicles/"+vehicleID+"/map", "")
	if status != 200 || !strings.Contains(string(body), `"status":"ready"`) {
		t.Errorf("map: expected ready scene, got %d: %s", status, body)
	}
}

func TestTripPath_Integration_FromPositions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	vehicleID := seedTestVehicle(t, db, uuid.NewString())
	tripID := "trip-" + uuid.NewString()[:8]
	app := setupApp(setupTestDeps(db))

	// Sent out of order; the path follows reading time.
	for _, body := range []string{
		`{"lat":6.4600,"lon":3.3900,"trip_id":"` + tripID + `","time":"2026-03-01T09:02:00Z"}`,
		`{"lat":6.4500,"lon":3.3800,"trip_id":"` + tripID + `","time":"2026-03-01T09:00:00Z"}`,
	} {
		if status, resp, _ := do(t, app, "POST", "/v1/vehicles/"+vehicleID+"/positions", body); status != 202 {
			t.Fatalf("ingest: expected 202, got %d: %s", status, resp)
		}
	}

	status, body, _ := do(t, app, "GET", "/v1/trips/"+tripID+"/path", "")
	if status != 200 {
		t.Fatalf("path: expected 200, got %d: %s", status, body)
	}
	var resp struct {
		Points []domain.GeoPoint `json:"points"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Points) != 2 || resp.Points[0].Lat != 6.45 || resp.Points[1].Lat != 6.46 {
		t.Errorf("expected two points in time order, got %+v", resp.Points)
	}
}

func TestVehicleMap_Integration_NoPositions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	vehicleID := seedTestVehicle(t, db, uuid.NewString())
	app := setupApp(setupTestDeps(db))

	status, body, _ := do(t, app, "GET", "/v1/vehicles/"+vehicleID+"/map", "")
	if status != 200 || !strings.Contains(string(body), `"status":"placeholder"`) {
		t.Errorf("expected placeholder scene, got %d: %s", status, body)
	}
}
