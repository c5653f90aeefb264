package usecases_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samirrijal/fleetview/internal/core/domain"
	"github.com/samirrijal/fleetview/internal/core/usecases"
)

func TestAlertService_Record(t *testing.T) {
	alerts := newMockAlertRepo()
	notifier := &mockNotifier{}
	svc := usecases.NewAlertService(alerts, &mockVehicleRepo{}, notifier)

	a := &domain.GeofenceAlert{ID: "a1", VehicleID: "v1", ZoneLabel: "Depot", Event: domain.GeofenceEntry, Location: lagos}
	if err := svc.Record(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts.alerts) != 1 {
		t.Errorf("expected alert stored")
	}
	if !alerts.delivered["a1"] || !a.Delivered {
		t.Error("expected alert marked delivered")
	}
	if len(notifier.sent) != 1 || !strings.Contains(notifier.sent[0], "owner-1: LAG-123-XY entered Depot") {
		t.Errorf("unexpected notification %v", notifier.sent)
	}
}

func TestAlertService_Record_NotifyFails(t *testing.T) {
	alerts := newMockAlertRepo()
	notifier := &mockNotifier{sendFn: func(ctx context.Context, userID, title, body string) error {
		return errors.New("push gateway down")
	}}
	svc := usecases.NewAlertService(alerts, &mockVehicleRepo{}, notifier)

	a := &domain.GeofenceAlert{ID: "a1", VehicleID: "v1", Event: domain.GeofenceExit}
	if err := svc.Record(context.Background(), a); err == nil {
		t.Fatal("expected notify error")
	}
	if len(alerts.alerts) != 1 {
		t.Error("alert must stay stored when notify fails")
	}
	if alerts.delivered["a1"] {
		t.Error("alert must not be marked delivered")
	}
}

func TestAlertService_Recent_ClampLimit(t *testing.T) {
	tests := []struct{ in, want int }{{0, 20}, {-1, 20}, {5, 5}, {1000, 100}}
	for _, tt := range tests {
		alerts := newMockAlertRepo()
		alerts.recentFn = func(ctx context.Context, vehicleID string, limit int) ([]domain.GeofenceAlert, error) {
			if limit != tt.want {
				t.Errorf("limit %d: expected %d, got %d", tt.in, tt.want, limit)
			}
			return nil, nil
		}
		svc := usecases.NewAlertService(alerts, &mockVehicleRepo{}, &mockNotifier{})
		_, _ = svc.Recent(context.Background(), "v1", tt.in)
	}
}
