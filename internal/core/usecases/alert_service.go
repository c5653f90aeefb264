package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/fleetview/internal/core/domain"
	"github.com/samirrijal/fleetview/internal/core/ports"
)

// AlertService persists geofence alerts and notifies vehicle owners.
type AlertService struct {
	alerts   ports.GeofenceAlertRepository
	vehicles ports.VehicleRepository
	notifier ports.NotificationService
}

// NewAlertService creates a new AlertService.
func NewAlertService(
	alerts ports.GeofenceAlertRepository,
	vehicles ports.VehicleRepository,
	notifier ports.NotificationService,
) *AlertService {
	return &AlertService{alerts: alerts, vehicles: vehicles, notifier: notifier}
}

// Persist stores an alert. Storing the same alert twice is a no-op.
func (s *AlertService) Persist(ctx context.Context, a *domain.GeofenceAlert) error {
	if err := s.alerts.Insert(ctx, a); err != nil {
		return fmt.Errorf("insert alert %s: %w", a.ID, err)
	}
	return nil
}

// Notify tells the vehicle's owner about the crossing and marks the alert
// delivered.
func (s *AlertService) Notify(ctx context.Context, a *domain.GeofenceAlert) error {
	v, err := s.vehicles.GetByID(ctx, a.VehicleID)
	if err != nil {
		return fmt.Errorf("lookup vehicle %s: %w", a.VehicleID, err)
	}
	if err := s.notifier.SendPush(ctx, v.OwnerID, alertTitle(a, v), alertBody(a)); err != nil {
		return fmt.Errorf("notify owner %s: %w", v.OwnerID, err)
	}
	if err := s.alerts.MarkDelivered(ctx, a.ID, true); err != nil {
		return fmt.Errorf("mark alert %s delivered: %w", a.ID, err)
	}
	a.Delivered = true
	return nil
}

// Undeliver clears the delivered flag of an alert.
func (s *AlertService) Undeliver(ctx context.Context, id string) error {
	return s.alerts.MarkDelivered(ctx, id, false)
}

// Record persists and notifies in one step. A failed notification leaves
// the alert stored and undelivered.
func (s *AlertService) Record(ctx context.Context, a *domain.GeofenceAlert) error {
	if err := s.Persist(ctx, a); err != nil {
		return err
	}
	return s.Notify(ctx, a)
}

// Dispatch implements ports.AlertDispatcher without a workflow engine.
func (s *AlertService) Dispatch(ctx context.Context, a *domain.GeofenceAlert) error {
	return s.Record(ctx, a)
}

// Recent returns a vehicle's latest alerts, newest first.
func (s *AlertService) Recent(ctx context.Context, vehicleID string, limit int) ([]domain.GeofenceAlert, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.alerts.Recent(ctx, vehicleID, limit)
}

func alertTitle(a *domain.GeofenceAlert, v *domain.Vehicle) string {
	verb := "left"
	if a.Event == domain.GeofenceEntry {
		verb = "entered"
	}
	zone := a.ZoneLabel
	if zone == "" {
		zone = "a geofence"
	}
	return fmt.Sprintf("%s %s %s", v.Plate, verb, zone)
}

func alertBody(a *domain.GeofenceAlert) string {
	return fmt.Sprintf("At %s, location %.5f, %.5f.",
		a.Time.Format("15:04 MST"), a.Location.Lat, a.Location.Lon)
}

// LogNotifier implements ports.NotificationService by writing to the log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) SendPush(ctx context.Context, userID, title, body string) error {
	l := n.Logger
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, "push notification", "user_id", userID, "title", title, "body", body)
	return nil
}
