package ports

import (
	"context"

	"github.com/samirrijal/fleetview/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishVehiclePosition(ctx context.Context, vp *domain.VehiclePosition) error
	PublishGeofenceAlert(ctx context.Context, alert *domain.GeofenceAlert) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeVehiclePositions(ctx context.Context, handler func(ctx context.Context, vp *domain.VehiclePosition) error) error
	SubscribeGeofenceAlerts(ctx context.Context, handler func(ctx context.Context, alert *domain.GeofenceAlert) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// NotificationService sends notifications (push, email, etc.).
type NotificationService interface {
	SendPush(ctx context.Context, userID, title, body string) error
}

// AlertDispatcher hands a geofence alert to the delivery pipeline.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, alert *domain.GeofenceAlert) error
}
