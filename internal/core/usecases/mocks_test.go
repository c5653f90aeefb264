package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/fleetview/internal/core/domain"
)

// --- Mock VehicleRepository ---

type mockVehicleRepo struct {
	getByIDFn     func(ctx context.Context, id string) (*domain.Vehicle, error)
	listByOwnerFn func(ctx context.Context, ownerID string) ([]domain.Vehicle, error)
}

func (m *mockVehicleRepo) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &domain.Vehicle{ID: id, OwnerID: "owner-1", Plate: "LAG-123-XY"}, nil
}

func (m *mockVehicleRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Vehicle, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

// --- Mock VehiclePositionRepository ---

type mockPositionRepo struct {
	insertFn        func(ctx context.Context, vp *domain.VehiclePosition) error
	latestFn        func(ctx context.Context, vehicleID string) (*domain.VehiclePosition, error)
	latestByOwnerFn func(ctx context.Context, ownerID string) ([]domain.VehiclePosition, error)
	inserted        []domain.VehiclePosition
}

func (m *mockPositionRepo) Insert(ctx context.Context, vp *domain.VehiclePosition) error {
	m.inserted = append(m.inserted, *vp)
	if m.insertFn != nil {
		return m.insertFn(ctx, vp)
	}
	return nil
}

func (m *mockPositionRepo) InsertBatch(ctx context.Context, vps []domain.VehiclePosition) error {
	m.inserted = append(m.inserted, vps...)
	return nil
}

func (m *mockPositionRepo) Latest(ctx context.Context, vehicleID string) (*domain.VehiclePosition, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, vehicleID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockPositionRepo) LatestByOwner(ctx context.Context, ownerID string) ([]domain.VehiclePosition, error) {
	if m.latestByOwnerFn != nil {
		return m.latestByOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

// --- Mock GeofenceRepository ---

type mockGeofenceRepo struct {
	zones    []domain.GeofenceZone
	createFn func(ctx context.Context, z *domain.GeofenceZone) error
}

func (m *mockGeofenceRepo) Create(ctx context.Context, z *domain.GeofenceZone) error {
	if m.createFn != nil {
		return m.createFn(ctx, z)
	}
	m.zones = append(m.zones, *z)
	return nil
}

func (m *mockGeofenceRepo) GetByID(ctx context.Context, id string) (*domain.GeofenceZone, error) {
	for _, z := range m.zones {
		if z.ID == id {
			z := z
			return &z, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockGeofenceRepo) ListByVehicle(ctx context.Context, vehicleID string) ([]domain.GeofenceZone, error) {
	var out []domain.GeofenceZone
	for _, z := range m.zones {
		if z.VehicleID == vehicleID {
			out = append(out, z)
		}
	}
	return out, nil
}

func (m *mockGeofenceRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.GeofenceZone, error) {
	var out []domain.GeofenceZone
	for _, z := range m.zones {
		if z.OwnerID == ownerID {
			out = append(out, z)
		}
	}
	return out, nil
}

func (m *mockGeofenceRepo) Delete(ctx context.Context, id string) error {
	for i, z := range m.zones {
		if z.ID == id {
			m.zones = append(m.zones[:i], m.zones[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Mock RoutePointRepository ---

type mockRouteRepo struct {
	tripPathFn func(ctx context.Context, tripID string) (domain.RoutePath, error)
}

func (m *mockRouteRepo) TripPath(ctx context.Context, tripID string) (domain.RoutePath, error) {
	if m.tripPathFn != nil {
		return m.tripPathFn(ctx, tripID)
	}
	return nil, nil
}

// --- Mock GeofenceAlertRepository ---

type mockAlertRepo struct {
	alerts    []domain.GeofenceAlert
	states    map[string]domain.ZoneState
	delivered map[string]bool
	recentFn  func(ctx context.Context, vehicleID string, limit int) ([]domain.GeofenceAlert, error)
}

func newMockAlertRepo() *mockAlertRepo {
	return &mockAlertRepo{states: map[string]domain.ZoneState{}, delivered: map[string]bool{}}
}

func (m *mockAlertRepo) Insert(ctx context.Context, a *domain.GeofenceAlert) error {
	m.alerts = append(m.alerts, *a)
	return nil
}

func (m *mockAlertRepo) MarkDelivered(ctx context.Context, id string, delivered bool) error {
	m.delivered[id] = delivered
	return nil
}

func (m *mockAlertRepo) Recent(ctx context.Context, vehicleID string, limit int) ([]domain.GeofenceAlert, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, vehicleID, limit)
	}
	return m.alerts, nil
}

func (m *mockAlertRepo) ZoneStates(ctx context.Context, vehicleID string) (map[string]domain.ZoneState, error) {
	out := make(map[string]domain.ZoneState, len(m.states))
	for k, v := range m.states {
		out[k] = v
	}
	return out, nil
}

func (m *mockAlertRepo) SetZoneState(ctx context.Context, vehicleID, zoneID string, st domain.ZoneState) (bool, error) {
	if prev, ok := m.states[zoneID]; ok && !prev.At.Before(st.At) {
		return false, nil
	}
	m.states[zoneID] = st
	return true, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	positions []domain.VehiclePosition
	alerts    []domain.GeofenceAlert
	err       error
}

func (m *mockPublisher) PublishVehiclePosition(ctx context.Context, vp *domain.VehiclePosition) error {
	if m.err != nil {
		return m.err
	}
	m.positions = append(m.positions, *vp)
	return nil
}

func (m *mockPublisher) PublishGeofenceAlert(ctx context.Context, a *domain.GeofenceAlert) error {
	if m.err != nil {
		return m.err
	}
	m.alerts = append(m.alerts, *a)
	return nil
}

// --- Mock AlertDispatcher ---

type mockDispatcher struct {
	dispatched []domain.GeofenceAlert
}

func (m *mockDispatcher) Dispatch(ctx context.Context, a *domain.GeofenceAlert) error {
	m.dispatched = append(m.dispatched, *a)
	return nil
}

// --- Mock NotificationService ---

type mockNotifier struct {
	sendFn func(ctx context.Context, userID, title, body string) error
	sent   []string
}

func (m *mockNotifier) SendPush(ctx context.Context, userID, title, body string) error {
	m.sent = append(m.sent, userID+": "+title)
	if m.sendFn != nil {
		return m.sendFn(ctx, userID, title, body)
	}
	return nil
}

// --- In-memory CacheService ---

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (m *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("miss")
}

func (m *memCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
