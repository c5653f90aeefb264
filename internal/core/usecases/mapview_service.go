package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/fleetview/internal/core/domain"
	"github.com/samirrijal/fleetview/internal/core/ports"
	"github.com/samirrijal/fleetview/internal/mapview"
	"github.com/samirrijal/fleetview/internal/pkg/geospatial"
	"github.com/samirrijal/fleetview/internal/pkg/metrics"
	"github.com/samirrijal/fleetview/internal/pkg/telemetry"
)

// MapRequest carries what the client reported about itself.
type MapRequest struct {
	Capabilities mapview.Capabilities
	Width        int
	Height       int
	Segments     int
}

// MapViewSettings tunes scene composition.
type MapViewSettings struct {
	Map      mapview.Config
	Fit      geospatial.FitOptions
	SceneTTL int // seconds; 0 disables the scene cache
}

// A verified vector style is trusted this long before it is fetched again.
const styleCheckTTL = 5 * time.Minute

// MapViewService composes map scenes for vehicles and fleets.
type MapViewService struct {
	positions ports.VehiclePositionRepository
	zones     ports.GeofenceRepository
	routes    ports.RoutePointRepository
	cache     ports.CacheService
	rings     *RingMemo
	settings  MapViewSettings
	fitters   *lru.Cache[string, *geospatial.Fitter]
	styles    *mapview.StyleChecks
	adapter   func(mapview.Config) *mapview.Adapter
	logger    *slog.Logger
}

// MapViewOption customises a MapViewService.
type MapViewOption func(*MapViewService)

// WithAdapterFactory replaces how a per-request adapter is built.
func WithAdapterFactory(fn func(mapview.Config) *mapview.Adapter) MapViewOption {
	return func(s *MapViewService) { s.adapter = fn }
}

// NewMapViewService creates a new MapViewService.
func NewMapViewService(
	positions ports.VehiclePositionRepository,
	zones ports.GeofenceRepository,
	routes ports.RoutePointRepository,
	cache ports.CacheService,
	rings *RingMemo,
	settings MapViewSettings,
	logger *slog.Logger,
	opts ...MapViewOption,
) *MapViewService {
	if logger == nil {
		logger = slog.Default()
	}
	if rings == nil {
		rings = NewRingMemo(0, 0)
	}
	fitters, _ := lru.New[string, *geospatial.Fitter](4096)
	s := &MapViewService{
		positions: positions,
		zones:     zones,
		routes:    routes,
		cache:     cache,
		rings:     rings,
		settings:  settings,
		fitters:   fitters,
		styles:    mapview.NewStyleChecks(64, styleCheckTTL),
		logger:    logger,
	}
	s.adapter = func(c mapview.Config) *mapview.Adapter {
		return mapview.New(c, mapview.WithLogger(s.logger), mapview.WithStyleChecks(s.styles))
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// VehicleMap composes the scene for one vehicle: its latest fix, its active
// geofences and the path of its current trip. A vehicle without a valid fix
// gets a placeholder scene, not an error.
func (s *MapViewService) VehicleMap(ctx context.Context, vehicleID string, req MapRequest) (*domain.MapScene, error) {
	pos, err := s.positions.Latest(ctx, vehicleID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("latest position: %w", err)
	}
	zones, err := s.zones.ListByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("list geofences: %w", err)
	}

	located := pos != nil && geospatial.IsValid(pos.Location)

	var path domain.RoutePath
	if located && pos.TripID != "" {
		raw, err := s.routes.TripPath(ctx, pos.TripID)
		if err != nil {
			s.logger.Warn("trip path unavailable", "trip_id", pos.TripID, "error", err)
		}
		path = geospatial.FilterValid(raw)
	}

	layers := mapview.NewLayers()
	var points []domain.GeoPoint
	if located {
		layers.AddVehicle(*pos)
		points = append(points, pos.Location)
	}
	points = append(points, s.addZones(layers, zones, req.Segments)...)
	if len(path) >= 2 {
		layers.AddPath(pos.TripID, path)
		points = append(points, path...)
	}

	return s.compose(ctx, "vehicle:"+vehicleID, located, points, layers, req)
}

// FleetMap composes one scene over every vehicle of an owner.
func (s *MapViewService) FleetMap(ctx context.Context, ownerID string, req MapRequest) (*domain.MapScene, error) {
	positions, err := s.positions.LatestByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("latest positions: %w", err)
	}
	zones, err := s.zones.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list geofences: %w", err)
	}

	layers := mapview.NewLayers()
	var points []domain.GeoPoint
	for _, vp := range positions {
		if !geospatial.IsValid(vp.Location) {
			metrics.MapUnlocatedVehicles.WithLabelValues("fleet").Inc()
			continue
		}
		layers.AddVehicle(vp)
		points = append(points, vp.Location)
	}
	located := len(points) > 0
	points = append(points, s.addZones(layers, zones, req.Segments)...)

	return s.compose(ctx, "owner:"+ownerID, located, points, layers, req)
}

func (s *MapViewService) addZones(layers *mapview.Layers, zones []domain.GeofenceZone, segments int) []domain.GeoPoint {
	var points []domain.GeoPoint
	for _, z := range zones {
		if !z.Active || !geospatial.IsValid(z.Center) {
			continue
		}
		ring := s.rings.Ring(z, segments)
		if ring == nil {
			continue
		}
		layers.AddZone(z, ring)
		points = append(points, ring...)
	}
	return points
}

func (s *MapViewService) compose(ctx context.Context, view string, located bool, points []domain.GeoPoint, layers *mapview.Layers, req MapRequest) (*domain.MapScene, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "mapview.compose")
	defer span.End()
	span.SetAttributes(
		attribute.String("map.view", view),
		attribute.Int("map.points", len(points)),
		attribute.Bool("map.webgl", req.Capabilities.WebGL),
	)

	opts := s.settings.Fit
	opts.Width, opts.Height = req.Width, req.Height

	cacheKey := fmt.Sprintf("map:%s:%016x:%t:%t:%dx%d",
		view, geospatial.StalenessKey(points), located, req.Capabilities.WebGL, req.Width, req.Height)
	var cached domain.MapScene
	if getCached(ctx, s.cache, "map_scene", cacheKey, &cached) {
		return &cached, nil
	}

	var viewport *domain.Viewport
	if located {
		vp, changed := s.fitter(fmt.Sprintf("%s:%dx%d", view, req.Width, req.Height), opts).Fit(points)
		if changed {
			metrics.BoundsRefits.Inc()
		}
		viewport = &vp
	}

	data, err := layers.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode layers: %w", err)
	}

	a := s.adapter(s.settings.Map)
	kind, err := a.Mount(ctx, req.Capabilities)
	if err != nil {
		return nil, fmt.Errorf("mount map: %w", err)
	}
	defer func() {
		if err := a.Unmount(); err != nil {
			s.logger.Warn("unmount map", "error", err)
		}
	}()
	if kind == mapview.KindFallback {
		metrics.BackendFallbacks.WithLabelValues(a.FallbackReason()).Inc()
	}

	scene, err := a.Render(mapview.Scene{Located: located, Viewport: viewport, Layers: data})
	if err != nil {
		return nil, fmt.Errorf("render map: %w", err)
	}
	metrics.ScenesRendered.WithLabelValues(scene.Backend, string(scene.Status)).Inc()

	if scene.Status != domain.SceneUnavailable {
		if err := setCached(ctx, s.cache, cacheKey, scene, s.settings.SceneTTL); err != nil {
			s.logger.Warn("cache map scene", "key", cacheKey, "error", err)
		}
	}
	return scene, nil
}

func (s *MapViewService) fitter(key string, opts geospatial.FitOptions) *geospatial.Fitter {
	if f, ok := s.fitters.Get(key); ok {
		return f
	}
	f := geospatial.NewFitter(opts)
	s.fitters.Add(key, f)
	return f
}
