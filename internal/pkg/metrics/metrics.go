package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleetview",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fleetview",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fleetview",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Map metrics
	ScenesRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleetview",
		Subsystem: "map",
		Name:      "scenes_rendered_total",
		Help:      "Map scenes rendered by backend and status",
	}, []string{"backend", "status"})

	BackendFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleetview",
		Subsystem: "map",
		Name:      "backend_fallbacks_total",
		Help:      "Map views that fell back from the preferred backend",
	}, []string{"reason"})

	BoundsRefits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fleetview",
		Subsystem: "map",
		Name:      "bounds_refits_total",
		Help:      "Viewport re-fits triggered by a staleness key change",
	})

	MapUnlocatedVehicles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleetview",
		Subsystem: "map",
		Name:      "unlocated_vehicles_total",
		Help:      "Vehicles left off a rendered scene for lack of a usable fix",
	}, []string{"view"})

	// Fleet metrics
	PositionsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fleetview",
		Subsystem: "fleet",
		Name:      "positions_ingested_total",
		Help:      "Vehicle positions accepted",
	})

	PositionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleetview",
		Subsystem: "fleet",
		Name:      "positions_rejected_total",
		Help:      "Vehicle positions dropped before storage",
	}, []string{"reason"})

	GeofenceAlerts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleetview",
		Subsystem: "fleet",
		Name:      "geofence_alerts_total",
		Help:      "Geofence crossings detected",
	}, []string{"event"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fleetview",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleetview",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleetview",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fleetview",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fleetview",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fleetview",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// PoolStat is the subset of pgxpool.Stat the pool gauges read.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
}

// UpdateDBPoolMetrics updates database pool gauges.
func UpdateDBPoolMetrics(s PoolStat) {
	DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
	DBPoolConnsIdle.Set(float64(s.IdleConns()))
	DBPoolConnsOpen.Set(float64(s.TotalConns()))
}
