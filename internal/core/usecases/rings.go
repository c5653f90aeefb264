package usecases

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/samirrijal/fleetview/internal/core/domain"
	"github.com/samirrijal/fleetview/internal/pkg/geospatial"
)

type ringKey struct {
	lat, lon, radius float64
	segments         int
}

// RingMemo memoises geofence rings by center, radius and segment count.
type RingMemo struct {
	segments int
	cache    *lru.Cache[ringKey, []domain.GeoPoint]
}

// NewRingMemo creates a memo holding up to size rings. segments is used when
// a caller passes zero.
func NewRingMemo(size, segments int) *RingMemo {
	if size <= 0 {
		size = 1024
	}
	if segments <= 0 {
		segments = geospatial.DefaultSegments
	}
	c, _ := lru.New[ringKey, []domain.GeoPoint](size)
	return &RingMemo{segments: segments, cache: c}
}

// Ring returns the closed ring for zone. Callers must not modify the result.
func (m *RingMemo) Ring(zone domain.GeofenceZone, segments int) []domain.GeoPoint {
	if segments <= 0 {
		segments = m.segments
	}
	k := ringKey{lat: zone.Center.Lat, lon: zone.Center.Lon, radius: zone.RadiusMeters, segments: segments}
	if ring, ok := m.cache.Get(k); ok {
		return ring
	}
	ring := geospatial.CircleRing(zone.Center, zone.RadiusMeters, segments)
	if ring != nil {
		m.cache.Add(k, ring)
	}
	return ring
}
