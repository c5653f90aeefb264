package geospatial

import (
	"math"

	"github.com/samirrijal/fleetview/internal/core/domain"
)

// DefaultSegments is the ring resolution used when callers pass zero.
const DefaultSegments = 64

// Length of one degree in km: longitude at the equator, latitude on average.
const (
	kmPerDegLon = 111.320
	kmPerDegLat = 110.574
)

// CircleRing approximates a circle of radiusMeters around center as a closed
// ring of segments+1 points (the first point is repeated last). It uses an
// equirectangular approximation, which holds for geofence-sized radii away
// from the poles. A non-positive radius yields nil.
func CircleRing(center domain.GeoPoint, radiusMeters float64, segments int) []domain.GeoPoint {
	if radiusMeters <= 0 || math.IsNaN(radiusMeters) {
		return nil
	}
	if segments <= 0 {
		segments = DefaultSegments
	}

	km := radiusMeters / 1000
	dx := km / (kmPerDegLon * math.Cos(toRad(center.Lat)))
	dy := km / kmPerDegLat

	ring := make([]domain.GeoPoint, 0, segments+1)
	for i := 0; i < segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		ring = append(ring, domain.GeoPoint{
			Lat: center.Lat + dy*math.Sin(theta),
			Lon: center.Lon + dx*math.Cos(theta),
		})
	}
	return append(ring, ring[0])
}
