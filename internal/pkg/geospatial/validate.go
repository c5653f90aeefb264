package geospatial

import "github.com/samirrijal/fleetview/internal/core/domain"

// IsValid reports whether p is a usable fix: finite and neither member zero.
// Range is not checked; see InRange.
func IsValid(p domain.GeoPoint) bool {
	return p.Valid()
}

// ValidPtr is IsValid for nullable inputs.
func ValidPtr(lat, lon *float64) bool {
	if lat == nil || lon == nil {
		return false
	}
	return IsValid(domain.GeoPoint{Lat: *lat, Lon: *lon})
}

// InRange reports whether p is a valid fix inside WGS 84 bounds.
func InRange(p domain.GeoPoint) bool {
	return p.Valid() && p.InRange()
}

// FilterValid drops invalid points, keeping order.
func FilterValid(points []domain.GeoPoint) []domain.GeoPoint {
	out := make([]domain.GeoPoint, 0, len(points))
	for _, p := range points {
		if p.Valid() {
			out = append(out, p)
		}
	}
	return out
}
