package domain

import "math"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat" msgpack:"lat"`
	Lon float64 `json:"lon" msgpack:"lon"`
}

// Valid reports whether the point carries a usable fix. Both members must be
// finite and non-zero: trackers report 0 when they have no GPS fix, so a
// reading exactly on the equator or prime meridian is rejected too.
func (p GeoPoint) Valid() bool {
	return finiteNonZero(p.Lat) && finiteNonZero(p.Lon)
}

// InRange reports whether the point lies within WGS 84 bounds.
func (p GeoPoint) InRange() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

func finiteNonZero(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v != 0
}

// GeoLineString represents an ordered sequence of geographic coordinates.
type GeoLineString struct {
	Coordinates []GeoPoint `json:"coordinates"`
}

// RoutePath is an ordered sequence of points; index order is path order.
type RoutePath []GeoPoint

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat" msgpack:"min_lat"`
	MinLon float64 `json:"min_lon" msgpack:"min_lon"`
	MaxLat float64 `json:"max_lat" msgpack:"max_lat"`
	MaxLon float64 `json:"max_lon" msgpack:"max_lon"`
}

// Center returns the midpoint of the box.
func (b Bounds) Center() GeoPoint {
	return GeoPoint{Lat: (b.MinLat + b.MaxLat) / 2, Lon: (b.MinLon + b.MaxLon) / 2}
}

// Contains reports whether p lies inside the box (edges inclusive).
func (b Bounds) Contains(p GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// ZoomHint tells the map client how to frame the viewport.
type ZoomHint string

const (
	// ZoomSingle centers on one point at close-up zoom without animation.
	ZoomSingle ZoomHint = "single"
	// ZoomMulti fits a bounding rectangle with padding and a zoom cap.
	ZoomMulti ZoomHint = "multi"
)

// Viewport is the camera a map view should apply.
type Viewport struct {
	Center  GeoPoint `json:"center" msgpack:"center"`
	Hint    ZoomHint `json:"zoom_hint" msgpack:"zoom_hint"`
	Zoom    float64  `json:"zoom" msgpack:"zoom"`
	MaxZoom float64  `json:"max_zoom,omitempty" msgpack:"max_zoom"`
	Padding int      `json:"padding,omitempty" msgpack:"padding"`
	Animate bool     `json:"animate" msgpack:"animate"`
	Bounds  *Bounds  `json:"bounds,omitempty" msgpack:"bounds"`
}
