package mapview

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/fleetview/internal/core/domain"
)

// Layers collects map features for one scene.
type Layers struct {
	fc *geojson.FeatureCollection
}

// NewLayers returns an empty layer set.
func NewLayers() *Layers {
	return &Layers{fc: geojson.NewFeatureCollection()}
}

func toOrb(p domain.GeoPoint) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// AddVehicle adds a vehicle marker.
func (l *Layers) AddVehicle(vp domain.VehiclePosition) {
	f := geojson.NewFeature(toOrb(vp.Location))
	f.Properties["kind"] = "vehicle"
	f.Properties["vehicle_id"] = vp.VehicleID
	f.Properties["heading"] = vp.Heading
	f.Properties["speed"] = vp.Speed
	l.fc.Append(f)
}

// AddZone adds a geofence as a polygon drawn from ring.
func (l *Layers) AddZone(zone domain.GeofenceZone, ring []domain.GeoPoint) {
	if len(ring) == 0 {
		return
	}
	f := geojson.NewFeature(orb.Polygon{RingOf(ring)})
	f.Properties["kind"] = "geofence"
	f.Properties["zone_id"] = zone.ID
	f.Properties["label"] = zone.Label
	f.Properties["radius_meters"] = zone.RadiusMeters
	l.fc.Append(f)
}

// AddPath adds a route polyline. Paths with fewer than two points are skipped.
func (l *Layers) AddPath(tripID string, path domain.RoutePath) {
	if len(path) < 2 {
		return
	}
	ls := make(orb.LineString, len(path))
	for i, p := range path {
		ls[i] = toOrb(p)
	}
	f := geojson.NewFeature(ls)
	f.Properties["kind"] = "route"
	f.Properties["trip_id"] = tripID
	l.fc.Append(f)
}

// Len returns the number of features.
func (l *Layers) Len() int {
	return len(l.fc.Features)
}

// MarshalJSON encodes the layers as a GeoJSON FeatureCollection.
func (l *Layers) MarshalJSON() ([]byte, error) {
	return l.fc.MarshalJSON()
}

// RingOf converts a closed point ring into an orb ring.
func RingOf(ring []domain.GeoPoint) orb.Ring {
	r := make(orb.Ring, len(ring))
	for i, p := range ring {
		r[i] = toOrb(p)
	}
	return r
}

// ZoneFeature returns a single geofence polygon as a GeoJSON feature.
func ZoneFeature(zone domain.GeofenceZone, ring []domain.GeoPoint) *geojson.Feature {
	f := geojson.NewFeature(orb.Polygon{RingOf(ring)})
	f.ID = zone.ID
	f.Properties["label"] = zone.Label
	f.Properties["radius_meters"] = zone.RadiusMeters
	f.Properties["segments"] = len(ring) - 1
	return f
}
