package domain

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by repositories when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCoordinate marks a missing or out-of-range location.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrInvalidRadius marks a non-positive geofence radius.
	ErrInvalidRadius = errors.New("radius must be positive")
)

// VehicleStatus is the fleet-level state of a vehicle.
type VehicleStatus string

const (
	VehicleActive   VehicleStatus = "active"
	VehicleInactive VehicleStatus = "inactive"
	VehicleInShop   VehicleStatus = "maintenance"
)

// Vehicle is a tracked vehicle belonging to an owner.
type Vehicle struct {
	ID        string        `json:"id"`
	OwnerID   string        `json:"owner_id"`
	Plate     string        `json:"plate"`
	Make      string        `json:"make,omitempty"`
	Model     string        `json:"model,omitempty"`
	Status    VehicleStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// VehiclePosition is a real-time vehicle location reading.
type VehiclePosition struct {
	Time      time.Time `json:"time"`
	VehicleID string    `json:"vehicle_id"`
	TripID    string    `json:"trip_id,omitempty"`
	Location  GeoPoint  `json:"location"`
	Speed     float64   `json:"speed"`   // km/h
	Heading   float64   `json:"heading"` // degrees
	Ignition  bool      `json:"ignition"`
}

// GeofenceZone is a circular zone drawn around a center point.
type GeofenceZone struct {
	ID           string    `json:"id"`
	VehicleID    string    `json:"vehicle_id"`
	OwnerID      string    `json:"owner_id,omitempty"`
	Label        string    `json:"label,omitempty"`
	Center       GeoPoint  `json:"center"`
	RadiusMeters float64   `json:"radius_meters"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// GeofenceEvent is the kind of boundary crossing.
type GeofenceEvent string

const (
	GeofenceEntry GeofenceEvent = "geofence_entry"
	GeofenceExit  GeofenceEvent = "geofence_exit"
)

// GeofenceAlert records a vehicle crossing a zone boundary.
type GeofenceAlert struct {
	ID        string        `json:"id"`
	VehicleID string        `json:"vehicle_id"`
	ZoneID    string        `json:"zone_id"`
	ZoneLabel string        `json:"zone_label,omitempty"`
	Event     GeofenceEvent `json:"event"`
	Location  GeoPoint      `json:"location"`
	Time      time.Time     `json:"time"`
	Delivered bool          `json:"delivered"`
}

// ZoneState is the last known inside/outside state of a vehicle for one
// zone, stamped with the time of the reading that produced it.
type ZoneState struct {
	Inside bool
	At     time.Time
}

// TripSummary is derived from a trip's recorded path.
type TripSummary struct {
	TripID         string  `json:"trip_id"`
	Points         int     `json:"points"`
	DistanceMeters float64 `json:"distance_meters"`
	Bounds         *Bounds `json:"bounds,omitempty"`
}

// SceneStatus describes what a rendered map scene shows.
type SceneStatus string

const (
	SceneReady       SceneStatus = "ready"
	ScenePlaceholder SceneStatus = "placeholder"
	SceneDisabled    SceneStatus = "disabled"
	SceneUnavailable SceneStatus = "unavailable"
)

// MapScene is the document a web client hands to its map library.
type MapScene struct {
	Backend     string          `json:"backend" msgpack:"backend"`
	Status      SceneStatus     `json:"status" msgpack:"status"`
	StyleURL    string          `json:"style_url,omitempty" msgpack:"style_url"`
	TileURL     string          `json:"tile_url,omitempty" msgpack:"tile_url"`
	Attribution string          `json:"attribution,omitempty" msgpack:"attribution"`
	Viewport    *Viewport       `json:"viewport,omitempty" msgpack:"viewport"`
	Layers      json.RawMessage `json:"layers,omitempty" msgpack:"layers"`
	Message     string          `json:"message,omitempty" msgpack:"message"`
}
