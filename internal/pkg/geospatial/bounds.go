package geospatial

import (
	"math"

	"github.com/samirrijal/fleetview/internal/core/domain"
)

// Fit defaults used by the map views.
const (
	CloseUpZoom      = 15.0
	DefaultMaxZoom   = 15.0
	DefaultPaddingPx = 50
)

// Enclose returns the smallest rectangle containing every point. ok is false
// for an empty input.
func Enclose(points []domain.GeoPoint) (b domain.Bounds, ok bool) {
	if len(points) == 0 {
		return b, false
	}
	b = domain.Bounds{
		MinLat: points[0].Lat, MaxLat: points[0].Lat,
		MinLon: points[0].Lon, MaxLon: points[0].Lon,
	}
	for _, p := range points[1:] {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLon = math.Min(b.MinLon, p.Lon)
		b.MaxLon = math.Max(b.MaxLon, p.Lon)
	}
	return b, true
}

// FitOptions tunes FitBounds.
type FitOptions struct {
	CloseUpZoom float64
	MaxZoom     float64
	PaddingPx   int
	// Width and Height are the target viewport in pixels. When zero the
	// multi-point zoom is left to the client and only MaxZoom is returned.
	Width, Height int
}

// DefaultFitOptions returns the close-up/max zoom and padding defaults.
func DefaultFitOptions() FitOptions {
	return FitOptions{CloseUpZoom: CloseUpZoom, MaxZoom: DefaultMaxZoom, PaddingPx: DefaultPaddingPx}
}

// FitBounds computes a viewport containing points. An empty input is a no-op
// (ok=false) so the caller keeps its previous view. A single point snaps to
// close-up zoom without animation; two or more fit their bounding rectangle
// with padding and a zoom cap.
func FitBounds(points []domain.GeoPoint, opts FitOptions) (domain.Viewport, bool) {
	switch len(points) {
	case 0:
		return domain.Viewport{}, false
	case 1:
		return domain.Viewport{
			Center:  points[0],
			Hint:    domain.ZoomSingle,
			Zoom:    opts.CloseUpZoom,
			Animate: false,
		}, true
	}

	b, _ := Enclose(points)
	vp := domain.Viewport{
		Center:  b.Center(),
		Hint:    domain.ZoomMulti,
		MaxZoom: opts.MaxZoom,
		Padding: opts.PaddingPx,
		Animate: true,
		Bounds:  &b,
	}
	if opts.Width > 0 && opts.Height > 0 {
		vp.Zoom = ZoomForBounds(b, opts.Width, opts.Height, opts.PaddingPx, opts.MaxZoom)
	}
	return vp, true
}

const tileSize = 256.0

// ZoomForBounds returns the largest Web Mercator zoom at which b fits inside
// a width x height pixel viewport after padding, capped at maxZoom.
func ZoomForBounds(b domain.Bounds, width, height, paddingPx int, maxZoom float64) float64 {
	w := float64(width - 2*paddingPx)
	h := float64(height - 2*paddingPx)
	if w <= 0 || h <= 0 {
		return 0
	}

	lonSpan := (b.MaxLon - b.MinLon) / 360
	latSpan := (mercatorY(b.MaxLat) - mercatorY(b.MinLat)) / (2 * math.Pi)

	zoom := maxZoom
	if lonSpan > 0 {
		zoom = math.Min(zoom, math.Log2(w/tileSize/lonSpan))
	}
	if latSpan > 0 {
		zoom = math.Min(zoom, math.Log2(h/tileSize/latSpan))
	}
	if zoom < 0 {
		return 0
	}
	return math.Floor(zoom*100) / 100
}

func mercatorY(lat float64) float64 {
	lat = math.Max(math.Min(lat, 85.0511), -85.0511)
	return math.Log(math.Tan(math.Pi/4 + toRad(lat)/2))
}
