package geospatial_test

import (
	"math"
	"testing"

	"github.com/samirrijal/fleetview/internal/core/domain"
	"github.com/samirrijal/fleetview/internal/pkg/geospatial"
)

var lagos = domain.GeoPoint{Lat: 6.5244, Lon: 3.3792}

func TestIsValid(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name string
		p    domain.GeoPoint
		want bool
	}{
		{"lagos", lagos, true},
		{"southern hemisphere", domain.GeoPoint{Lat: -33.86, Lon: 151.2}, true},
		{"no fix sentinel", domain.GeoPoint{Lat: 0, Lon: 0}, false},
		{"zero latitude", domain.GeoPoint{Lat: 0, Lon: 3.3}, false},
		{"zero longitude", domain.GeoPoint{Lat: 6.5, Lon: 0}, false},
		{"nan", domain.GeoPoint{Lat: nan, Lon: 3.3}, false},
		{"inf", domain.GeoPoint{Lat: 6.5, Lon: math.Inf(1)}, false},
		// Range is deliberately not checked.
		{"out of range latitude", domain.GeoPoint{Lat: 91, Lon: 3.3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := geospatial.IsValid(tt.p); got != tt.want {
				t.Errorf("IsValid(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestIsValid_LatitudeSweep(t *testing.T) {
	for lat := -89.5; lat < 90; lat += 0.5 {
		if lat == 0 {
			continue
		}
		if !geospatial.IsValid(domain.GeoPoint{Lat: lat, Lon: 3.3}) {
			t.Fatalf("expected lat %v to be valid", lat)
		}
	}
}

func TestValidPtr(t *testing.T) {
	lat, lon := 6.5, 3.3
	if geospatial.ValidPtr(nil, &lon) {
		t.Error("nil latitude should be invalid")
	}
	if geospatial.ValidPtr(&lat, nil) {
		t.Error("nil longitude should be invalid")
	}
	if !geospatial.ValidPtr(&lat, &lon) {
		t.Error("expected valid pointer pair")
	}
}

func TestInRange(t *testing.T) {
	if geospatial.InRange(domain.GeoPoint{Lat: 91, Lon: 3.3}) {
		t.Error("lat 91 should be out of range")
	}
	if !geospatial.InRange(lagos) {
		t.Error("lagos should be in range")
	}
}

func TestFilterValid(t *testing.T) {
	in := []domain.GeoPoint{lagos, {}, {Lat: 6.6, Lon: 3.4}}
	out := geospatial.FilterValid(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 points, got %d", len(out))
	}
	if out[1].Lat != 6.6 {
		t.Errorf("order not preserved: %v", out)
	}
}

func TestCircleRing_PointCount(t *testing.T) {
	for _, segments := range []int{3, 4, 16, 64, 100} {
		for _, radius := range []float64{1, 50, 100, 2500, 10000} {
			ring := geospatial.CircleRing(lagos, radius, segments)
			if len(ring) != segments+1 {
				t.Fatalf("segments=%d radius=%v: expected %d points, got %d", segments, radius, segments+1, len(ring))
			}
			if ring[0] != ring[len(ring)-1] {
				t.Fatalf("segments=%d radius=%v: ring not closed", segments, radius)
			}
		}
	}
}

func TestCircleRing_Lagos100m(t *testing.T) {
	ring := geospatial.CircleRing(lagos, 100, 64)
	if len(ring) != 65 {
		t.Fatalf("expected 65 points, got %d", len(ring))
	}
	for i, p := range ring {
		d := geospatial.Distance(lagos, p)
		if math.Abs(d-100) > 2 {
			t.Errorf("point %d is %.2fm from center, want ~100m", i, d)
		}
	}
}

func TestCircleRing_DefaultsAndBadRadius(t *testing.T) {
	if ring := geospatial.CircleRing(lagos, 100, 0); len(ring) != geospatial.DefaultSegments+1 {
		t.Errorf("expected default %d segments, got %d points", geospatial.DefaultSegments, len(ring))
	}
	if ring := geospatial.CircleRing(lagos, 0, 64); ring != nil {
		t.Errorf("expected nil ring for zero radius, got %d points", len(ring))
	}
	if ring := geospatial.CircleRing(lagos, -5, 64); ring != nil {
		t.Error("expected nil ring for negative radius")
	}
}

func TestFitBounds_Empty(t *testing.T) {
	if _, ok := geospatial.FitBounds(nil, geospatial.DefaultFitOptions()); ok {
		t.Error("expected no-op for empty input")
	}
}

func TestFitBounds_Single(t *testing.T) {
	far := domain.GeoPoint{Lat: 51.5, Lon: -0.12}
	vp, ok := geospatial.FitBounds([]domain.GeoPoint{far}, geospatial.DefaultFitOptions())
	if !ok {
		t.Fatal("expected a viewport")
	}
	if vp.Center != far {
		t.Errorf("expected center %v, got %v", far, vp.Center)
	}
	if vp.Hint != domain.ZoomSingle {
		t.Errorf("expected single hint, got %s", vp.Hint)
	}
	if vp.Animate {
		t.Error("single point must snap, not animate")
	}
	if vp.Zoom != geospatial.CloseUpZoom {
		t.Errorf("expected close-up zoom, got %v", vp.Zoom)
	}
}

func TestFitBounds_Multi(t *testing.T) {
	p1 := domain.GeoPoint{Lat: 6.5, Lon: 3.3}
	p2 := domain.GeoPoint{Lat: 6.6, Lon: 3.4}
	vp, ok := geospatial.FitBounds([]domain.GeoPoint{p1, p2}, geospatial.DefaultFitOptions())
	if !ok {
		t.Fatal("expected a viewport")
	}
	if vp.Hint != domain.ZoomMulti {
		t.Errorf("expected multi hint, got %s", vp.Hint)
	}
	if vp.Center.Lat < 6.5 || vp.Center.Lat > 6.6 {
		t.Errorf("center lat %v outside [6.5, 6.6]", vp.Center.Lat)
	}
	if vp.Center.Lon < 3.3 || vp.Center.Lon > 3.4 {
		t.Errorf("center lon %v outside [3.3, 3.4]", vp.Center.Lon)
	}
	if vp.Bounds == nil || !vp.Bounds.Contains(p1) || !vp.Bounds.Contains(p2) {
		t.Errorf("bounds %+v do not contain inputs", vp.Bounds)
	}
	if vp.MaxZoom != geospatial.DefaultMaxZoom || vp.Padding != geospatial.DefaultPaddingPx {
		t.Errorf("unexpected zoom cap/padding: %v/%d", vp.MaxZoom, vp.Padding)
	}
}

func TestZoomForBounds(t *testing.T) {
	wide := domain.Bounds{MinLat: 6.4, MinLon: 3.2, MaxLat: 6.7, MaxLon: 3.5}
	near := domain.Bounds{MinLat: 6.5244, MinLon: 3.3792, MaxLat: 6.5245, MaxLon: 3.3793}

	zWide := geospatial.ZoomForBounds(wide, 800, 600, 50, 18)
	if zWide <= 0 || zWide >= 18 {
		t.Fatalf("unexpected zoom for wide bounds: %v", zWide)
	}
	if zNear := geospatial.ZoomForBounds(near, 800, 600, 50, 15); zNear != 15 {
		t.Errorf("expected close points capped at 15, got %v", zNear)
	}
	if z := geospatial.ZoomForBounds(wide, 80, 80, 50, 15); z != 0 {
		t.Errorf("expected 0 when padding exceeds viewport, got %v", z)
	}
}

func TestFitter_RefitsOnMovementOnly(t *testing.T) {
	f := geospatial.NewFitter(geospatial.DefaultFitOptions())

	if _, changed := f.Fit(nil); changed {
		t.Fatal("empty input must not change the view")
	}
	if _, ok := f.Viewport(); ok {
		t.Fatal("no viewport expected before first fit")
	}

	pts := []domain.GeoPoint{{Lat: 6.5, Lon: 3.3}, {Lat: 6.6, Lon: 3.4}}
	first, changed := f.Fit(pts)
	if !changed {
		t.Fatal("first fit should change the view")
	}

	jitter := []domain.GeoPoint{{Lat: 6.500001, Lon: 3.300001}, {Lat: 6.6, Lon: 3.4}}
	if _, changed := f.Fit(jitter); changed {
		t.Error("sub-precision jitter should not re-fit")
	}

	// Same count, different place: count-based throttling would miss this.
	moved := []domain.GeoPoint{{Lat: 6.7, Lon: 3.3}, {Lat: 6.6, Lon: 3.4}}
	vp, changed := f.Fit(moved)
	if !changed {
		t.Fatal("moved point should re-fit")
	}
	if vp.Center == first.Center {
		t.Error("expected center to move")
	}

	prior, _ := f.Viewport()
	if got, changed := f.Fit(nil); changed || got.Center != prior.Center {
		t.Error("empty input must keep prior view")
	}
}

func TestPathLength(t *testing.T) {
	path := domain.RoutePath{{Lat: 6.5, Lon: 3.3}, {Lat: 6.6, Lon: 3.3}, {Lat: 6.6, Lon: 3.4}}
	got := geospatial.PathLength(path)
	want := geospatial.Distance(path[0], path[1]) + geospatial.Distance(path[1], path[2])
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("expected %v, got %v", want, got)
	}
	if geospatial.PathLength(nil) != 0 {
		t.Error("empty path should have zero length")
	}
}

func TestInside(t *testing.T) {
	zone := domain.GeofenceZone{Center: lagos, RadiusMeters: 100}
	if !geospatial.Inside(zone, lagos) {
		t.Error("center should be inside")
	}
	if geospatial.Inside(zone, domain.GeoPoint{Lat: 6.53, Lon: 3.3792}) {
		t.Error("point ~600m away should be outside")
	}
}
