package geospatial

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/samirrijal/fleetview/internal/core/domain"
)

// keyPrecision rounds to 4 decimal places (~11 m at the equator).
const keyPrecision = 1e4

// StalenessKey hashes the rounded coordinates of points in order. Jitter
// below the rounding precision keeps the key stable.
func StalenessKey(points []domain.GeoPoint) uint64 {
	d := xxhash.New()
	var buf [16]byte
	for _, p := range points {
		binary.LittleEndian.PutUint64(buf[:8], uint64(int64(math.Round(p.Lat*keyPrecision))))
		binary.LittleEndian.PutUint64(buf[8:], uint64(int64(math.Round(p.Lon*keyPrecision))))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// Fitter remembers the last fitted viewport of one map view and only re-fits
// when the staleness key of its input changes.
type Fitter struct {
	mu     sync.Mutex
	opts   FitOptions
	key    uint64
	fitted bool
	last   domain.Viewport
}

// NewFitter creates a Fitter with the given options.
func NewFitter(opts FitOptions) *Fitter {
	return &Fitter{opts: opts}
}

// Fit returns the viewport for points and whether it changed since the
// previous call. Empty input keeps the prior viewport.
func (f *Fitter) Fit(points []domain.GeoPoint) (domain.Viewport, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(points) == 0 {
		return f.last, false
	}

	key := StalenessKey(points)
	if f.fitted && key == f.key {
		return f.last, false
	}

	vp, _ := FitBounds(points, f.opts)
	f.key, f.fitted, f.last = key, true, vp
	return vp, true
}

// Viewport returns the last fitted viewport, if any.
func (f *Fitter) Viewport() (domain.Viewport, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last, f.fitted
}
