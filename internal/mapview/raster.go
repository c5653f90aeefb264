package mapview

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/samirrijal/fleetview/internal/core/domain"
)

// DefaultTileURL is the public OpenStreetMap tile template.
const DefaultTileURL = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

// RasterBackend draws on raster tiles and needs no credential.
type RasterBackend struct {
	cfg Config

	mu     sync.Mutex
	closed bool
}

// NewRasterBackend creates a raster backend.
func NewRasterBackend(cfg Config) *RasterBackend {
	if cfg.TileURL == "" {
		cfg.TileURL = DefaultTileURL
	}
	if cfg.Attribution == "" {
		cfg.Attribution = "© OpenStreetMap contributors"
	}
	return &RasterBackend{cfg: cfg}
}

func (b *RasterBackend) Name() string { return "raster" }

// Init checks the tile template.
func (b *RasterBackend) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, ph := range []string{"{z}", "{x}", "{y}"} {
		if !strings.Contains(b.cfg.TileURL, ph) {
			return fmt.Errorf("raster backend: tile url %q missing %s", b.cfg.TileURL, ph)
		}
	}
	return nil
}

// Render degrades to a disabled scene when the map feature is off and to a
// placeholder when the focus has no fix.
func (b *RasterBackend) Render(scene Scene) (*domain.MapScene, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	out := &domain.MapScene{
		Backend:     b.Name(),
		TileURL:     b.cfg.TileURL,
		Attribution: b.cfg.Attribution,
	}
	switch {
	case !b.cfg.Enabled:
		out.Status = domain.SceneDisabled
		out.Message = "Maps are turned off for this account."
	case !scene.Located:
		out.Status = domain.ScenePlaceholder
		out.Message = "No location available for this vehicle."
		out.Layers = scene.Layers
	default:
		out.Status = domain.SceneReady
		out.Viewport = scene.Viewport
		out.Layers = scene.Layers
	}
	return out, nil
}

func (b *RasterBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
