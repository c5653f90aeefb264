// Package mapview selects a map rendering backend per mounted view and turns
// viewports and GeoJSON layers into scenes for the web client.
package mapview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samirrijal/fleetview/internal/core/domain"
)

var (
	ErrNotMounted      = errors.New("map view not mounted")
	ErrUnmounted       = errors.New("map view unmounted during init")
	ErrMountInProgress = errors.New("map view mount in progress")
)

// Kind is the observable backend selection of an Adapter.
type Kind string

const (
	KindUninitialized Kind = "uninitialized"
	KindPreferred     Kind = "preferred"
	KindFallback      Kind = "fallback"
)

// Fallback reasons, also used as metric labels.
const (
	ReasonMapDisabled  = "map_disabled"
	ReasonFlagOff      = "vector_flag_off"
	ReasonNoCapability = "no_webgl"
	ReasonNoCredential = "no_access_token"
	ReasonInitFailed   = "init_failed"
)

// Capabilities are reported by the client that will draw the scene.
type Capabilities struct {
	WebGL bool
}

// Config is the map configuration handed to each adapter.
type Config struct {
	// Enabled is the map feature flag. When off the fallback backend
	// renders a disabled-state scene.
	Enabled bool
	// VectorEnabled gates any attempt at the preferred backend.
	VectorEnabled bool
	AccessToken   string
	StyleURL      string
	TileURL       string
	Attribution   string
}

// Backend renders scenes for one mounted view.
type Backend interface {
	Name() string
	Init(ctx context.Context) error
	Render(scene Scene) (*domain.MapScene, error)
	Close() error
}

// Scene is the backend-independent input of a render pass.
type Scene struct {
	// Located is false when the focus vehicle has no valid fix.
	Located  bool
	Viewport *domain.Viewport
	Layers   []byte
}

// state is the closed set of adapter states.
type state interface{ kind() Kind }

type uninitialized struct{}

type preferred struct{ backend Backend }

// fallback with a nil backend means neither backend could be initialised.
type fallback struct {
	backend Backend
	reason  string
}

func (uninitialized) kind() Kind { return KindUninitialized }
func (preferred) kind() Kind     { return KindPreferred }
func (fallback) kind() Kind      { return KindFallback }

// Adapter picks between the preferred and fallback backend on Mount. The
// choice is terminal until Unmount; the preferred backend is never retried
// within a mount.
type Adapter struct {
	cfg          Config
	newPreferred func(Config) Backend
	newFallback  func(Config) Backend
	styles       *StyleChecks
	logger       *slog.Logger

	mu       sync.Mutex
	st       state
	gen      uint64
	mounting bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithPreferred overrides the preferred backend constructor.
func WithPreferred(fn func(Config) Backend) Option {
	return func(a *Adapter) { a.newPreferred = fn }
}

// WithFallback overrides the fallback backend constructor.
func WithFallback(fn func(Config) Backend) Option {
	return func(a *Adapter) { a.newFallback = fn }
}

// WithStyleChecks shares verified style URLs across adapters built with the
// default preferred backend.
func WithStyleChecks(c *StyleChecks) Option {
	return func(a *Adapter) { a.styles = c }
}

// WithLogger sets the logger used for fallback warnings.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// New creates an unmounted Adapter.
func New(cfg Config, opts ...Option) *Adapter {
	a := &Adapter{
		cfg:          cfg,
		newFallback:  func(c Config) Backend { return NewRasterBackend(c) },
		logger:       slog.Default(),
		st:           uninitialized{},
	}
	a.newPreferred = func(c Config) Backend { return NewVectorBackend(c, nil, a.styles) }
	for _, o := range opts {
		o(a)
	}
	return a
}

// Kind returns the current selection.
func (a *Adapter) Kind() Kind {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.st.kind()
}

// FallbackReason returns why the fallback was chosen, or "".
func (a *Adapter) FallbackReason() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if fb, ok := a.st.(fallback); ok {
		return fb.reason
	}
	return ""
}

// BackendName returns the active backend's name, or "" when none is active.
func (a *Adapter) BackendName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch s := a.st.(type) {
	case preferred:
		return s.backend.Name()
	case fallback:
		if s.backend != nil {
			return s.backend.Name()
		}
	}
	return ""
}

// Mount selects and initialises a backend. Calling Mount on a mounted
// adapter returns the existing selection.
func (a *Adapter) Mount(ctx context.Context, caps Capabilities) (Kind, error) {
	a.mu.Lock()
	if _, ok := a.st.(uninitialized); !ok {
		k := a.st.kind()
		a.mu.Unlock()
		return k, nil
	}
	if a.mounting {
		a.mu.Unlock()
		return KindUninitialized, ErrMountInProgress
	}
	a.mounting = true
	gen := a.gen
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.mounting = false
		a.mu.Unlock()
	}()

	reason := a.preferredBlocker(caps)
	if reason == "" {
		b := a.newPreferred(a.cfg)
		err := b.Init(ctx)

		a.mu.Lock()
		if a.gen != gen {
			a.mu.Unlock()
			_ = b.Close()
			return KindUninitialized, ErrUnmounted
		}
		if err == nil {
			a.st = preferred{backend: b}
			a.mu.Unlock()
			return KindPreferred, nil
		}
		a.mu.Unlock()

		_ = b.Close()
		a.logger.Warn("preferred map backend failed, falling back",
			"backend", b.Name(), "error", err)
		reason = ReasonInitFailed
	}

	fb := a.newFallback(a.cfg)
	if err := fb.Init(ctx); err != nil {
		a.logger.Error("fallback map backend failed", "backend", fb.Name(), "error", err)
		_ = fb.Close()
		fb = nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen != gen {
		if fb != nil {
			_ = fb.Close()
		}
		return KindUninitialized, ErrUnmounted
	}
	a.st = fallback{backend: fb, reason: reason}
	return KindFallback, nil
}

func (a *Adapter) preferredBlocker(caps Capabilities) string {
	switch {
	case !a.cfg.Enabled:
		return ReasonMapDisabled
	case !a.cfg.VectorEnabled:
		return ReasonFlagOff
	case !caps.WebGL:
		return ReasonNoCapability
	case a.cfg.AccessToken == "":
		return ReasonNoCredential
	}
	return ""
}

// Render draws scene with the mounted backend. When no backend could be
// initialised a static placeholder scene is returned.
func (a *Adapter) Render(scene Scene) (*domain.MapScene, error) {
	a.mu.Lock()
	st := a.st
	a.mu.Unlock()

	switch s := st.(type) {
	case preferred:
		return s.backend.Render(scene)
	case fallback:
		if s.backend == nil {
			return &domain.MapScene{
				Status:  domain.SceneUnavailable,
				Message: "Map is unavailable right now.",
			}, nil
		}
		return s.backend.Render(scene)
	default:
		return nil, ErrNotMounted
	}
}

// Unmount releases the active backend and returns the adapter to the
// uninitialised state. An in-flight Mount will discard its result.
func (a *Adapter) Unmount() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.gen++
	var err error
	switch s := a.st.(type) {
	case preferred:
		err = s.backend.Close()
	case fallback:
		if s.backend != nil {
			err = s.backend.Close()
		}
	}
	a.st = uninitialized{}
	if err != nil {
		return fmt.Errorf("close map backend: %w", err)
	}
	return nil
}
