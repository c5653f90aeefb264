package mapview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/samirrijal/fleetview/internal/core/domain"
)

// ErrClosed is returned when rendering with a released backend.
var ErrClosed = errors.New("map backend closed")

// StyleChecks remembers style URLs that verified recently, so short-lived
// backends sharing it skip the round trip. Failed checks are not kept.
type StyleChecks struct {
	ok *expirable.LRU[string, struct{}]
}

// NewStyleChecks keeps up to size verified URLs for ttl each.
func NewStyleChecks(size int, ttl time.Duration) *StyleChecks {
	return &StyleChecks{ok: expirable.NewLRU[string, struct{}](size, nil, ttl)}
}

func (c *StyleChecks) verified(styleURL string) bool {
	if c == nil {
		return false
	}
	_, ok := c.ok.Get(styleURL)
	return ok
}

func (c *StyleChecks) remember(styleURL string) {
	if c != nil {
		c.ok.Add(styleURL, struct{}{})
	}
}

// VectorBackend is the preferred, GPU-drawn backend. It needs an access
// token and verifies the style document is reachable with it on Init.
type VectorBackend struct {
	cfg    Config
	client *http.Client
	checks *StyleChecks

	mu     sync.Mutex
	ready  bool
	closed bool
}

// NewVectorBackend creates a vector backend. A nil client uses a 5s timeout
// client; checks may be nil, in which case every Init fetches the style.
func NewVectorBackend(cfg Config, client *http.Client, checks *StyleChecks) *VectorBackend {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &VectorBackend{cfg: cfg, client: client, checks: checks}
}

func (b *VectorBackend) Name() string { return "vector" }

// Init fetches the style document with the access token, unless the same
// URL verified recently.
func (b *VectorBackend) Init(ctx context.Context) error {
	styleURL, err := b.styleURL()
	if err != nil {
		return err
	}
	if b.checks.verified(styleURL) {
		return b.markReady()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, styleURL, nil)
	if err != nil {
		return fmt.Errorf("style request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch style: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch style: unexpected status %d", resp.StatusCode)
	}
	b.checks.remember(styleURL)
	return b.markReady()
}

func (b *VectorBackend) markReady() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.ready = true
	return nil
}

func (b *VectorBackend) styleURL() (string, error) {
	if b.cfg.AccessToken == "" {
		return "", errors.New("vector backend: access token not configured")
	}
	u, err := url.Parse(b.cfg.StyleURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("vector backend: invalid style url %q", b.cfg.StyleURL)
	}
	q := u.Query()
	q.Set("access_token", b.cfg.AccessToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Render returns a ready scene, or a placeholder when the focus has no fix.
func (b *VectorBackend) Render(scene Scene) (*domain.MapScene, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || !b.ready {
		return nil, ErrClosed
	}

	styleURL, err := b.styleURL()
	if err != nil {
		return nil, err
	}

	out := &domain.MapScene{
		Backend:     b.Name(),
		Status:      domain.SceneReady,
		StyleURL:    styleURL,
		Attribution: b.cfg.Attribution,
		Viewport:    scene.Viewport,
		Layers:      scene.Layers,
	}
	if !scene.Located {
		out.Status = domain.ScenePlaceholder
		out.Message = "No location available for this vehicle."
	}
	return out, nil
}

// Close drops pooled connections; further renders fail.
func (b *VectorBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.ready = false
	b.client.CloseIdleConnections()
	return nil
}
