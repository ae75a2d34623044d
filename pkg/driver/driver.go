// Package driver wraps a chromedp browser session with convenience
// operations for scripted and interactive automation. A Driver owns exactly
// one browser process; the browser binary is resolved through the install
// package at construction time, so no manual driver setup is needed.
//
// The Driver adds no semantics of its own on top of chromedp: every
// operation composes chromedp primitives and surfaces their errors
// unchanged apart from an operation prefix.
package driver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/dester-dev/dester/pkg/install"
)

// ErrClosed is returned by operations on a Driver after Close.
var ErrClosed = errors.New("driver: closed")

// DefaultWait is the implicit wait applied to operations that look up
// elements, unless overridden per driver or per call.
const DefaultWait = 10 * time.Second

// defaultSettings are the construction defaults before options apply.
func defaultSettings() settings {
	return settings{
		width:  1920,
		height: 1080,
		wait:   DefaultWait,
		flags:  map[string]any{},
		log:    zap.NewNop(),
	}
}

// settings collects construction-time configuration.
type settings struct {
	headless  bool
	width     int
	height    int
	posX      int
	posY      int
	wait      time.Duration
	execPath  string
	flags     map[string]any
	installer *install.Manager
	log       *zap.Logger
}

// Option configures a Driver at construction.
type Option func(*settings)

// WithHeadless runs the browser without a visible window.
func WithHeadless() Option {
	return func(s *settings) { s.headless = true }
}

// WithWindowSize sets the browser window size in pixels.
func WithWindowSize(width, height int) Option {
	return func(s *settings) { s.width, s.height = width, height }
}

// WithWindowPosition sets the pixel position of the window's top-left corner.
func WithWindowPosition(x, y int) Option {
	return func(s *settings) { s.posX, s.posY = x, y }
}

// WithWait sets the implicit wait used by element lookups.
func WithWait(d time.Duration) Option {
	return func(s *settings) { s.wait = d }
}

// WithExecPath uses the given browser executable instead of resolving one
// through the installer.
func WithExecPath(path string) Option {
	return func(s *settings) { s.execPath = path }
}

// WithFlag passes an extra command-line flag to the browser process.
func WithFlag(name string, value any) Option {
	return func(s *settings) { s.flags[name] = value }
}

// WithInstaller uses a custom install manager for browser resolution.
func WithInstaller(m *install.Manager) Option {
	return func(s *settings) { s.installer = m }
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(s *settings) { s.log = log }
}

// Driver is a facade over a single chromedp browser session. All operations
// are safe for sequential use; the Driver performs no internal concurrency.
type Driver struct {
	log  *zap.Logger
	wait time.Duration

	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// New starts a browser and returns a Driver owning it. The browser binary
// is taken from WithExecPath if set, otherwise resolved via the installer
// (downloading one when the system has none). Construction failures are
// returned unchanged apart from wrapping; New never retries.
func New(ctx context.Context, opts ...Option) (*Driver, error) {
	cfg := defaultSettings()
	for _, o := range opts {
		o(&cfg)
	}

	execPath := cfg.execPath
	if execPath == "" {
		mgr := cfg.installer
		if mgr == nil {
			mgr = install.NewManager(
				install.WithToken(install.TokenFromEnv()),
				install.WithLogger(cfg.log),
			)
		}

		path, err := mgr.Resolve(ctx)
		if err != nil {
			return nil, fmt.Errorf("driver: resolve browser: %w", err)
		}
		execPath = path
	}

	// Build allocator options: start from defaults, then adjust for
	// headed/headless and window geometry.
	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	allocOpts = append(allocOpts,
		chromedp.ExecPath(execPath),
		chromedp.WindowSize(cfg.width, cfg.height),
		chromedp.Flag("window-position", fmt.Sprintf("%d,%d", cfg.posX, cfg.posY)),
	)
	if !cfg.headless {
		// Override the default headless flag so a window opens.
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	for name, value := range cfg.flags {
		allocOpts = append(allocOpts, chromedp.Flag(name, value))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Force the browser to start by running a noop.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("driver: start browser: %w", err)
	}

	cfg.log.Debug("browser started",
		zap.String("exec_path", execPath),
		zap.Bool("headless", cfg.headless),
	)

	return &Driver{
		log:           cfg.log,
		wait:          cfg.wait,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}, nil
}

// Close shuts down the browser process. It is safe to call more than once.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	d.browserCancel()
	d.allocCancel()
	d.closed = true

	d.log.Debug("browser closed")
}

// opContext derives a chromedp-compatible context for one operation. The
// returned context descends from the browser context (as chromedp requires)
// but is also cancelled when the caller's ctx is done.
func (d *Driver) opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()

	if closed {
		return nil, nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	opCtx, cancel := context.WithTimeout(d.browserCtx, timeout)
	stop := context.AfterFunc(ctx, cancel)

	return opCtx, func() { stop(); cancel() }, nil
}
