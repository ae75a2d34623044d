// Package install resolves a browser executable for the driver, delegating
// download and caching of browser binaries to go-rod's launcher. A system
// install is preferred when one exists; otherwise the launcher downloads a
// pinned revision into its cache directory. Downloads against a rate-limited
// mirror are authenticated with a credential token read from the process
// environment. The token is passed through untouched.
package install

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapio"
)

// Environment variables checked by TokenFromEnv, in order.
const (
	EnvToken         = "DESTER_GH_TOKEN"
	EnvTokenFallback = "GITHUB_TOKEN"
)

// TokenFromEnv returns the credential token used to authenticate browser
// binary downloads. It checks DESTER_GH_TOKEN first, then GITHUB_TOKEN.
// An empty string means no token is configured; the value is never
// validated or transformed here.
func TokenFromEnv() string {
	if t := os.Getenv(EnvToken); t != "" {
		return t
	}
	return os.Getenv(EnvTokenFallback)
}

// Option configures a Manager.
type Option func(*Manager)

// WithToken sets the credential token sent as a bearer Authorization header
// on download requests.
func WithToken(token string) Option {
	return func(m *Manager) { m.token = token }
}

// WithDir sets the cache directory for downloaded browser binaries.
func WithDir(dir string) Option {
	return func(m *Manager) { m.dir = dir }
}

// WithHosts overrides the download hosts tried by the launcher.
func WithHosts(hosts ...launcher.Host) Option {
	return func(m *Manager) { m.hosts = hosts }
}

// WithSystemLookup disables or enables preferring a browser already
// installed on the system over downloading one.
func WithSystemLookup(enabled bool) Option {
	return func(m *Manager) { m.preferSystem = enabled }
}

// WithLogger routes the launcher's download progress output to the given
// logger at debug level. The default manager discards it.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// Manager resolves browser executables. The zero-argument NewManager
// prefers a system browser and downloads silently when none is found.
type Manager struct {
	token        string
	dir          string
	hosts        []launcher.Host
	preferSystem bool
	log          *zap.Logger
}

// NewManager creates a Manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		preferSystem: true,
		log:          zap.NewNop(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Resolve returns the path of a browser executable, downloading one through
// the launcher if necessary. Download failures (including rate-limit
// rejections from the mirror) are returned unchanged apart from wrapping.
func (m *Manager) Resolve(ctx context.Context) (string, error) {
	if m.preferSystem {
		if path, has := launcher.LookPath(); has {
			m.log.Debug("using system browser", zap.String("path", path))
			return path, nil
		}
	}

	b := launcher.NewBrowser()
	b.Context = ctx
	b.Logger = m.launcherLogger()

	if m.dir != "" {
		b.RootDir = m.dir
	}
	if len(m.hosts) > 0 {
		b.Hosts = m.hosts
	}
	if m.token != "" {
		b.HTTPClient = &http.Client{Transport: &tokenTransport{
			token: m.token,
			base:  http.DefaultTransport,
		}}
	}

	path, err := b.Get()
	if err != nil {
		return "", fmt.Errorf("install: download browser: %w", err)
	}

	m.log.Debug("resolved downloaded browser", zap.String("path", path))

	return path, nil
}

// launcherLogger adapts the manager's zap logger to the logger the rod
// launcher expects. The launcher's output is noisy, so it goes to debug and
// is silenced entirely when debug logging is off.
func (m *Manager) launcherLogger() utils.Logger {
	if m.log.Core().Enabled(zap.DebugLevel) {
		return log.New(&zapio.Writer{Log: m.log, Level: zap.DebugLevel}, "", 0)
	}
	return utils.LoggerQuiet
}

// tokenTransport adds a bearer Authorization header to every request.
type tokenTransport struct {
	token string
	base  http.RoundTripper
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Per RoundTripper contract the original request is not mutated.
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(clone)
}
