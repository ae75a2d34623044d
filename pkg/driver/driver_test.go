package driver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDriver starts a headless driver against a system browser, skipping
// the test when none is installed.
func newTestDriver(t *testing.T) *Driver {
	t.Helper()

	path, has := launcher.LookPath()
	if !has {
		t.Skip("no chrome/chromium installed")
	}

	d, err := New(context.Background(),
		WithHeadless(),
		WithExecPath(path),
		WithWait(5*time.Second),
	)
	require.NoError(t, err)
	t.Cleanup(d.Close)

	return d
}

// serveHTML serves a single static page for the duration of the test.
func serveHTML(t *testing.T, html string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestOptions_Defaults(t *testing.T) {
	cfg := defaultSettings()

	assert.False(t, cfg.headless)
	assert.Equal(t, 1920, cfg.width)
	assert.Equal(t, 1080, cfg.height)
	assert.Equal(t, 10*time.Second, cfg.wait)
	assert.Empty(t, cfg.execPath)
}

func TestOptions_Apply(t *testing.T) {
	cfg := settings{flags: map[string]any{}}

	for _, o := range []Option{
		WithHeadless(),
		WithWindowSize(1280, 720),
		WithWindowPosition(10, 20),
		WithWait(3 * time.Second),
		WithExecPath("/opt/chrome"),
		WithFlag("incognito", true),
	} {
		o(&cfg)
	}

	assert.True(t, cfg.headless)
	assert.Equal(t, 1280, cfg.width)
	assert.Equal(t, 720, cfg.height)
	assert.Equal(t, 10, cfg.posX)
	assert.Equal(t, 20, cfg.posY)
	assert.Equal(t, 3*time.Second, cfg.wait)
	assert.Equal(t, "/opt/chrome", cfg.execPath)
	assert.Equal(t, true, cfg.flags["incognito"])
}

func TestNew_BadExecPath(t *testing.T) {
	_, err := New(context.Background(),
		WithHeadless(),
		WithExecPath("/nonexistent/browser"),
	)

	// Construction failures surface immediately; New never retries.
	assert.Error(t, err)
}

func TestClose_Idempotent(t *testing.T) {
	d := newTestDriver(t)

	d.Close()
	d.Close()
}

func TestOperationsAfterClose(t *testing.T) {
	d := newTestDriver(t)
	d.Close()

	err := d.Navigate(context.Background(), "http://localhost/")
	assert.ErrorIs(t, err, ErrClosed)

	_, err = d.CurrentURL(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNavigate_AndCurrentURL(t *testing.T) {
	d := newTestDriver(t)
	srv := serveHTML(t, `<html><head><title>Nav Test</title></head><body>ok</body></html>`)

	require.NoError(t, d.Navigate(context.Background(), srv.URL))

	url, err := d.CurrentURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/", url)

	title, err := d.Title(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Nav Test", title)
}

func TestPageInfo(t *testing.T) {
	d := newTestDriver(t)
	srv := serveHTML(t, `<html><head><title>Info Test</title></head><body>ok</body></html>`)

	require.NoError(t, d.Navigate(context.Background(), srv.URL))

	url, title, err := d.PageInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/", url)
	assert.Equal(t, "Info Test", title)
}

func TestNavigate_CancelledContext(t *testing.T) {
	d := newTestDriver(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Navigate(ctx, "http://localhost/")
	assert.ErrorIs(t, err, context.Canceled)
}
