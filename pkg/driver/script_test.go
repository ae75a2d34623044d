package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptObject_Keys(t *testing.T) {
	d := &Driver{}

	so := d.ScriptObject(context.Background())

	for _, key := range []string{
		"navigate", "click", "forceClick", "waitPresent", "waitVisible",
		"text", "pageText", "attribute", "attributes", "sendKeys", "submit",
		"url", "title", "pageInfo", "eval", "screenshot",
	} {
		assert.Contains(t, so, key)
	}
}

func TestScriptObject_Navigate(t *testing.T) {
	d := newTestDriver(t)
	srv := serveHTML(t, `<html><head><title>Scripted</title></head><body>ok</body></html>`)

	so := d.ScriptObject(context.Background())

	navigate := so["navigate"].(func(string) (string, error))
	url, err := navigate(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/", url)

	title := so["title"].(func() (string, error))
	got, err := title()
	require.NoError(t, err)
	assert.Equal(t, "Scripted", got)

	pageInfo := so["pageInfo"].(func() (map[string]string, error))
	info, err := pageInfo()
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/", info["url"])
	assert.Equal(t, "Scripted", info["title"])
}

func TestScriptObject_Screenshot(t *testing.T) {
	d := newTestDriver(t)
	srv := serveHTML(t, `<html><body>shot</body></html>`)

	require.NoError(t, d.Navigate(context.Background(), srv.URL))

	so := d.ScriptObject(context.Background())
	screenshot := so["screenshot"].(func(string) error)

	path := filepath.Join(t.TempDir(), "page.png")
	require.NoError(t, screenshot(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
