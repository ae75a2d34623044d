package driver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	d := newTestDriver(t)
	srv := serveHTML(t, `<html><body><p id="msg">Hello World</p></body></html>`)

	require.NoError(t, d.Navigate(context.Background(), srv.URL))

	text, err := d.Text(context.Background(), "#msg")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", text)
}

func TestText_StripsNestedNoise(t *testing.T) {
	d := newTestDriver(t)
	srv := serveHTML(t, `<html><body>
		<div id="article">
			<h2>Article Heading</h2>
			<script>var tracked = true;</script>
			<style>#article { margin: 0; }</style>
			<p>Article body</p>
		</div>
		<p>Outside the article</p>
	</body></html>`)

	require.NoError(t, d.Navigate(context.Background(), srv.URL))

	text, err := d.Text(context.Background(), "#article")
	require.NoError(t, err)
	assert.Contains(t, text, "Article Heading")
	assert.Contains(t, text, "Article body")
	assert.NotContains(t, text, "var tracked")
	assert.NotContains(t, text, "margin: 0")
	assert.NotContains(t, text, "Outside the article")
}

func TestAttribute(t *testing.T) {
	d := newTestDriver(t)
	srv := serveHTML(t, `<html><body><a id="link" href="/next" rel="nofollow">next</a></body></html>`)

	require.NoError(t, d.Navigate(context.Background(), srv.URL))

	href, err := d.Attribute(context.Background(), "#link", "href")
	require.NoError(t, err)
	assert.Equal(t, "/next", href)

	_, err = d.Attribute(context.Background(), "#link", "data-missing")
	assert.Error(t, err)
}

func TestAttributes(t *testing.T) {
	d := newTestDriver(t)
	srv := serveHTML(t, `<html><body><a id="link" href="/next" rel="nofollow">next</a></body></html>`)

	require.NoError(t, d.Navigate(context.Background(), srv.URL))

	attrs, err := d.Attributes(context.Background(), "#link")
	require.NoError(t, err)
	assert.Equal(t, "/next", attrs["href"])
	assert.Equal(t, "nofollow", attrs["rel"])
}

func TestClick_Navigates(t *testing.T) {
	d := newTestDriver(t)
	srv := serveHTML(t, `<html><body>
		<a id="go" href="#clicked">go</a>
	</body></html>`)

	require.NoError(t, d.Navigate(context.Background(), srv.URL))
	require.NoError(t, d.Click(context.Background(), "#go"))

	url, err := d.CurrentURL(context.Background())
	require.NoError(t, err)
	assert.Contains(t, url, "#clicked")
}

func TestForceClick(t *testing.T) {
	d := newTestDriver(t)
	srv := serveHTML(t, `<html><body>
		<button id="btn" onclick="document.title='force-clicked'">press</button>
	</body></html>`)

	require.NoError(t, d.Navigate(context.Background(), srv.URL))
	require.NoError(t, d.ForceClick(context.Background(), "#btn"))

	title, err := d.Title(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "force-clicked", title)
}

func TestSendKeys(t *testing.T) {
	d := newTestDriver(t)
	srv := serveHTML(t, `<html><body><input id="field" value="old"></body></html>`)

	require.NoError(t, d.Navigate(context.Background(), srv.URL))
	require.NoError(t, d.SendKeys(context.Background(), "#field", "typed text"))

	var value string
	require.NoError(t, d.Evaluate(context.Background(), `document.querySelector("#field").value`, &value))
	assert.Equal(t, "typed text", value)
}

func TestWaitPresent_Timeout(t *testing.T) {
	d := newTestDriver(t)
	srv := serveHTML(t, `<html><body>empty</body></html>`)

	require.NoError(t, d.Navigate(context.Background(), srv.URL))

	err := d.WaitPresent(context.Background(), "#never", Wait(500*time.Millisecond))
	assert.Error(t, err)
}

func TestWaitVisible(t *testing.T) {
	d := newTestDriver(t)
	srv := serveHTML(t, `<html><body>
		<div id="late" style="display:none">late</div>
		<script>setTimeout(function() {
			document.getElementById("late").style.display = "block";
		}, 100);</script>
	</body></html>`)

	require.NoError(t, d.Navigate(context.Background(), srv.URL))
	assert.NoError(t, d.WaitVisible(context.Background(), "#late"))
}

func TestElement(t *testing.T) {
	d := newTestDriver(t)
	srv := serveHTML(t, `<html><body><p id="one">first</p></body></html>`)

	require.NoError(t, d.Navigate(context.Background(), srv.URL))

	node, err := d.Element(context.Background(), "#one")
	require.NoError(t, err)
	assert.Equal(t, "p", node.LocalName)
}

func TestEvaluate(t *testing.T) {
	d := newTestDriver(t)
	srv := serveHTML(t, `<html><body>ok</body></html>`)

	require.NoError(t, d.Navigate(context.Background(), srv.URL))

	var sum int
	require.NoError(t, d.Evaluate(context.Background(), "40 + 2", &sum))
	assert.Equal(t, 42, sum)
}

func TestPageText_StripsScriptsAndStyles(t *testing.T) {
	d := newTestDriver(t)
	srv := serveHTML(t, `<html><body>
		<h1>Visible Heading</h1>
		<script>var hidden = 1;</script>
		<style>body { color: red; }</style>
		<p>Visible paragraph</p>
	</body></html>`)

	require.NoError(t, d.Navigate(context.Background(), srv.URL))

	text, err := d.PageText(context.Background())
	require.NoError(t, err)
	assert.Contains(t, text, "Visible Heading")
	assert.Contains(t, text, "Visible paragraph")
	assert.NotContains(t, text, "var hidden")
	assert.NotContains(t, text, "color: red")
}

func TestScreenshot(t *testing.T) {
	d := newTestDriver(t)
	srv := serveHTML(t, `<html><body><h1>shot</h1></body></html>`)

	require.NoError(t, d.Navigate(context.Background(), srv.URL))

	buf, err := d.Screenshot(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, buf)
	// PNG magic bytes.
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, buf[:4])
}

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"single line", "hello", "hello"},
		{"blank lines collapsed", "a\n\n\nb", "a\nb"},
		{"whitespace-only lines collapsed", "a\n  \t\nb", "a\nb"},
		{"surrounding space trimmed", "  a\nb  ", "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collapseWhitespace(tt.in))
		})
	}
}
