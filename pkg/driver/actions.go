package driver

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// navTimeout bounds operations that are not element lookups (navigation,
// page queries, screenshots).
const navTimeout = 30 * time.Second

// maxContentBytes caps extracted page text (100KB).
const maxContentBytes = 100 * 1024

// Navigate loads the URL and waits for the document body to be ready.
func (d *Driver) Navigate(ctx context.Context, url string, opts ...CallOption) error {
	c := callOpts{wait: navTimeout}
	for _, o := range opts {
		o(&c)
	}

	opCtx, cancel, err := d.opContext(ctx, c.wait)
	if err != nil {
		return err
	}
	defer cancel()

	if err := chromedp.Run(opCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("driver: navigate: %w", err)
	}

	d.log.Debug("navigated", zap.String("url", url))

	return nil
}

// Element waits for the selector to match and returns the first matching
// DOM node.
func (d *Driver) Element(ctx context.Context, selector string, opts ...CallOption) (*cdp.Node, error) {
	c := d.callSettings(opts)

	opCtx, cancel, err := d.opContext(ctx, c.wait)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var nodes []*cdp.Node
	if err := chromedp.Run(opCtx,
		chromedp.Nodes(selector, &nodes, c.by.queryOption()),
	); err != nil {
		return nil, fmt.Errorf("driver: element: %w", err)
	}

	return nodes[0], nil
}

// Click waits for the element to be visible and clicks it.
func (d *Driver) Click(ctx context.Context, selector string, opts ...CallOption) error {
	c := d.callSettings(opts)

	opCtx, cancel, err := d.opContext(ctx, c.wait)
	if err != nil {
		return err
	}
	defer cancel()

	if err := chromedp.Run(opCtx,
		chromedp.WaitVisible(selector, c.by.queryOption()),
		chromedp.Click(selector, c.by.queryOption()),
	); err != nil {
		return fmt.Errorf("driver: click: %w", err)
	}

	return nil
}

// ForceClick dispatches a JavaScript click() on the element instead of a
// trusted mouse event. Useful when an overlay intercepts pointer events.
// CSS selectors only.
func (d *Driver) ForceClick(ctx context.Context, selector string, opts ...CallOption) error {
	c := d.callSettings(opts)

	opCtx, cancel, err := d.opContext(ctx, c.wait)
	if err != nil {
		return err
	}
	defer cancel()

	js := fmt.Sprintf(`document.querySelector(%q).click()`, selector)

	if err := chromedp.Run(opCtx,
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.Evaluate(js, nil),
	); err != nil {
		return fmt.Errorf("driver: force click: %w", err)
	}

	return nil
}

// WaitPresent blocks until the element exists in the DOM.
func (d *Driver) WaitPresent(ctx context.Context, selector string, opts ...CallOption) error {
	c := d.callSettings(opts)

	opCtx, cancel, err := d.opContext(ctx, c.wait)
	if err != nil {
		return err
	}
	defer cancel()

	if err := chromedp.Run(opCtx,
		chromedp.WaitReady(selector, c.by.queryOption()),
	); err != nil {
		return fmt.Errorf("driver: wait present: %w", err)
	}

	return nil
}

// WaitVisible blocks until the element is visible on the page.
func (d *Driver) WaitVisible(ctx context.Context, selector string, opts ...CallOption) error {
	c := d.callSettings(opts)

	opCtx, cancel, err := d.opContext(ctx, c.wait)
	if err != nil {
		return err
	}
	defer cancel()

	if err := chromedp.Run(opCtx,
		chromedp.WaitVisible(selector, c.by.queryOption()),
	); err != nil {
		return fmt.Errorf("driver: wait visible: %w", err)
	}

	return nil
}

// Text waits for the element and returns its clean text: script, style,
// noscript, and svg elements are stripped, whitespace is collapsed, and
// the result is capped at 100KB. CSS selectors only.
func (d *Driver) Text(ctx context.Context, selector string, opts ...CallOption) (string, error) {
	c := d.callSettings(opts)

	opCtx, cancel, err := d.opContext(ctx, c.wait)
	if err != nil {
		return "", err
	}
	defer cancel()

	if err := chromedp.Run(opCtx,
		chromedp.WaitReady(selector, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("driver: text: %w", err)
	}

	text, err := d.extractText(opCtx, selector)
	if err != nil {
		return "", fmt.Errorf("driver: text: %w", err)
	}

	return text, nil
}

// Attribute waits for the element to be visible and returns the value of
// one of its attributes. A missing attribute is an error.
func (d *Driver) Attribute(ctx context.Context, selector, name string, opts ...CallOption) (string, error) {
	c := d.callSettings(opts)

	opCtx, cancel, err := d.opContext(ctx, c.wait)
	if err != nil {
		return "", err
	}
	defer cancel()

	var (
		value string
		ok    bool
	)
	if err := chromedp.Run(opCtx,
		chromedp.WaitVisible(selector, c.by.queryOption()),
		chromedp.AttributeValue(selector, name, &value, &ok, c.by.queryOption()),
	); err != nil {
		return "", fmt.Errorf("driver: attribute: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("driver: attribute: %q has no attribute %q", selector, name)
	}

	return value, nil
}

// Attributes waits for the element to be visible and returns all attributes
// it currently holds.
func (d *Driver) Attributes(ctx context.Context, selector string, opts ...CallOption) (map[string]string, error) {
	c := d.callSettings(opts)

	opCtx, cancel, err := d.opContext(ctx, c.wait)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var attrs map[string]string
	if err := chromedp.Run(opCtx,
		chromedp.WaitVisible(selector, c.by.queryOption()),
		chromedp.Attributes(selector, &attrs, c.by.queryOption()),
	); err != nil {
		return nil, fmt.Errorf("driver: attributes: %w", err)
	}

	return attrs, nil
}

// SendKeys clears the element and types the text into it.
func (d *Driver) SendKeys(ctx context.Context, selector, text string, opts ...CallOption) error {
	c := d.callSettings(opts)

	opCtx, cancel, err := d.opContext(ctx, c.wait)
	if err != nil {
		return err
	}
	defer cancel()

	if err := chromedp.Run(opCtx,
		chromedp.Clear(selector, c.by.queryOption()),
		chromedp.SendKeys(selector, text, c.by.queryOption()),
	); err != nil {
		return fmt.Errorf("driver: send keys: %w", err)
	}

	return nil
}

// Submit types the text into the element, presses Enter, and waits for the
// resulting page to be ready.
func (d *Driver) Submit(ctx context.Context, selector, text string, opts ...CallOption) error {
	c := d.callSettings(opts)

	opCtx, cancel, err := d.opContext(ctx, c.wait)
	if err != nil {
		return err
	}
	defer cancel()

	if err := chromedp.Run(opCtx,
		chromedp.Clear(selector, c.by.queryOption()),
		chromedp.SendKeys(selector, text+"\r", c.by.queryOption()),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("driver: submit: %w", err)
	}

	return nil
}

// CurrentURL returns the URL of the current page.
func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	opCtx, cancel, err := d.opContext(ctx, navTimeout)
	if err != nil {
		return "", err
	}
	defer cancel()

	var url string
	if err := chromedp.Run(opCtx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("driver: current url: %w", err)
	}

	return url, nil
}

// Title returns the title of the current page.
func (d *Driver) Title(ctx context.Context) (string, error) {
	opCtx, cancel, err := d.opContext(ctx, navTimeout)
	if err != nil {
		return "", err
	}
	defer cancel()

	var title string
	if err := chromedp.Run(opCtx, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("driver: title: %w", err)
	}

	return title, nil
}

// PageInfo returns the URL and title of the current page in a single
// round trip.
func (d *Driver) PageInfo(ctx context.Context) (url, title string, err error) {
	opCtx, cancel, cerr := d.opContext(ctx, navTimeout)
	if cerr != nil {
		return "", "", cerr
	}
	defer cancel()

	if err := chromedp.Run(opCtx,
		chromedp.Location(&url),
		chromedp.Title(&title),
	); err != nil {
		return "", "", fmt.Errorf("driver: page info: %w", err)
	}

	return url, title, nil
}

// Evaluate runs the JavaScript expression on the page and unmarshals its
// result into res. Pass nil to discard the result.
func (d *Driver) Evaluate(ctx context.Context, js string, res any) error {
	opCtx, cancel, err := d.opContext(ctx, navTimeout)
	if err != nil {
		return err
	}
	defer cancel()

	if err := chromedp.Run(opCtx, chromedp.Evaluate(js, res)); err != nil {
		return fmt.Errorf("driver: evaluate: %w", err)
	}

	return nil
}

// PageText extracts clean text from the current page: script, style,
// noscript, and svg elements are removed, whitespace is collapsed, and the
// result is capped at 100KB.
func (d *Driver) PageText(ctx context.Context) (string, error) {
	opCtx, cancel, err := d.opContext(ctx, navTimeout)
	if err != nil {
		return "", err
	}
	defer cancel()

	text, err := d.extractText(opCtx, "")
	if err != nil {
		return "", fmt.Errorf("driver: page text: %w", err)
	}

	return text, nil
}

// extractText pulls the visible text out of the element matching the CSS
// selector, or out of the whole body when selector is empty. Noise tags
// are stripped from a detached clone so the live page is untouched.
func (d *Driver) extractText(opCtx context.Context, selector string) (string, error) {
	js := `
	(function(sel) {
		var el = sel ? document.querySelector(sel) : document.body;
		if (!el) {
			return "";
		}
		var clone = el.cloneNode(true);
		var tags = ["script", "style", "noscript", "svg"];
		for (var i = 0; i < tags.length; i++) {
			var elems = clone.querySelectorAll(tags[i]);
			for (var j = 0; j < elems.length; j++) {
				elems[j].remove();
			}
		}
		return clone.innerText || clone.textContent || "";
	})(%s)
	`

	selArg := "null"
	if selector != "" {
		selArg = fmt.Sprintf("%q", selector)
	}

	var text string
	if err := chromedp.Run(opCtx, chromedp.Evaluate(fmt.Sprintf(js, selArg), &text)); err != nil {
		return "", err
	}

	text = collapseWhitespace(text)

	if len(text) > maxContentBytes {
		text = text[:maxContentBytes] + "\n[content truncated]"
	}

	return text, nil
}

// Screenshot captures a PNG of the current viewport.
func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	opCtx, cancel, err := d.opContext(ctx, navTimeout)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var buf []byte
	if err := chromedp.Run(opCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("driver: screenshot: %w", err)
	}

	return buf, nil
}

// FullScreenshot captures the full scrollable page at the given quality
// (0-100). Quality 100 produces PNG, lower values JPEG.
func (d *Driver) FullScreenshot(ctx context.Context, quality int) ([]byte, error) {
	opCtx, cancel, err := d.opContext(ctx, navTimeout)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var buf []byte
	if err := chromedp.Run(opCtx, chromedp.FullScreenshot(&buf, quality)); err != nil {
		return nil, fmt.Errorf("driver: full screenshot: %w", err)
	}

	return buf, nil
}

// ElementScreenshot captures a PNG of the first element matching the
// selector.
func (d *Driver) ElementScreenshot(ctx context.Context, selector string, opts ...CallOption) ([]byte, error) {
	c := d.callSettings(opts)

	opCtx, cancel, err := d.opContext(ctx, c.wait)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var buf []byte
	if err := chromedp.Run(opCtx,
		chromedp.Screenshot(selector, &buf, c.by.queryOption()),
	); err != nil {
		return nil, fmt.Errorf("driver: element screenshot: %w", err)
	}

	return buf, nil
}

// multiBlankLine matches two or more consecutive newlines (with optional
// whitespace between them).
var multiBlankLine = regexp.MustCompile(`\n\s*\n`)

// collapseWhitespace reduces multiple blank lines to a single newline.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(multiBlankLine.ReplaceAllString(s, "\n"))
}
