package driver

import (
	"time"

	"github.com/chromedp/chromedp"
)

// Locator selects the strategy used to find elements.
type Locator int

const (
	// CSS matches elements by CSS selector. This is the default.
	CSS Locator = iota
	// ID matches an element by its id attribute.
	ID
	// XPath matches elements by XPath (or plain-text) query.
	XPath
)

// queryOption maps the locator to the chromedp query option.
func (l Locator) queryOption() chromedp.QueryOption {
	switch l {
	case ID:
		return chromedp.ByID
	case XPath:
		return chromedp.BySearch
	default:
		return chromedp.ByQuery
	}
}

// callOpts holds per-call overrides for element operations.
type callOpts struct {
	wait time.Duration
	by   Locator
}

// CallOption adjusts a single operation.
type CallOption func(*callOpts)

// Wait overrides the implicit wait for this call.
func Wait(d time.Duration) CallOption {
	return func(c *callOpts) { c.wait = d }
}

// By sets the locator strategy for this call.
func By(l Locator) CallOption {
	return func(c *callOpts) { c.by = l }
}

// callSettings resolves per-call options against the driver defaults.
func (d *Driver) callSettings(opts []CallOption) callOpts {
	c := callOpts{wait: d.wait, by: CSS}
	for _, o := range opts {
		o(&c)
	}
	return c
}
