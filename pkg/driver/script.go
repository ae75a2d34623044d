package driver

import (
	"context"
	"os"
)

// ScriptObject exposes the driver to an interactive evaluation session as a
// set of context-bound functions. The returned map is what the dagger
// session binds under the driver's name, so an operator can write
// driver.navigate("https://example.com") instead of threading contexts by
// hand. Errors thrown by these functions are reported by the session and do
// not end it.
func (d *Driver) ScriptObject(ctx context.Context) map[string]any {
	return map[string]any{
		"navigate": func(url string) (string, error) {
			if err := d.Navigate(ctx, url); err != nil {
				return "", err
			}
			return d.CurrentURL(ctx)
		},
		"click": func(selector string) error {
			return d.Click(ctx, selector)
		},
		"forceClick": func(selector string) error {
			return d.ForceClick(ctx, selector)
		},
		"waitPresent": func(selector string) error {
			return d.WaitPresent(ctx, selector)
		},
		"waitVisible": func(selector string) error {
			return d.WaitVisible(ctx, selector)
		},
		"text": func(selector string) (string, error) {
			return d.Text(ctx, selector)
		},
		"pageText": func() (string, error) {
			return d.PageText(ctx)
		},
		"attribute": func(selector, name string) (string, error) {
			return d.Attribute(ctx, selector, name)
		},
		"attributes": func(selector string) (map[string]string, error) {
			return d.Attributes(ctx, selector)
		},
		"sendKeys": func(selector, text string) error {
			return d.SendKeys(ctx, selector, text)
		},
		"submit": func(selector, text string) error {
			return d.Submit(ctx, selector, text)
		},
		"url": func() (string, error) {
			return d.CurrentURL(ctx)
		},
		"title": func() (string, error) {
			return d.Title(ctx)
		},
		"pageInfo": func() (map[string]string, error) {
			url, title, err := d.PageInfo(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]string{"url": url, "title": title}, nil
		},
		"eval": func(js string) (any, error) {
			var res any
			if err := d.Evaluate(ctx, js, &res); err != nil {
				return nil, err
			}
			return res, nil
		},
		"screenshot": func(path string) error {
			buf, err := d.Screenshot(ctx)
			if err != nil {
				return err
			}
			return os.WriteFile(path, buf, 0o644)
		},
	}
}
