package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/kidandcat/softassert/pkg/softassert"
)

// Page is one browser tab. It implements softassert.Driver.
type Page struct {
	ctx     context.Context
	timeout time.Duration
}

var _ softassert.Driver = (*Page)(nil)

// run executes actions with the per-call timeout, stopping early when ctx
// is cancelled.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(p.ctx, p.callTimeout(ctx))
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// callTimeout is the page default, or the time left on ctx when ctx carries
// a deadline of its own.
func (p *Page) callTimeout(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		return time.Until(deadline)
	}
	return p.timeout
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *Page) Location(ctx context.Context) (string, error) {
	var url string
	err := p.run(ctx, chromedp.Location(&url))
	return url, err
}

func (p *Page) Title(ctx context.Context) (string, error) {
	var title string
	err := p.run(ctx, chromedp.Title(&title))
	return title, err
}

// Screenshot captures the full page as PNG.
func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := p.run(ctx, chromedp.FullScreenshot(&buf, 100))
	return buf, err
}

// WaitVisible blocks until the element is visible or the call times out.
func (p *Page) WaitVisible(ctx context.Context, by softassert.By, value string) error {
	sel, opt := query(by, value)
	return p.run(ctx, chromedp.WaitVisible(sel, opt))
}

// FindElement returns the first element matching the locator without
// waiting for it to appear.
func (p *Page) FindElement(ctx context.Context, by softassert.By, value string) (softassert.Element, error) {
	nodes, err := p.nodes(ctx, by, value)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: unable to locate %s=%s", softassert.ErrNoSuchElement, by, value)
	}
	return &Element{page: p, node: nodes[0]}, nil
}

// FindElements returns every element matching the locator; none is not an
// error.
func (p *Page) FindElements(ctx context.Context, by softassert.By, value string) ([]*Element, error) {
	nodes, err := p.nodes(ctx, by, value)
	if err != nil {
		return nil, err
	}
	out := make([]*Element, len(nodes))
	for i, n := range nodes {
		out[i] = &Element{page: p, node: n}
	}
	return out, nil
}

// Count returns how many elements match the locator.
func (p *Page) Count(ctx context.Context, by softassert.By, value string) (int, error) {
	nodes, err := p.nodes(ctx, by, value)
	return len(nodes), err
}

func (p *Page) nodes(ctx context.Context, by softassert.By, value string) ([]*cdp.Node, error) {
	sel, opt := query(by, value)
	var nodes []*cdp.Node
	err := p.run(ctx, chromedp.Nodes(sel, &nodes, opt, chromedp.AtLeast(0)))
	return nodes, err
}

// query maps a locator strategy onto a chromedp selector.
func query(by softassert.By, value string) (string, chromedp.QueryOption) {
	switch by {
	case softassert.ByID:
		return value, chromedp.ByID
	case softassert.ByXPath:
		return value, chromedp.BySearch
	case softassert.ByJSPath:
		return value, chromedp.ByJSPath
	case softassert.ByName:
		return "[name=" + strconv.Quote(value) + "]", chromedp.ByQueryAll
	case softassert.ByTag:
		return strings.ToLower(value), chromedp.ByQueryAll
	}
	return value, chromedp.ByQueryAll
}
