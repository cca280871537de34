package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"

	"github.com/kidandcat/softassert/pkg/softassert"
)

var ErrUnknownAction = errors.New("unknown action")

// Element is a node found on a Page. It implements softassert.Element.
type Element struct {
	page *Page
	node *cdp.Node
}

var _ softassert.Element = (*Element)(nil)

// properties are read from the live DOM object rather than its attributes.
var properties = map[string]bool{
	"innerText":   true,
	"textContent": true,
	"value":       true,
}

func (e *Element) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

// Node returns the DOM node as it was when the element was found.
func (e *Element) Node() *cdp.Node {
	return e.node
}

// Invoke runs a named action: click, double_click, hover, submit, clear,
// focus, blur, scroll_into_view, check or uncheck.
func (e *Element) Invoke(ctx context.Context, action string) error {
	var a chromedp.Action
	switch action {
	case "click":
		a = chromedp.Click(e.ids(), chromedp.ByNodeID)
	case "double_click":
		a = chromedp.DoubleClick(e.ids(), chromedp.ByNodeID)
	case "hover":
		return e.page.run(ctx, chromedp.ScrollIntoView(e.ids(), chromedp.ByNodeID), chromedp.ActionFunc(e.hover))
	case "submit":
		a = chromedp.Submit(e.ids(), chromedp.ByNodeID)
	case "clear":
		a = chromedp.Clear(e.ids(), chromedp.ByNodeID)
	case "focus":
		a = chromedp.Focus(e.ids(), chromedp.ByNodeID)
	case "blur":
		a = chromedp.Blur(e.ids(), chromedp.ByNodeID)
	case "scroll_into_view":
		a = chromedp.ScrollIntoView(e.ids(), chromedp.ByNodeID)
	case "check", "uncheck":
		return e.setChecked(ctx, action == "check")
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return e.page.run(ctx, a)
}

// hover moves the mouse to the centre of the element's content box.
func (e *Element) hover(ctx context.Context) error {
	box, err := dom.GetBoxModel().WithNodeID(e.node.NodeID).Do(ctx)
	if err != nil {
		return err
	}
	if len(box.Content) < 8 {
		return fmt.Errorf("element %d has no layout box", e.node.NodeID)
	}
	var x, y float64
	for i := 0; i < 8; i += 2 {
		x += box.Content[i]
		y += box.Content[i+1]
	}
	return chromedp.MouseEvent(input.MouseMoved, x/4, y/4).Do(ctx)
}

func (e *Element) setChecked(ctx context.Context, want bool) error {
	var checked bool
	if err := e.page.run(ctx, chromedp.JavascriptAttribute(e.ids(), "checked", &checked, chromedp.ByNodeID)); err != nil {
		return err
	}
	if checked == want {
		return nil
	}
	return e.page.run(ctx, chromedp.Click(e.ids(), chromedp.ByNodeID))
}

// Attribute reads an HTML attribute, or the innerText, textContent and
// value DOM properties. A property that is undefined or null on the element
// is missing, not an error.
func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	if properties[name] {
		var value string
		err := e.page.run(ctx, chromedp.JavascriptAttribute(e.ids(), name, &value, chromedp.ByNodeID))
		switch {
		case missingProperty(err):
			return "", false, nil
		case err != nil:
			return "", false, err
		}
		return value, true, nil
	}

	var (
		value string
		ok    bool
	)
	err := e.page.run(ctx, chromedp.AttributeValue(e.ids(), name, &value, &ok, chromedp.ByNodeID))
	return value, ok, err
}

func missingProperty(err error) bool {
	return errors.Is(err, chromedp.ErrJSUndefined) || errors.Is(err, chromedp.ErrJSNull)
}

func (e *Element) Text(ctx context.Context) (string, error) {
	var text string
	err := e.page.run(ctx, chromedp.Text(e.ids(), &text, chromedp.ByNodeID))
	return text, err
}

func (e *Element) SendKeys(ctx context.Context, text string) error {
	return e.page.run(ctx, chromedp.SendKeys(e.ids(), text, chromedp.ByNodeID))
}

func (e *Element) SetValue(ctx context.Context, value string) error {
	return e.page.run(ctx, chromedp.SetValue(e.ids(), value, chromedp.ByNodeID))
}
