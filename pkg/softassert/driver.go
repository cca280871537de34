package softassert

import "context"

// By is a locator strategy.
type By string

const (
	ByID     By = "id"
	ByCSS    By = "css"
	ByXPath  By = "xpath"
	ByName   By = "name"
	ByTag    By = "tag"
	ByJSPath By = "js"
)

// Driver looks up elements. A lookup that matches nothing must return an
// error wrapping ErrNoSuchElement; any other error is a driver failure.
type Driver interface {
	FindElement(ctx context.Context, by By, value string) (Element, error)
}

// Element is a handle to a found element.
type Element interface {
	// Invoke runs the named action, e.g. "click".
	Invoke(ctx context.Context, action string) error
	// Attribute reads the named attribute. A missing attribute is reported
	// with ok=false and a nil error.
	Attribute(ctx context.Context, name string) (value string, ok bool, err error)
}
