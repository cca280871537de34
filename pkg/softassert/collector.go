// Package softassert records failed checks instead of aborting the test,
// and fails the test once, at the end, with every failure it saw.
//
// A Collector is owned by exactly one test and is not safe for concurrent
// use. Guarded operations never let a failure escape; only AssertAll turns
// the accumulated records into a real test failure.
package softassert

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kidandcat/softassert/pkg/callsite"
)

// TB is the part of testing.TB that AssertAll needs.
type TB interface {
	Helper()
	Fatal(args ...any)
}

type Collector struct {
	failures []FailureRecord
	sink     Sink
	reporter callsite.Reporter
}

type Option func(*Collector)

// WithSink replaces the default stderr sink.
func WithSink(s Sink) Option {
	return func(c *Collector) {
		c.sink = s
	}
}

// WithReporter replaces stack inspection, e.g. with callsite.Fixed.
func WithReporter(r callsite.Reporter) Option {
	return func(c *Collector) {
		c.reporter = r
	}
}

func New(opts ...Option) *Collector {
	c := &Collector{
		sink:     NewLogSink(os.Stderr),
		reporter: callsite.StackReporter{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Assert runs check and records its failure. It reports whether the check
// held.
func (c *Collector) Assert(check Check) bool {
	return c.guard(KindAssertion, check.run)
}

// Do runs a driver call that is not an element lookup, e.g. navigation,
// and records its failure.
func (c *Collector) Do(fn func() error) bool {
	return c.guard(KindDriver, fn)
}

// Errorf records a failure, which makes the Collector itself an
// assert.TestingT: assert.Equal(c, want, got) is a soft assertion.
func (c *Collector) Errorf(format string, args ...any) {
	err := &AssertionError{Msg: cleanMessage(fmt.Sprintf(format, args...))}
	c.add(KindAssertion, err.Msg, fmt.Sprintf("%T", err))
}

// Found is the result of FindElement. Element is nil when the lookup failed.
type Found struct {
	Element Element
	// Value is the attribute requested with WithAttribute.
	Value    string
	HasValue bool
}

func (f Found) OK() bool {
	return f.Element != nil
}

type findOptions struct {
	action    string
	attribute string
}

type FindOption func(*findOptions)

// WithAction invokes the named action on the found element.
func WithAction(name string) FindOption {
	return func(o *findOptions) {
		o.action = name
	}
}

// WithAttribute reads the named attribute from the found element. It is
// read before any action runs.
func WithAttribute(name string) FindOption {
	return func(o *findOptions) {
		o.attribute = name
	}
}

// FindElement looks up an element and optionally reads an attribute from it
// and invokes an action on it. Each failing step is recorded separately; a
// failed action leaves the element and the attribute value in place.
func (c *Collector) FindElement(ctx context.Context, d Driver, by By, value string, opts ...FindOption) Found {
	var o findOptions
	for _, opt := range opts {
		opt(&o)
	}

	var el Element
	ok := c.guard(KindDriver, func() error {
		var err error
		el, err = d.FindElement(ctx, by, value)
		if err == nil && el == nil {
			err = fmt.Errorf("%w: %s=%s", ErrNoSuchElement, by, value)
		}
		return err
	})
	if !ok {
		return Found{}
	}

	found := Found{Element: el}
	if o.attribute != "" {
		found.Value, found.HasValue = c.Attribute(ctx, el, o.attribute)
	}
	if o.action != "" {
		c.Invoke(ctx, el, o.action)
	}
	return found
}

// Invoke runs the named action on el and records any failure.
func (c *Collector) Invoke(ctx context.Context, el Element, action string) bool {
	return c.guard(KindDriver, func() error {
		if el == nil {
			return fmt.Errorf("cannot invoke %q: no element", action)
		}
		return el.Invoke(ctx, action)
	})
}

// Attribute reads the named attribute from el. A missing attribute is not
// a failure and yields "", false.
func (c *Collector) Attribute(ctx context.Context, el Element, name string) (string, bool) {
	var (
		value string
		ok    bool
	)
	c.guard(KindDriver, func() error {
		if el == nil {
			return fmt.Errorf("cannot read attribute %q: no element", name)
		}
		var err error
		value, ok, err = el.Attribute(ctx, name)
		return err
	})
	return value, ok
}

// FindAbsent expects the lookup to fail with ErrNoSuchElement. A found
// element is recorded and returned; any other lookup error is recorded.
func (c *Collector) FindAbsent(ctx context.Context, d Driver, by By, value string) Element {
	var found Element
	c.guard(KindDriver, func() error {
		el, err := d.FindElement(ctx, by, value)
		switch {
		case errors.Is(err, ErrNoSuchElement):
			return nil
		case err != nil:
			return err
		case el == nil:
			return nil
		}
		found = el
		return &UnexpectedElementError{By: by, Value: value}
	})
	return found
}

// Failures returns a copy of the records in the order they were added.
func (c *Collector) Failures() []FailureRecord {
	out := make([]FailureRecord, len(c.failures))
	copy(out, c.failures)
	return out
}

func (c *Collector) Len() int {
	return len(c.failures)
}

// Err returns an *AggregateError holding every record, or nil.
func (c *Collector) Err() error {
	if len(c.failures) == 0 {
		return nil
	}
	return &AggregateError{Records: c.Failures()}
}

// AssertAll fails t with every record collected so far. Records are kept,
// so a later AssertAll reports them again along with any new ones.
func (c *Collector) AssertAll(t TB) {
	t.Helper()
	if err := c.Err(); err != nil {
		t.Fatal(err.Error())
	}
}

func (c *Collector) guard(kind Kind, fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprint(r)
			if err, isErr := r.(error); isErr {
				msg = Message(err)
			}
			c.add(KindPanic, msg, fmt.Sprintf("%T", r))
			ok = false
		}
	}()

	if err := fn(); err != nil {
		c.add(classify(err, kind), Message(err), fmt.Sprintf("%T", err))
		return false
	}
	return true
}

func (c *Collector) add(kind Kind, message, errType string) {
	site := c.reporter.Report()
	rec := FailureRecord{
		Caller:  site.Caller,
		Line:    site.Line,
		Message: message,
		Kind:    kind,
		ErrType: errType,
	}
	c.failures = append(c.failures, rec)
	c.sink.Failure(rec)
}
