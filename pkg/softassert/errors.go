package softassert

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSuchElement is the lookup failure drivers wrap when no element
// matches a locator. FindAbsent treats it as success.
var ErrNoSuchElement = errors.New("no such element")

// AssertionError is returned by value checks that do not hold.
type AssertionError struct {
	Msg      string
	Expected any
	Actual   any
}

func (e *AssertionError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "assertion failed"
	}
	if e.Expected == nil && e.Actual == nil {
		return msg
	}
	return fmt.Sprintf("%s: expected '%v', got '%v'", msg, e.Expected, e.Actual)
}

// FailureMessage is preferred over the Error() text of whatever wraps the
// assertion when the failure is recorded.
func (e *AssertionError) FailureMessage() string {
	return e.Error()
}

// UnexpectedElementError is recorded by FindAbsent when the element exists.
type UnexpectedElementError struct {
	By    By
	Value string
}

func (e *UnexpectedElementError) Error() string {
	return fmt.Sprintf("unexpected element found: %s=%s", e.By, e.Value)
}

// AggregateError is the consolidated failure returned by Collector.Err.
type AggregateError struct {
	Records []FailureRecord
}

func (e *AggregateError) Error() string {
	var b strings.Builder
	b.WriteString("One or more checks failed:")
	for i, r := range e.Records {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, strings.ReplaceAll(r.String(), "\n", "\n     "))
	}
	return b.String()
}

type failureMessager interface {
	FailureMessage() string
}

// Message normalizes an error into the text stored on a FailureRecord: a
// structured FailureMessage anywhere in the chain wins over Error().
func Message(err error) string {
	var m failureMessager
	if errors.As(err, &m) {
		return m.FailureMessage()
	}
	return err.Error()
}

func classify(err error, fallback Kind) Kind {
	var assertion *AssertionError
	var unexpected *UnexpectedElementError
	switch {
	case errors.Is(err, ErrNoSuchElement):
		return KindNotFound
	case errors.As(err, &unexpected):
		return KindUnexpectedElement
	case errors.As(err, &assertion):
		return KindAssertion
	}
	return fallback
}
