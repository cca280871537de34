package softassert

import (
	"fmt"
	"strings"

	"github.com/stretchr/testify/require"
)

// Check is a value assertion run by Collector.Assert. It is either a
// BoundCheck or an UnboundCheck.
type Check interface {
	run() error
}

// BoundCheck already carries everything it needs. A non-nil error is a
// failure, usually an *AssertionError.
type BoundCheck func() error

func (f BoundCheck) run() error {
	return f()
}

// UnboundCheck expects the test instance as its first argument, the shape
// of testify's assert and require functions:
//
//	softassert.UnboundCheck(func(t require.TestingT) {
//		assert.Equal(t, 200, resp.StatusCode)
//	})
//
// The collector passes a capturing T; FailNow only ends the check.
type UnboundCheck func(t require.TestingT)

func (f UnboundCheck) run() (err error) {
	t := &captureT{}
	defer func() {
		if r := recover(); r != nil && r != (failNow{}) {
			panic(r)
		}
		err = t.err()
	}()
	f(t)
	return nil
}

// Equal is a BoundCheck comparing two comparable values.
func Equal[T comparable](expected, actual T, msg string) BoundCheck {
	return func() error {
		if expected != actual {
			return &AssertionError{Msg: msg, Expected: expected, Actual: actual}
		}
		return nil
	}
}

// True is a BoundCheck for a boolean condition.
func True(cond bool, msg string) BoundCheck {
	return func() error {
		if !cond {
			return &AssertionError{Msg: msg}
		}
		return nil
	}
}

type failNow struct{}

type captureT struct {
	msgs    []string
	aborted bool
}

func (t *captureT) Errorf(format string, args ...any) {
	t.msgs = append(t.msgs, cleanMessage(fmt.Sprintf(format, args...)))
}

func (t *captureT) FailNow() {
	t.aborted = true
	panic(failNow{})
}

func (t *captureT) Helper() {}

func (t *captureT) err() error {
	if len(t.msgs) == 0 {
		if t.aborted {
			return &AssertionError{Msg: "check aborted"}
		}
		return nil
	}
	return &AssertionError{Msg: strings.Join(t.msgs, "\n")}
}

// cleanMessage drops the labelled blocks testify adds that only make sense
// on a real *testing.T: the error trace and the test name.
func cleanMessage(msg string) string {
	var out []string
	skip := false
	for _, line := range strings.Split(msg, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if label, ok := testifyLabel(trimmed); ok {
			skip = label == "Error Trace" || label == "Test"
			if skip {
				continue
			}
			_, rest, _ := strings.Cut(trimmed, ":")
			trimmed = label + ": " + strings.TrimSpace(rest)
		} else if skip {
			continue
		}
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}

func testifyLabel(line string) (string, bool) {
	for _, label := range []string{"Error Trace", "Error", "Test", "Messages"} {
		if strings.HasPrefix(line, label+":") {
			return label, true
		}
	}
	return "", false
}
