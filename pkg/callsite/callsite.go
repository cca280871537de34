// Package callsite locates the test function a failure originated from.
//
// A call site is the nearest enclosing frame whose function name contains
// "test", searched from the innermost frame outwards. The search is read-only
// and may be called from anywhere, including from within a recovered panic.
package callsite

import (
	"fmt"
	"runtime"
	"strings"
)

const marker = "test"

// initialDepth is the first guess at the stack size; Stack grows past it.
const initialDepth = 64

// Frame is one entry of a call stack, innermost first.
type Frame struct {
	Function string
	File     string
	Line     int
}

// Site identifies where in a test function a failure happened.
// The zero Site means no enclosing test frame was found.
type Site struct {
	Caller string
	Line   int
}

func (s Site) Known() bool {
	return s.Caller != ""
}

func (s Site) String() string {
	if !s.Known() {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", s.Caller, s.Line)
}

// Find returns the first frame, innermost first, whose short function name
// contains "test" (case-insensitive). Frames past the first match are never
// inspected.
func Find(frames []Frame) Site {
	for _, f := range frames {
		name := ShortName(f.Function)
		if strings.Contains(strings.ToLower(name), marker) {
			return Site{Caller: name, Line: f.Line}
		}
	}
	return Site{}
}

// ShortName strips the package path from a fully qualified function name:
// "github.com/a/b_test.TestFoo.func1" becomes "TestFoo.func1".
//
// The runtime escapes dots in the last path element ("yaml%2ev3"), so the
// first dot after the last slash ends the package. Unescaped version
// suffixes such as "yaml.v3" are skipped as well.
func ShortName(function string) string {
	name := function
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	for {
		i := strings.Index(name, ".")
		if i < 0 {
			return name
		}
		name = name[i+1:]
		if !versionSegment(name) {
			return name
		}
	}
}

// versionSegment reports whether s starts with "vN." for some number N.
func versionSegment(s string) bool {
	if len(s) < 3 || s[0] != 'v' {
		return false
	}
	i := 1
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i > 1 && i < len(s) && s[i] == '.'
}

// Stack returns the live call stack of the calling goroutine, innermost
// first. skip=0 starts at the caller of Stack.
func Stack(skip int) []Frame {
	pcs := make([]uintptr, initialDepth)
	n := runtime.Callers(skip+2, pcs)
	for n == len(pcs) {
		pcs = make([]uintptr, 2*len(pcs))
		n = runtime.Callers(skip+2, pcs)
	}
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	out := make([]Frame, 0, n)
	for {
		f, more := frames.Next()
		out = append(out, Frame{Function: f.Function, File: f.File, Line: f.Line})
		if !more {
			break
		}
	}
	return out
}
