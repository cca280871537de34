package softassert

import (
	"github.com/kidandcat/softassert/pkg/callsite"
)

// Kind tells apart genuine check failures from infrastructure errors.
type Kind int

const (
	KindAssertion Kind = iota
	KindNotFound
	KindDriver
	KindUnexpectedElement
	KindPanic
)

func (k Kind) String() string {
	switch k {
	case KindAssertion:
		return "assertion"
	case KindNotFound:
		return "not found"
	case KindDriver:
		return "driver"
	case KindUnexpectedElement:
		return "unexpected element"
	case KindPanic:
		return "panic"
	}
	return "unknown"
}

// FailureRecord is one observed failure. Records are never modified once
// appended to a Collector.
type FailureRecord struct {
	// Caller is the enclosing test function, empty if none was found.
	Caller  string
	Line    int
	Message string
	Kind    Kind
	// ErrType is the dynamic type of the original error or panic value.
	ErrType string
}

func (r FailureRecord) Site() callsite.Site {
	return callsite.Site{Caller: r.Caller, Line: r.Line}
}

func (r FailureRecord) String() string {
	return r.Site().String() + ": " + r.Message
}
