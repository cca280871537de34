package callsite

// Reporter resolves the call site of a failure at the moment it is recorded.
type Reporter interface {
	Report() Site
}

// ReporterFunc adapts a function to a Reporter.
type ReporterFunc func() Site

func (f ReporterFunc) Report() Site {
	return f()
}

// StackReporter inspects the live goroutine stack.
type StackReporter struct{}

func (StackReporter) Report() Site {
	return Find(Stack(1))
}

// Fixed reports a site passed in explicitly, for hosts where the "test" is
// not a Go function, e.g. a block in a script file.
func Fixed(caller string, line int) Reporter {
	site := Site{Caller: caller, Line: line}
	return ReporterFunc(func() Site { return site })
}
