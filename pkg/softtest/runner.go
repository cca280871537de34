// Package softtest runs browser test scripts. Every step is a soft check:
// a failing step is recorded and the test carries on, and the test fails at
// the end with all of its failures.
package softtest

import (
	"context"
	"os"
	"time"

	"github.com/kidandcat/softassert/pkg/browser"
	"github.com/kidandcat/softassert/pkg/callsite"
	"github.com/kidandcat/softassert/pkg/softassert"
)

// Page is what steps need from a browser tab. *browser.Page implements it.
type Page interface {
	softassert.Driver
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)
	WaitVisible(ctx context.Context, by softassert.By, value string) error
	Count(ctx context.Context, by softassert.By, value string) (int, error)
}

type Runner struct {
	browser *browser.Browser
	config  *Config
	tests   []Test
	results []TestResult
	shots   *shotCounter
	open    func() (*session, error)
}

type Config struct {
	Headless           bool
	Timeout            time.Duration
	FailOnConsoleError bool
	// ErrorFilter returns true for console errors that should be ignored.
	ErrorFilter         func(browser.ConsoleMessage) bool
	ScreenshotDir       string
	UpdateScreenshots   bool
	ScreenshotThreshold float64
	ViewportWidth       int
	ViewportHeight      int
	// ActionTimeouts overrides Timeout per step action, e.g. "navigate".
	ActionTimeouts map[string]time.Duration
	// Sink receives each failure as it happens. Defaults to a LogSink on
	// stderr.
	Sink softassert.Sink
}

type Test struct {
	Name  string
	Steps []Step
}

type Step struct {
	Action    string
	By        softassert.By
	Target    string
	Attribute string
	Value     string
	// Line is the script line the step came from, 0 if built in code.
	Line int
}

type TestResult struct {
	Name   string
	Passed bool
	// Error is a *softassert.AggregateError when steps failed, or the error
	// that prevented the test from running.
	Error         error
	Failures      []softassert.FailureRecord
	Duration      time.Duration
	ConsoleErrors []browser.ConsoleMessage
}

type session struct {
	page    Page
	console func() []browser.ConsoleMessage
	close   func()
}

func NewRunner(config *Config) *Runner {
	if config == nil {
		config = &Config{
			Headless:           true,
			Timeout:            30 * time.Second,
			FailOnConsoleError: true,
		}
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.ScreenshotDir == "" {
		config.ScreenshotDir = "__screenshots__"
	}
	if config.Sink == nil {
		config.Sink = softassert.NewLogSink(os.Stderr)
	}

	r := &Runner{
		config: config,
		shots:  newShotCounter(),
		browser: browser.New(browser.Config{
			Headless:       config.Headless,
			Timeout:        config.Timeout,
			ViewportWidth:  config.ViewportWidth,
			ViewportHeight: config.ViewportHeight,
		}),
	}
	r.open = r.openBrowserPage
	return r
}

func (r *Runner) Start() error {
	return r.browser.Start()
}

func (r *Runner) Stop() error {
	return r.browser.Stop()
}

func (r *Runner) openBrowserPage() (*session, error) {
	page, cancel, err := r.browser.NewPage()
	if err != nil {
		return nil, err
	}
	console := page.ListenConsole()
	return &session{page: page, console: console.Messages, close: cancel}, nil
}

func (r *Runner) AddTest(test Test) {
	r.tests = append(r.tests, test)
}

func (r *Runner) Run() []TestResult {
	return r.RunWithProgress(nil)
}

// RunWithProgress runs every added test in order and sends each result to
// progress, if non-nil, as soon as it is known. progress is closed when all
// tests are done.
func (r *Runner) RunWithProgress(progress chan<- TestResult) []TestResult {
	r.results = make([]TestResult, 0, len(r.tests))
	for _, test := range r.tests {
		result := r.runTest(test)
		r.results = append(r.results, result)
		if progress != nil {
			progress <- result
		}
	}
	if progress != nil {
		close(progress)
	}
	return r.results
}

func (r *Runner) runTest(test Test) TestResult {
	start := time.Now()
	result := TestResult{Name: test.Name}

	s, err := r.open()
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}
	defer s.close()

	// The "test" of a script is its block; failures point at script lines.
	var line int
	c := softassert.New(
		softassert.WithSink(r.config.Sink),
		softassert.WithReporter(callsite.ReporterFunc(func() callsite.Site {
			return callsite.Site{Caller: test.Name, Line: line}
		})),
	)

	steps := &stepRunner{
		page:   s.page,
		c:      c,
		config: r.config,
		shots:  r.shots,
		name:   test.Name,
	}
	ctx := context.Background()
	for _, step := range test.Steps {
		line = step.Line
		steps.do(ctx, step)
	}

	for _, msg := range s.console() {
		if r.config.ErrorFilter != nil && r.config.ErrorFilter(msg) {
			continue
		}
		result.ConsoleErrors = append(result.ConsoleErrors, msg)
		if r.config.FailOnConsoleError {
			c.Errorf("console error: %s", msg.Message)
		}
	}

	result.Failures = c.Failures()
	result.Error = c.Err()
	result.Passed = result.Error == nil
	result.Duration = time.Since(start)
	return result
}
