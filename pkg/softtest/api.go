package softtest

import (
	"context"

	"github.com/kidandcat/softassert/pkg/softassert"
)

type TestBuilder struct {
	runner *Runner
	test   Test
}

func New() *Runner {
	return NewRunner(nil)
}

func WithConfig(config *Config) *Runner {
	return NewRunner(config)
}

func (r *Runner) Test(name string) *TestBuilder {
	return &TestBuilder{
		runner: r,
		test: Test{
			Name: name,
		},
	}
}

func (tb *TestBuilder) step(action, selector, value string) *TestBuilder {
	by, target := ParseSelector(selector)
	tb.test.Steps = append(tb.test.Steps, Step{
		Action: action,
		By:     by,
		Target: target,
		Value:  value,
	})
	return tb
}

func (tb *TestBuilder) Navigate(url string) *TestBuilder {
	tb.test.Steps = append(tb.test.Steps, Step{
		Action: "navigate",
		Target: url,
	})
	return tb
}

func (tb *TestBuilder) Click(selector string) *TestBuilder {
	return tb.step("click", selector, "")
}

func (tb *TestBuilder) Hover(selector string) *TestBuilder {
	return tb.step("hover", selector, "")
}

func (tb *TestBuilder) Type(selector, text string) *TestBuilder {
	return tb.step("type", selector, text)
}

func (tb *TestBuilder) WaitFor(selector string) *TestBuilder {
	return tb.step("wait_for", selector, "")
}

func (tb *TestBuilder) AssertText(selector, expected string) *TestBuilder {
	return tb.step("assert_text", selector, expected)
}

func (tb *TestBuilder) AssertExists(selector string) *TestBuilder {
	return tb.step("assert_element_exists", selector, "")
}

func (tb *TestBuilder) AssertAbsent(selector string) *TestBuilder {
	return tb.step("assert_element_not_exists", selector, "")
}

func (tb *TestBuilder) Run() TestResult {
	tb.runner.AddTest(tb.test)
	results := tb.runner.Run()
	if len(results) > 0 {
		return results[len(results)-1]
	}
	return TestResult{
		Name:   tb.test.Name,
		Passed: false,
		Error:  ErrNoTestResults,
	}
}

func (tb *TestBuilder) Add() *TestBuilder {
	tb.runner.AddTest(tb.test)
	return tb
}

// PageChecker drives a page from a Go test with soft checks. Failures point
// at the calling test function; AssertAll fails the test with all of them.
//
//	pc := softtest.NewPageChecker(ctx, page, cfg)
//	pc.Navigate(url).Click("#login").AssertText("h1", "Welcome")
//	pc.AssertAll(t)
type PageChecker struct {
	ctx   context.Context
	steps *stepRunner
}

func NewPageChecker(ctx context.Context, page Page, config *Config, opts ...softassert.Option) *PageChecker {
	if config == nil {
		config = NewRunner(nil).config
	}
	return &PageChecker{
		ctx: ctx,
		steps: &stepRunner{
			page:   page,
			c:      softassert.New(opts...),
			config: config,
			shots:  newShotCounter(),
			name:   "page",
		},
	}
}

func (pc *PageChecker) do(action, selector, value string) *PageChecker {
	by, target := ParseSelector(selector)
	pc.steps.do(pc.ctx, Step{Action: action, By: by, Target: target, Value: value})
	return pc
}

func (pc *PageChecker) Navigate(url string) *PageChecker {
	pc.steps.do(pc.ctx, Step{Action: "navigate", Target: url})
	return pc
}

func (pc *PageChecker) Click(selector string) *PageChecker {
	return pc.do("click", selector, "")
}

func (pc *PageChecker) Hover(selector string) *PageChecker {
	return pc.do("hover", selector, "")
}

func (pc *PageChecker) Type(selector, text string) *PageChecker {
	return pc.do("type", selector, text)
}

func (pc *PageChecker) WaitFor(selector string) *PageChecker {
	return pc.do("wait_for", selector, "")
}

func (pc *PageChecker) AssertText(selector, expected string) *PageChecker {
	return pc.do("assert_text", selector, expected)
}

func (pc *PageChecker) AssertAbsent(selector string) *PageChecker {
	return pc.do("assert_element_not_exists", selector, "")
}

func (pc *PageChecker) AssertTitle(expected string) *PageChecker {
	pc.steps.do(pc.ctx, Step{Action: "assert_title", Target: expected})
	return pc
}

// Collector gives access to the underlying collector for checks the
// fluent API does not cover.
func (pc *PageChecker) Collector() *softassert.Collector {
	return pc.steps.c
}

func (pc *PageChecker) AssertAll(t softassert.TB) {
	t.Helper()
	pc.steps.c.AssertAll(t)
}
