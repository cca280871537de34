package softtest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kidandcat/softassert/pkg/softassert"
)

const pollInterval = 100 * time.Millisecond

type keyer interface {
	SendKeys(ctx context.Context, text string) error
}

type valueSetter interface {
	SetValue(ctx context.Context, value string) error
}

// stepRunner executes steps against one page, recording every failure on
// its collector.
type stepRunner struct {
	page   Page
	c      *softassert.Collector
	config *Config
	shots  *shotCounter
	name   string
}

// timeout is the configured timeout for action, or the runner default.
func (s *stepRunner) timeout(action string) time.Duration {
	if d := s.config.ActionTimeouts[action]; d > 0 {
		return d
	}
	return s.config.Timeout
}

func (s *stepRunner) do(ctx context.Context, step Step) {
	if _, ok := s.config.ActionTimeouts[step.Action]; ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout(step.Action))
		defer cancel()
	}

	c := s.c
	switch step.Action {
	case "navigate":
		c.Do(func() error { return s.page.Navigate(ctx, step.Target) })

	case "click", "hover", "check", "uncheck":
		c.FindElement(ctx, s.page, step.By, step.Target, softassert.WithAction(step.Action))

	case "type":
		found := c.FindElement(ctx, s.page, step.By, step.Target)
		if found.OK() {
			c.Do(func() error {
				k, ok := found.Element.(keyer)
				if !ok {
					return ErrNoKeyboard
				}
				return k.SendKeys(ctx, step.Value)
			})
		}

	case "select":
		found := c.FindElement(ctx, s.page, step.By, step.Target, softassert.WithAction("click"))
		if found.OK() {
			c.Do(func() error {
				v, ok := found.Element.(valueSetter)
				if !ok {
					return ErrNoKeyboard
				}
				return v.SetValue(ctx, step.Value)
			})
		}

	case "wait_for":
		c.Do(func() error { return s.page.WaitVisible(ctx, step.By, step.Target) })

	case "assert_element_exists":
		c.FindElement(ctx, s.page, step.By, step.Target)

	case "assert_element_not_exists":
		c.FindAbsent(ctx, s.page, step.By, step.Target)

	case "assert_text":
		found := c.FindElement(ctx, s.page, step.By, step.Target, softassert.WithAttribute("innerText"))
		if found.OK() {
			c.Assert(softassert.Equal(step.Value, strings.TrimSpace(found.Value), "text of "+step.Target))
		}

	case "assert_text_contains":
		found := c.FindElement(ctx, s.page, step.By, step.Target, softassert.WithAttribute("innerText"))
		if found.OK() {
			c.Assert(softassert.True(strings.Contains(found.Value, step.Value),
				fmt.Sprintf("expected text of %s to contain '%s', got '%s'", step.Target, step.Value, found.Value)))
		}

	case "assert_attribute":
		found := c.FindElement(ctx, s.page, step.By, step.Target, softassert.WithAttribute(step.Attribute))
		if !found.OK() {
			return
		}
		if !found.HasValue {
			c.Assert(softassert.True(false, fmt.Sprintf("attribute '%s' not found on %s", step.Attribute, step.Target)))
			return
		}
		c.Assert(softassert.Equal(step.Value, found.Value, "attribute '"+step.Attribute+"' of "+step.Target))

	case "assert_count":
		want, err := strconv.Atoi(step.Value)
		if err != nil {
			c.Errorf("assert_count %s: invalid count %q", step.Target, step.Value)
			return
		}
		var got int
		if c.Do(func() (err error) { got, err = s.page.Count(ctx, step.By, step.Target); return err }) {
			c.Assert(softassert.Equal(want, got, "number of "+step.Target))
		}

	case "assert_url":
		var url string
		if c.Do(func() (err error) { url, err = s.page.Location(ctx); return err }) {
			c.Assert(softassert.Equal(step.Target, url, "URL"))
		}

	case "assert_title":
		var title string
		if c.Do(func() (err error) { title, err = s.page.Title(ctx); return err }) {
			c.Assert(softassert.Equal(step.Target, title, "title"))
		}

	case "screenshot":
		c.Do(func() error { return s.screenshot(ctx, step.Target) })

	case "wait_for_text":
		c.Do(func() error { return s.waitForText(ctx, step) })

	case "wait_for_url":
		c.Do(func() error { return s.waitForURL(ctx, step.Target) })

	default:
		c.Errorf("unknown action: %s", step.Action)
	}
}

func (s *stepRunner) waitForText(ctx context.Context, step Step) error {
	var last string
	err := poll(ctx, s.timeout(step.Action), func() (bool, error) {
		el, err := s.page.FindElement(ctx, step.By, step.Target)
		if err != nil {
			return false, err
		}
		text, _, err := el.Attribute(ctx, "innerText")
		if err != nil {
			return false, err
		}
		last = text
		return strings.Contains(text, step.Value), nil
	})
	if err != nil {
		return &softassert.AssertionError{
			Msg: fmt.Sprintf("timeout waiting for %s to contain '%s' (last text '%s'): %v", step.Target, step.Value, last, err),
		}
	}
	return nil
}

func (s *stepRunner) waitForURL(ctx context.Context, want string) error {
	var last string
	err := poll(ctx, s.timeout("wait_for_url"), func() (bool, error) {
		url, err := s.page.Location(ctx)
		if err != nil {
			return false, err
		}
		last = url
		return strings.Contains(url, want), nil
	})
	if err != nil {
		return &softassert.AssertionError{
			Msg: fmt.Sprintf("timeout waiting for URL to contain '%s' (last URL '%s')", want, last),
		}
	}
	return nil
}

// poll calls cond until it reports true or timeout passes. On timeout it
// returns the last error cond reported, or the context error.
func poll(ctx context.Context, timeout time.Duration, cond func() (bool, error)) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		ok, err := cond()
		if ok {
			return nil
		}
		lastErr = err
		select {
		case <-ticker.C:
		case <-ctx.Done():
			if lastErr != nil {
				return lastErr
			}
			return ctx.Err()
		}
	}
}
