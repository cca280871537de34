// Package browser drives Chrome through chromedp and exposes pages as
// softassert drivers.
package browser

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

var ErrNotStarted = errors.New("browser not started")

type Config struct {
	Headless bool
	// Timeout bounds every single browser call.
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
}

type Browser struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	config      Config
}

func New(config Config) *Browser {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &Browser{config: config}
}

func (b *Browser) Start() error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.config.Headless),
		chromedp.Flag("disable-gpu", b.config.Headless),
		chromedp.Flag("no-sandbox", true),
	)
	if b.config.ViewportWidth > 0 && b.config.ViewportHeight > 0 {
		opts = append(opts, chromedp.WindowSize(b.config.ViewportWidth, b.config.ViewportHeight))
	}

	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return nil
}

func (b *Browser) Stop() error {
	if b.allocCancel != nil {
		b.allocCancel()
	}
	return nil
}

// NewPage opens a fresh tab. The returned cancel func closes it.
func (b *Browser) NewPage() (*Page, context.CancelFunc, error) {
	if b.allocCtx == nil {
		return nil, nil, ErrNotStarted
	}

	ctx, cancel := chromedp.NewContext(b.allocCtx)
	// The first Run launches the browser; it must not carry a timeout.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, nil, err
	}
	return &Page{ctx: ctx, timeout: b.config.Timeout}, cancel, nil
}

// ConsoleMessage is a console.error call observed on a page.
type ConsoleMessage struct {
	Message   string
	Type      string
	Timestamp time.Time
}

// ConsoleLog collects console errors from chromedp's event goroutine.
type ConsoleLog struct {
	mu       sync.Mutex
	messages []ConsoleMessage
}

func (l *ConsoleLog) Messages() []ConsoleMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ConsoleMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

func (l *ConsoleLog) add(m ConsoleMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, m)
}

// ListenConsole starts recording console errors on p.
func (p *Page) ListenConsole() *ConsoleLog {
	log := &ConsoleLog{}
	chromedp.ListenTarget(p.ctx, func(ev interface{}) {
		switch ev := ev.(type) {
		case *runtime.EventConsoleAPICalled:
			if ev.Type != runtime.APITypeError {
				return
			}
			var message string
			if len(ev.Args) > 0 && ev.Args[0].Value != nil {
				message = string(ev.Args[0].Value)
			}
			log.add(ConsoleMessage{
				Message:   message,
				Type:      string(ev.Type),
				Timestamp: time.Now(),
			})
		}
	})
	return log
}
