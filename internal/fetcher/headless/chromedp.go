// Package headless contains fetch sessions that render pages in headless Chrome.
package headless

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/JakeFAU/sons-crawler/internal/crawler"
)

// Config controls the behavior of the headless fetcher.
type Config struct {
	UserAgent         string
	NavigationTimeout time.Duration
	// WaitSelector is awaited for at most SelectorWait after navigation.
	// Pages past the last result never match, so a miss is not an error.
	WaitSelector string
	SelectorWait time.Duration
	NoSandbox    bool
}

// Opener implements crawler.SessionOpener by launching one Chrome per run.
type Opener struct {
	cfg    Config
	logger *zap.Logger
}

// NewChromedp creates an Opener backed by chromedp.
func NewChromedp(cfg Config, logger *zap.Logger) (*Opener, error) {
	if cfg.NavigationTimeout < 0 || cfg.SelectorWait < 0 {
		return nil, fmt.Errorf("timeouts must be >= 0")
	}
	if cfg.NavigationTimeout == 0 {
		cfg.NavigationTimeout = crawler.DefaultFetchTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Opener{cfg: cfg, logger: logger}, nil
}

// Open launches the browser and verifies it started.
func (o *Opener) Open(ctx context.Context) (crawler.Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if o.cfg.NoSandbox {
		opts = append(opts,
			chromedp.NoSandbox,
			chromedp.Flag("disable-setuid-sandbox", true),
		)
	}
	if o.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(o.cfg.UserAgent))
	}

	// The browser outlives any single request context; Close tears it down.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}
	o.logger.Info("headless browser started")

	return &Session{
		cfg:           o.cfg,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		logger:        o.logger,
	}, nil
}

// Session renders pages in tabs of a single browser.
type Session struct {
	cfg           Config
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	logger        *zap.Logger
	closeOnce     sync.Once
}

// Close shuts the browser down. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.browserCancel()
		s.allocCancel()
		s.logger.Info("headless browser closed")
	})
	return nil
}

// Fetch opens rawURL in a fresh tab and returns the rendered DOM.
func (s *Session) Fetch(ctx context.Context, rawURL string) (crawler.Page, error) {
	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, s.navTimeout())
	defer cancelTask()

	stopForward := forwardCancel(ctx, cancelTask)
	defer stopForward()

	meta := newResponseMeta()
	chromedp.ListenTarget(tabCtx, meta.captureEvent)

	start := time.Now()
	if err := chromedp.Run(taskCtx, s.navigateActions(rawURL)...); err != nil {
		return crawler.Page{}, fmt.Errorf("navigate %s: %w", rawURL, err)
	}
	s.waitForContent(taskCtx)

	var (
		html     string
		finalURL string
	)
	if err := chromedp.Run(taskCtx,
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return crawler.Page{}, fmt.Errorf("read dom %s: %w", rawURL, err)
	}

	status, url := meta.snapshot()
	if url == "" {
		url = finalURL
	}
	return crawler.Page{
		URL:        rawURL,
		FinalURL:   url,
		StatusCode: status,
		Body:       []byte(html),
		Duration:   time.Since(start),
	}, nil
}

func (s *Session) navigateActions(rawURL string) []chromedp.Action {
	actions := []chromedp.Action{network.Enable()}
	if s.cfg.UserAgent != "" {
		actions = append(actions, emulation.SetUserAgentOverride(s.cfg.UserAgent))
	}
	return append(actions,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// waitForContent gives client-side rendering a bounded chance to produce items.
func (s *Session) waitForContent(ctx context.Context) {
	if s.cfg.WaitSelector == "" || s.cfg.SelectorWait <= 0 {
		return
	}
	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.SelectorWait)
	defer cancel()
	err := chromedp.Run(waitCtx, chromedp.WaitReady(s.cfg.WaitSelector, chromedp.ByQuery))
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		s.logger.Debug("selector wait ended", zap.String("selector", s.cfg.WaitSelector), zap.Error(err))
	}
}

func (s *Session) navTimeout() time.Duration {
	if s.cfg.NavigationTimeout > 0 {
		return s.cfg.NavigationTimeout
	}
	return crawler.DefaultFetchTimeout
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}

type responseMeta struct {
	mu     sync.RWMutex
	status int
	url    string
}

func newResponseMeta() *responseMeta {
	return &responseMeta{}
}

func (m *responseMeta) capture(event *network.EventResponseReceived) {
	if event.Type != network.ResourceTypeDocument || event.Response == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != 0 {
		return
	}
	m.status = int(event.Response.Status)
	m.url = event.Response.URL
}

func (m *responseMeta) captureEvent(ev any) {
	if resp, ok := ev.(*network.EventResponseReceived); ok {
		m.capture(resp)
	}
}

func (m *responseMeta) snapshot() (int, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status, m.url
}
