// Package dynamic implements fetcher.Fetcher on top of chromedp: pages are
// rendered in a headless browser before content is read back, for sites
// whose content only appears after JavaScript execution.
package dynamic

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/docuscout/pkg/cleaner"
	"github.com/jmylchreest/docuscout/pkg/fetcher"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config configures a Fetcher.
type Config struct {
	UserAgent       string
	Timeout         time.Duration
	Concurrency     int // bounded fetch goroutines; default 2 (browser tabs are heavier than plain HTTP)
	WaitForSelector string
	WaitDuration    time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent:   defaultUserAgent,
		Timeout:     45 * time.Second,
		Concurrency: 2,
	}
}

// Fetcher crawls with a headless Chrome instance via chromedp, cleaning each
// rendered page through the injected cleaner before it is yielded.
type Fetcher struct {
	cfg       Config
	cleaner   cleaner.Cleaner
	allocCtx  context.Context
	cancelCtx context.CancelFunc
}

// New creates a Fetcher and its shared browser allocator. cl must not be
// nil. Close must be called to shut the browser down.
func New(cfg Config, cl cleaner.Cleaner) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultConfig().Concurrency
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Fetcher{cfg: cfg, cleaner: cl, allocCtx: allocCtx, cancelCtx: cancel}
}

func (f *Fetcher) fetchOne(parent context.Context, targetURL string) (string, error) {
	browserCtx, cancelBrowser := chromedp.NewContext(f.allocCtx)
	defer cancelBrowser()

	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, f.cfg.Timeout)
	defer cancelTimeout()

	waitSelector := f.cfg.WaitForSelector
	if waitSelector == "" {
		waitSelector = "body"
	}

	actions := []chromedp.Action{
		chromedp.Navigate(targetURL),
		chromedp.WaitVisible(waitSelector),
	}
	if f.cfg.WaitDuration > 0 {
		actions = append(actions, chromedp.Sleep(f.cfg.WaitDuration))
	}

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html))

	if err := chromedp.Run(timeoutCtx, actions...); err != nil {
		return "", fmt.Errorf("browser automation failed for %s: %w", targetURL, err)
	}
	return html, nil
}

// Crawl implements fetcher.Fetcher.
func (f *Fetcher) Crawl(ctx context.Context, seedURL string, cfg fetcher.CrawlConfig) <-chan fetcher.CrawledPage {
	out := make(chan fetcher.CrawledPage, cfg.MaxPages)
	d := &fetcher.Driver{
		Backend:     "dynamic",
		Concurrency: f.cfg.Concurrency,
		Cleaner:     f.cleaner,
		Fetch:       f.fetchOne,
	}
	go func() {
		defer close(out)
		d.Run(ctx, seedURL, cfg, out)
	}()
	return out
}

// Close shuts down the shared browser allocator.
func (f *Fetcher) Close() error {
	f.cancelCtx()
	return nil
}

// Type implements fetcher.Fetcher.
func (f *Fetcher) Type() string { return "dynamic" }
