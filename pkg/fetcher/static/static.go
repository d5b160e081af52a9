// Package static implements fetcher.Fetcher on top of Colly: plain HTTP GET,
// no JavaScript execution. It is the default fetch backend.
package static

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/docuscout/pkg/cleaner"
	"github.com/jmylchreest/docuscout/pkg/fetcher"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config configures a Fetcher.
type Config struct {
	UserAgent    string
	Timeout      time.Duration
	Concurrency  int   // bounded fetch goroutines; default 4
	MaxPageBytes int64 // 0 means unlimited; colly truncates longer bodies to this many bytes
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent:   defaultUserAgent,
		Timeout:     30 * time.Second,
		Concurrency: 4,
	}
}

// Fetcher crawls with plain HTTP GET via Colly, cleaning each page through
// the injected cleaner before it is yielded.
type Fetcher struct {
	cfg     Config
	cleaner cleaner.Cleaner
}

// New creates a Fetcher. cl must not be nil.
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
	return &Fetcher{cfg: cfg, cleaner: cl}
}

func (f *Fetcher) fetchOne(_ context.Context, targetURL string) (string, error) {
	var html string
	var fetchErr error

	c := colly.NewCollector(colly.UserAgent(f.cfg.UserAgent))
	c.SetRequestTimeout(f.cfg.Timeout)
	if f.cfg.MaxPageBytes > 0 {
		c.MaxBodySize = int(f.cfg.MaxPageBytes)
	}

	c.OnResponse(func(r *colly.Response) {
		html = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("fetch error: %w", err)
	})

	if err := c.Visit(targetURL); err != nil {
		return "", fmt.Errorf("visit %s: %w", targetURL, err)
	}
	if fetchErr != nil {
		return "", fetchErr
	}
	return html, nil
}

// Crawl implements fetcher.Fetcher.
func (f *Fetcher) Crawl(ctx context.Context, seedURL string, cfg fetcher.CrawlConfig) <-chan fetcher.CrawledPage {
	out := make(chan fetcher.CrawledPage, cfg.MaxPages)
	d := &fetcher.Driver{
		Backend:     "static",
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

// Close implements fetcher.Fetcher.
func (f *Fetcher) Close() error { return nil }

// Type implements fetcher.Fetcher.
func (f *Fetcher) Type() string { return "static" }
